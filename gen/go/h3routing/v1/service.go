package h3routingv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "h3routing.v1.H3RoutingService"

// H3RoutingServiceServer is the server API for H3RoutingService, per
// spec.md §6's RPC surface table: three unary metadata calls plus eight
// server-streaming routing calls.
type H3RoutingServiceServer interface {
	Version(context.Context, *Empty) (*VersionResponse, error)
	ListGraphs(context.Context, *Empty) (*ListGraphsResponse, error)
	ListDatasets(context.Context, *Empty) (*ListDatasetsResponse, error)

	H3ShortestPath(*H3ShortestPathRequest, H3RoutingService_H3ShortestPathServer) error
	H3ShortestPathRoutes(*H3ShortestPathRequest, H3RoutingService_H3ShortestPathRoutesServer) error
	H3ShortestPathCells(*H3ShortestPathRequest, H3RoutingService_H3ShortestPathCellsServer) error
	H3ShortestPathEdges(*H3ShortestPathRequest, H3RoutingService_H3ShortestPathEdgesServer) error
	DifferentialShortestPath(*DifferentialShortestPathRequest, H3RoutingService_DifferentialShortestPathServer) error
	GetDifferentialShortestPath(*IdRef, H3RoutingService_GetDifferentialShortestPathServer) error
	GetDifferentialShortestPathRoutes(*DifferentialShortestPathRoutesRequest, H3RoutingService_GetDifferentialShortestPathRoutesServer) error
	H3CellsWithinThreshold(*H3WithinThresholdRequest, H3RoutingService_H3CellsWithinThresholdServer) error
}

// H3RoutingService_H3ShortestPathServer streams ArrowIPCChunk responses.
type H3RoutingService_H3ShortestPathServer interface {
	Send(*ArrowIPCChunk) error
	grpc.ServerStream
}

type h3ShortestPathServer struct{ grpc.ServerStream }

func (s *h3ShortestPathServer) Send(m *ArrowIPCChunk) error { return s.ServerStream.SendMsg(m) }

// H3RoutingService_H3ShortestPathRoutesServer streams RouteWKB responses.
type H3RoutingService_H3ShortestPathRoutesServer interface {
	Send(*RouteWKB) error
	grpc.ServerStream
}

type h3ShortestPathRoutesServer struct{ grpc.ServerStream }

func (s *h3ShortestPathRoutesServer) Send(m *RouteWKB) error { return s.ServerStream.SendMsg(m) }

// H3RoutingService_H3ShortestPathCellsServer streams RouteH3Indexes responses.
type H3RoutingService_H3ShortestPathCellsServer interface {
	Send(*RouteH3Indexes) error
	grpc.ServerStream
}

type h3ShortestPathCellsServer struct{ grpc.ServerStream }

func (s *h3ShortestPathCellsServer) Send(m *RouteH3Indexes) error { return s.ServerStream.SendMsg(m) }

// H3RoutingService_H3ShortestPathEdgesServer streams RouteH3Indexes
// responses, the same message shape as H3ShortestPathCells but with the
// cell sequence expanded into consecutive (from, to) pairs per edge.
type H3RoutingService_H3ShortestPathEdgesServer interface {
	Send(*RouteH3Indexes) error
	grpc.ServerStream
}

type h3ShortestPathEdgesServer struct{ grpc.ServerStream }

func (s *h3ShortestPathEdgesServer) Send(m *RouteH3Indexes) error { return s.ServerStream.SendMsg(m) }

// H3RoutingService_DifferentialShortestPathServer streams ArrowIPCChunk
// responses, the last of which carries the persisted result id.
type H3RoutingService_DifferentialShortestPathServer interface {
	Send(*ArrowIPCChunk) error
	grpc.ServerStream
}

type differentialShortestPathServer struct{ grpc.ServerStream }

func (s *differentialShortestPathServer) Send(m *ArrowIPCChunk) error {
	return s.ServerStream.SendMsg(m)
}

// H3RoutingService_GetDifferentialShortestPathServer streams a previously
// persisted differential result back out.
type H3RoutingService_GetDifferentialShortestPathServer interface {
	Send(*ArrowIPCChunk) error
	grpc.ServerStream
}

type getDifferentialShortestPathServer struct{ grpc.ServerStream }

func (s *getDifferentialShortestPathServer) Send(m *ArrowIPCChunk) error {
	return s.ServerStream.SendMsg(m)
}

// H3RoutingService_GetDifferentialShortestPathRoutesServer streams decoded
// per-origin route pairs from a persisted differential result.
type H3RoutingService_GetDifferentialShortestPathRoutesServer interface {
	Send(*DifferentialShortestPathRoutes) error
	grpc.ServerStream
}

type getDifferentialShortestPathRoutesServer struct{ grpc.ServerStream }

func (s *getDifferentialShortestPathRoutesServer) Send(m *DifferentialShortestPathRoutes) error {
	return s.ServerStream.SendMsg(m)
}

// H3RoutingService_H3CellsWithinThresholdServer streams ArrowIPCChunk
// responses for the within-threshold reachable-set query.
type H3RoutingService_H3CellsWithinThresholdServer interface {
	Send(*ArrowIPCChunk) error
	grpc.ServerStream
}

type h3CellsWithinThresholdServer struct{ grpc.ServerStream }

func (s *h3CellsWithinThresholdServer) Send(m *ArrowIPCChunk) error {
	return s.ServerStream.SendMsg(m)
}

func _H3RoutingService_Version_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(H3RoutingServiceServer).Version(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Version"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(H3RoutingServiceServer).Version(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _H3RoutingService_ListGraphs_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(H3RoutingServiceServer).ListGraphs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/ListGraphs"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(H3RoutingServiceServer).ListGraphs(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _H3RoutingService_ListDatasets_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(H3RoutingServiceServer).ListDatasets(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/ListDatasets"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(H3RoutingServiceServer).ListDatasets(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _H3RoutingService_H3ShortestPath_Handler(srv any, stream grpc.ServerStream) error {
	m := new(H3ShortestPathRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).H3ShortestPath(m, &h3ShortestPathServer{stream})
}

func _H3RoutingService_H3ShortestPathRoutes_Handler(srv any, stream grpc.ServerStream) error {
	m := new(H3ShortestPathRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).H3ShortestPathRoutes(m, &h3ShortestPathRoutesServer{stream})
}

func _H3RoutingService_H3ShortestPathCells_Handler(srv any, stream grpc.ServerStream) error {
	m := new(H3ShortestPathRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).H3ShortestPathCells(m, &h3ShortestPathCellsServer{stream})
}

func _H3RoutingService_H3ShortestPathEdges_Handler(srv any, stream grpc.ServerStream) error {
	m := new(H3ShortestPathRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).H3ShortestPathEdges(m, &h3ShortestPathEdgesServer{stream})
}

func _H3RoutingService_DifferentialShortestPath_Handler(srv any, stream grpc.ServerStream) error {
	m := new(DifferentialShortestPathRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).DifferentialShortestPath(m, &differentialShortestPathServer{stream})
}

func _H3RoutingService_GetDifferentialShortestPath_Handler(srv any, stream grpc.ServerStream) error {
	m := new(IdRef)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).GetDifferentialShortestPath(m, &getDifferentialShortestPathServer{stream})
}

func _H3RoutingService_GetDifferentialShortestPathRoutes_Handler(srv any, stream grpc.ServerStream) error {
	m := new(DifferentialShortestPathRoutesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).GetDifferentialShortestPathRoutes(m, &getDifferentialShortestPathRoutesServer{stream})
}

func _H3RoutingService_H3CellsWithinThreshold_Handler(srv any, stream grpc.ServerStream) error {
	m := new(H3WithinThresholdRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(H3RoutingServiceServer).H3CellsWithinThreshold(m, &h3CellsWithinThresholdServer{stream})
}

// H3RoutingServiceServiceDesc is the grpc.ServiceDesc for H3RoutingService.
var H3RoutingServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*H3RoutingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Version", Handler: _H3RoutingService_Version_Handler},
		{MethodName: "ListGraphs", Handler: _H3RoutingService_ListGraphs_Handler},
		{MethodName: "ListDatasets", Handler: _H3RoutingService_ListDatasets_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "H3ShortestPath", Handler: _H3RoutingService_H3ShortestPath_Handler, ServerStreams: true},
		{StreamName: "H3ShortestPathRoutes", Handler: _H3RoutingService_H3ShortestPathRoutes_Handler, ServerStreams: true},
		{StreamName: "H3ShortestPathCells", Handler: _H3RoutingService_H3ShortestPathCells_Handler, ServerStreams: true},
		{StreamName: "H3ShortestPathEdges", Handler: _H3RoutingService_H3ShortestPathEdges_Handler, ServerStreams: true},
		{StreamName: "DifferentialShortestPath", Handler: _H3RoutingService_DifferentialShortestPath_Handler, ServerStreams: true},
		{StreamName: "GetDifferentialShortestPath", Handler: _H3RoutingService_GetDifferentialShortestPath_Handler, ServerStreams: true},
		{StreamName: "GetDifferentialShortestPathRoutes", Handler: _H3RoutingService_GetDifferentialShortestPathRoutes_Handler, ServerStreams: true},
		{StreamName: "H3CellsWithinThreshold", Handler: _H3RoutingService_H3CellsWithinThreshold_Handler, ServerStreams: true},
	},
}

// RegisterH3RoutingServiceServer registers srv with s.
func RegisterH3RoutingServiceServer(s grpc.ServiceRegistrar, srv H3RoutingServiceServer) {
	s.RegisterService(&H3RoutingServiceServiceDesc, srv)
}
