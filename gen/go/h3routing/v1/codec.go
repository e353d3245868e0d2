package h3routingv1

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is registered under grpc-go's default content-subtype, "proto",
// so every call made through a plain grpc.ClientConn/grpc.Server picks this
// codec up without the caller naming it explicitly. No generated protobuf
// types survived retrieval for this service, so the wire encoding here is
// encoding/gob over the plain struct types in messages.go rather than
// protobuf — see DESIGN.md's "Custom gRPC codec decision".
const codecName = "proto"

func init() {
	encoding.RegisterCodec(gobCodec{})
}

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("h3routingv1: gob marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("h3routingv1: gob unmarshal: %w", err)
	}
	return nil
}

func (gobCodec) Name() string {
	return codecName
}
