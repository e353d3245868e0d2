package rpc

import (
	"context"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/encode/arrowbatch"
	"h3routeserv/pkg/apperror"
)

// streamArrowChunks splits rows into arrowbatch.ChunkRowCount-sized groups,
// encodes each with encode, and sends it as one ArrowIPCChunk, marking the
// last chunk Final (spec.md §4.8 "Chunking"). An empty rows slice still
// sends a single empty, Final chunk so callers always observe stream
// completion rather than a bare EOF with no rows.
func streamArrowChunks[T any](ctx context.Context, rows []T, encode func([]T) ([]byte, error), send func(*h3routingv1.ArrowIPCChunk) error) error {
	if len(rows) == 0 {
		return send(&h3routingv1.ArrowIPCChunk{Final: true})
	}

	for i := 0; i < len(rows); i += arrowbatch.ChunkRowCount {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + arrowbatch.ChunkRowCount
		if end > len(rows) {
			end = len(rows)
		}

		data, err := encode(rows[i:end])
		if err != nil {
			return apperror.ToGRPC(apperror.Wrap(err, apperror.CodeAlgorithmInternal, "encode result chunk"))
		}

		if err := send(&h3routingv1.ArrowIPCChunk{Data: data, Final: end == len(rows)}); err != nil {
			return err
		}
	}
	return nil
}
