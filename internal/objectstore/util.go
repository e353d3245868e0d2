package objectstore

import (
	"bytes"
	"errors"
	"io"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func newBytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func asNoSuchKey(err error, target **s3types.NoSuchKey) bool {
	return errors.As(err, target)
}

func asAPIError(err error, target *smithy.APIError) bool {
	return errors.As(err, target)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
