package objectstore

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"h3routeserv/pkg/config"
)

// S3Store is a Store backed by an S3-compatible bucket (AWS S3, MinIO, or
// any endpoint the SDK can be pointed at via objectstore.endpoint).
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3-compatible store from an ObjectStoreConfig.
func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Store, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, "s3.Get", key, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		if err != nil {
			if isNoSuchKey(err) {
				return backoffPermanent(ErrNotFound)
			}
			return err
		}
		data, err = readAll(out.Body)
		return err
	})
	return data, err
}

func (s *S3Store) Put(ctx context.Context, key string, value []byte) error {
	return withRetry(ctx, "s3.Put", key, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
			Body:   newBytesReader(value),
		})
		return err
	})
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			out = append(out, ObjectInfo{Key: derefOrEmpty(obj.Key), Size: derefInt64(obj.Size)})
		}
	}
	return out, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	return withRetry(ctx, "s3.Delete", key, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		return err
	})
}

func (s *S3Store) Close() error {
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	if asNoSuchKey(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if asAPIError(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey" || strings.Contains(apiErr.ErrorMessage(), "not found")
	}
	return false
}
