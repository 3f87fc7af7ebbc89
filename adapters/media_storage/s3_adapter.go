package media_storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/application/service"
	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client s3API
	bucket string
	region string
	logger logger.Logger
}

// NewS3Store reads credentials from the default AWS chain.
func NewS3Store(ctx context.Context, cfg config.Config, log logger.Logger) (service.BlobStore, error) {
	if cfg.Storage.Bucket == "" || cfg.Storage.Region == "" {
		return nil, fmt.Errorf("s3 bucket and region must be configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Info("S3 blob store ready", zap.String("bucket", cfg.Storage.Bucket), zap.String("region", cfg.Storage.Region))
	return newS3Store(s3.NewFromConfig(awsCfg), cfg.Storage.Bucket, cfg.Storage.Region, log), nil
}

func newS3Store(client s3API, bucket, region string, log logger.Logger) *s3Store {
	return &s3Store{client: client, bucket: bucket, region: region, logger: log}
}

func (s *s3Store) Put(ctx context.Context, data []byte, key string, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", apperror.NewStoreUnavailable(fmt.Sprintf("put object %s", key), err)
	}
	return s.objectURL(key), nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperror.NewStoreUnavailable(fmt.Sprintf("delete object %s", key), err)
	}
	return nil
}

func (s *s3Store) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
