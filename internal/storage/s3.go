// Package storage wraps the S3-compatible object store holding user avatars.
// Provider errors are logged here and surfaced as an opaque upstream error.
package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"userhub/internal/config"
	apperrors "userhub/internal/errors"
)

// AvatarStore abstracts avatar object storage for services and tests.
type AvatarStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// S3AvatarStore stores avatars in a single bucket on S3 or any
// S3-compatible endpoint (MinIO, localstack).
type S3AvatarStore struct {
	client *s3.Client
	bucket string
	log    *slog.Logger
}

var _ AvatarStore = (*S3AvatarStore)(nil)

// NewS3AvatarStore builds an S3 client from config. When AWSEndpointURL is
// set the client targets it with path-style addressing.
func NewS3AvatarStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*S3AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	})

	return &S3AvatarStore{client: client, bucket: cfg.AvatarBucket, log: log}, nil
}

// EnsureBucket creates the avatar bucket if it does not exist yet.
func (s *S3AvatarStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		s.log.Error("create avatar bucket", "bucket", s.bucket, "err", err)
		return apperrors.ErrUpstream
	}
	s.log.Info("avatar bucket created", "bucket", s.bucket)
	return nil
}

// Upload stores an avatar under key.
func (s *S3AvatarStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.log.Error("s3 put object", "key", key, "err", err)
		return apperrors.ErrUpstream
	}
	return nil
}

// Get returns the raw avatar bytes stored under key.
func (s *S3AvatarStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Error("s3 get object", "key", key, "err", err)
		return nil, apperrors.ErrUpstream
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.log.Error("s3 read object body", "key", key, "err", err)
		return nil, apperrors.ErrUpstream
	}
	return data, nil
}

// Delete removes the avatar stored under key.
func (s *S3AvatarStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Error("s3 delete object", "key", key, "err", err)
		return apperrors.ErrUpstream
	}
	return nil
}
