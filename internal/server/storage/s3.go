package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Options configure the S3-compatible backend (AWS, MinIO, LocalStack).
type S3Options struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Storage implements BlobStore over an S3-compatible object store.
type S3Storage struct {
	client *s3.Client
	opts   S3Options
}

// NewS3Storage builds an S3 client with static credentials. A non-empty
// BaseEndpoint switches the client to path-style addressing, which MinIO
// and LocalStack require.
func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.User, opts.Password, "",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, opts: opts}, nil
}

// Upload puts the object and returns its public retrieval URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

func (s *S3Storage) objectURL(key string) string {
	if s.opts.BaseEndpoint != "" {
		base := strings.TrimSuffix(s.opts.BaseEndpoint, "/")
		return fmt.Sprintf("%s/%s/%s", base, s.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}

// NewStorageKey returns a unique object key partitioned by upload date, so
// same-named uploads never overwrite each other.
func NewStorageKey(now time.Time) string {
	return fmt.Sprintf("capsules/%d/%02d/%02d/%s", now.Year(), now.Month(), now.Day(), uuid.New())
}
