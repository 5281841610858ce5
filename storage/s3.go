package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/indigo-web/formkit/http/form"
)

// S3Config holds configuration for S3 storage backend.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not subdomain).
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads files into a bucket. The file's content type is preserved and its original
// filename is kept in the object's metadata.
type S3 struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3 creates a new S3 sink.
// Uses AWS SDK default credential chain (env vars, shared config, IAM role).
func NewS3(ctx context.Context, s3cfg S3Config) (*S3, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if s3cfg.Region != "" {
		opts = append(opts, config.WithRegion(s3cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s3cfg.Endpoint != "" {
		endpoint := s3cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if s3cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return newS3(s3.NewFromConfig(awsConfig, s3Opts...), s3cfg.Bucket, s3cfg.Prefix), nil
}

func newS3(client objectPutter, bucket, prefix string) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: cleanKey(prefix),
	}
}

func (s *S3) Put(ctx context.Context, key string, file *form.File) error {
	body, err := file.Open()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer body.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(key)),
		Body:          body,
		ContentLength: aws.Int64(file.Size()),
		ContentType:   aws.String(file.ContentType),
		Metadata: map[string]string{
			// metadata values must be ASCII
			"filename": url.QueryEscape(file.Filename),
		},
	})
	if err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", s.bucket, s.key(key), err)
	}

	return nil
}

func (s *S3) key(key string) string {
	return path.Join(s.prefix, cleanKey(key))
}
