// Package s3 implements the simplecms.MediaStore interface against any
// S3-compatible service (AWS S3, MinIO, ...).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// Config options for the S3 media store.
type Config struct {
	Region          string // AWS region
	Bucket          string // default bucket for object operations
	AccessKeyID     string // access key; empty falls back to the default chain
	SecretAccessKey string // secret key
	Endpoint        string // custom endpoint for S3-compatible services
	UsePathStyle    bool   // path-style addressing (MinIO needs true)
	PresignDuration int    // presigned URL lifetime in seconds (default 3600)

	CreateBucketIfNotExist bool // create the default bucket at startup
}

// Store is the S3-backed media store.
type Store struct {
	client          *s3.Client
	bucket          string
	presignClient   *s3.PresignClient
	presignDuration time.Duration
	region          string
}

// New creates an S3 media store.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignDuration == 0 {
		cfg.PresignDuration = 3600
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)
	store := &Store{
		client:          client,
		bucket:          cfg.Bucket,
		presignClient:   s3.NewPresignClient(client),
		presignDuration: time.Duration(cfg.PresignDuration) * time.Second,
		region:          cfg.Region,
	}

	if cfg.CreateBucketIfNotExist {
		if err := store.CreateBucket(context.Background(), cfg.Bucket); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// CreateBucket creates a bucket if it does not already exist.
func (s *Store) CreateBucket(ctx context.Context, name string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var apiErr smithy.APIError
	if !errors.As(err, &notFound) &&
		!(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket") &&
		!strings.Contains(err.Error(), "NotFound") {
		return &simplecms.StorageError{Bucket: name, Op: "head bucket", Err: err}
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return &simplecms.StorageError{Bucket: name, Op: "create bucket", Err: err}
	}
	return nil
}

// DeleteBucket removes an empty bucket.
func (s *Store) DeleteBucket(ctx context.Context, name string) error {
	if _, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	}); err != nil {
		return &simplecms.StorageError{Bucket: name, Op: "delete bucket", Err: err}
	}
	return nil
}

// Upload streams an object into the default bucket using the concurrent
// uploader.
func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	uploader := manager.NewUploader(s.client)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := uploader.Upload(ctx, input); err != nil {
		return &simplecms.StorageError{Bucket: s.bucket, Key: key, Op: "upload", Err: err}
	}
	return nil
}

// Download streams an object out of the default bucket.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, &simplecms.StorageError{Bucket: s.bucket, Key: key, Op: "download", Err: errors.New("object not found")}
		}
		return nil, &simplecms.StorageError{Bucket: s.bucket, Key: key, Op: "download", Err: err}
	}
	return result.Body, nil
}

// DownloadURL returns a presigned GET URL for an object.
func (s *Store) DownloadURL(ctx context.Context, key string) (string, error) {
	result, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.presignDuration
	})
	if err != nil {
		return "", &simplecms.StorageError{Bucket: s.bucket, Key: key, Op: "presign download", Err: err}
	}
	return result.URL, nil
}

// DeleteObject removes an object from the default bucket.
func (s *Store) DeleteObject(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return &simplecms.StorageError{Bucket: s.bucket, Key: key, Op: "delete object", Err: err}
	}
	return nil
}
