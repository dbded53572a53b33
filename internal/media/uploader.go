// Package media integrates with S3-compatible object storage for hosting
// user-uploaded images.
package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"clipstream/internal/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Uploader accepts a local file path and returns a hosted URL.
// Callers own the local file and must delete it after the call regardless of
// outcome.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Config holds object storage settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS proper; set for R2/minio-style endpoints
	AccessKey string
	SecretKey string
	// BaseURL is the public URL prefix objects are served from. Defaults to
	// the endpoint + bucket when empty.
	BaseURL string
}

// S3Uploader implements Uploader against any S3-compatible store.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Uploader builds an S3 client from static credentials and an optional
// custom endpoint.
func NewS3Uploader(cfg Config) *S3Uploader {
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}
}

// Upload stores the file under a random key and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	ctx, span := observability.Tracer.Start(ctx, "media.Upload")
	defer span.End()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)
	span.SetAttributes(attribute.String("media.key", key))

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}
