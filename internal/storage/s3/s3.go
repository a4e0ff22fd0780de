// Package s3 provides an S3-compatible object storage backend.
// Works with AWS S3 and MinIO-style endpoints.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/config"
	"github.com/prn-tf/lightbox/internal/storage"
)

// Backend implements storage.Backend using an S3-compatible object store.
type Backend struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewBackend creates an S3 backend from configuration.
func NewBackend(ctx context.Context, cfg config.S3StorageConfig, logger zerolog.Logger) (*Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most self-hosted endpoints require path-style addressing.
			o.UsePathStyle = true
		}
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 storage backend configured")

	return &Backend{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With().Str("storage", "s3").Logger(),
	}, nil
}

// Store writes content from a reader under the given name.
func (b *Backend) Store(ctx context.Context, name string, reader io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
		Body:   reader,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %q: %w", name, err)
	}

	b.logger.Debug().Str("name", name).Int64("size", size).Msg("stored object")
	return nil
}

// Retrieve opens the named object for reading.
func (b *Backend) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get object %q: %w", name, err)
	}
	return out.Body, nil
}

// Delete removes the named object. S3 deletes are idempotent, so the
// not-found case is detected with a preceding head request.
func (b *Backend) Delete(ctx context.Context, name string) error {
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return storage.ErrFileNotFound
	}

	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	}); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", name, err)
	}

	b.logger.Debug().Str("name", name).Msg("deleted object")
	return nil
}

// Exists checks if the named object exists.
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %q: %w", name, err)
	}
	return true, nil
}

// Ensure Backend implements storage.Backend.
var _ storage.Backend = (*Backend)(nil)
