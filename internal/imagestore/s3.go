package imagestore

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
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/config"
)

// S3Store stores images in an S3-compatible bucket. References are
// object keys of the form "<uuid><ext>".
type S3Store struct {
	client  *s3.Client
	bucket  string
	maxSize int64
	logger  zerolog.Logger
}

// NewS3Store builds an S3 client from configuration and verifies the
// bucket is reachable.
func NewS3Store(ctx context.Context, cfg config.ImageConfig, logger zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	store := &S3Store{
		client:  client,
		bucket:  cfg.S3.Bucket,
		maxSize: cfg.MaxSize,
		logger:  logger.With().Str("component", "imagestore").Logger(),
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.S3.Bucket)}); err != nil {
		return nil, fmt.Errorf("failed to reach image bucket %q: %w", cfg.S3.Bucket, err)
	}

	return store, nil
}

// Save stores an image and returns its reference.
func (s *S3Store) Save(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	if size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, size, s.maxSize)
	}

	ref := uuid.New().String() + ext

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(ref),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Debug().Str("ref", ref).Int64("size", size).Msg("image stored")
	return ref, nil
}

// Open returns the image bytes for a reference.
func (s *S3Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	return out.Body, nil
}

// Release removes the image for a reference. S3 delete is idempotent,
// so unknown references succeed.
func (s *S3Store) Release(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)
