package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vibechat-service/internal/models"
)

// CacheControl is applied to every uploaded object.
const CacheControl = "max-age=3600"

// Bucket is the media storage contract.
type Bucket interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// ObjectKey names a vibe upload: <userId>/<unixMillis>.<ext>.
func ObjectKey(userID string, at time.Time, vibeType models.VibeType) string {
	return fmt.Sprintf("%s/%d.%s", userID, at.UnixMilli(), vibeType.Extension())
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds configuration for S3Bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for MinIO or LocalStack
	PublicURL string // optional base for public object URLs
}

// S3Bucket implements Bucket on S3.
type S3Bucket struct {
	client     s3API
	bucket     string
	publicBase string
}

// NewS3Bucket loads AWS config and builds the client.
func NewS3Bucket(ctx context.Context, cfg S3Config) (*S3Bucket, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Bucket(client, cfg), nil
}

func newS3Bucket(client s3API, cfg S3Config) *S3Bucket {
	base := cfg.PublicURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Bucket{client: client, bucket: cfg.Bucket, publicBase: strings.TrimRight(base, "/")}
}

// Upload writes the object, overwriting any existing key.
func (b *S3Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(CacheControl),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}
	return nil
}

func (b *S3Bucket) PublicURL(key string) string {
	return b.publicBase + "/" + key
}

// Delete removes an object. Missing keys are not an error.
func (b *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed for %s: %w", key, err)
	}
	return nil
}
