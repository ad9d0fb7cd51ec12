// Package storage persists event poster images to S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/savaki/events-bot/pkg/logging"
)

// S3API is the subset of the S3 client used by PosterStore
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PosterStore writes poster images to S3 and returns their public URL
type PosterStore struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *logging.Logger
}

// NewPosterStore creates a poster store. baseURL is the public prefix the
// stored objects are reachable under (bucket URL or CDN).
func NewPosterStore(client S3API, bucket, baseURL string, logger *logging.Logger) *PosterStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PosterStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NewS3Client creates an S3 client from the default AWS config
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3ClientWithConfig creates an S3 client from existing AWS config
func NewS3ClientWithConfig(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

// Store uploads a poster image and returns its public URL
func (p *PosterStore) Store(ctx context.Context, body []byte, contentType string) (string, error) {
	key := fmt.Sprintf("posters/%s%s", uuid.NewString(), extensionFor(contentType))

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	url := p.baseURL + "/" + key
	p.logger.Info("stored poster", "key", key, "bytes", len(body))
	return url, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
