package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

// BucketService stores binary assets (avatars, opportunity PDFs) in a GCS
// bucket and hands back stable object keys plus public URLs.
type BucketService interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type bucketService struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
}

func NewBucketService(ctx context.Context, log *logger.Logger, bucketName string) (BucketService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to create storage client: %w", err)
	}
	return &bucketService{
		log:        log.With("service", "BucketService"),
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (bs *bucketService) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	writer := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", fmt.Errorf("Failed to write object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("Failed to finalize object %s: %w", key, err)
	}
	bs.log.Debug("Uploaded object", "key", key, "bytes", len(data))
	return bs.PublicURL(key), nil
}

func (bs *bucketService) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reader, err := bs.client.Bucket(bs.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to open object %s: %w", key, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("Failed to read object %s: %w", key, err)
	}
	return data, nil
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := bs.client.Bucket(bs.bucketName).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("Failed to delete object %s: %w", key, err)
	}
	return nil
}

func (bs *bucketService) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
