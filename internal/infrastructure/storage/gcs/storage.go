// Package gcs stores source documents in a Google Cloud Storage bucket.
// Selected by the STORAGE_TYPE configuration value.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

type Storage struct {
	client *storage.Client
	bucket string
}

func New(ctx context.Context, bucket string) (*Storage, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Storage{client: client, bucket: bucket}, nil
}

func (s *Storage) Save(ctx context.Context, key string, data io.Reader) error {
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(writer, data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	return reader, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
