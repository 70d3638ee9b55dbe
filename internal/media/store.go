// Package media talks to the remote object store that holds ad photos and videos.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

// Store destroys remote objects by their public id.
type Store interface {
	Destroy(ctx context.Context, publicID string) error
}

// MinioStore keeps ad media in a single bucket, keyed by public id.
type MinioStore struct {
	Client *minio.Client
	Bucket string
}

// NewMinioStore connects to MinIO. It returns a nil store when no endpoint is set.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, nil
	}
	if cfg.Minio.AccessKey == "" || cfg.Minio.SecretKey == "" {
		return nil, errors.New("minio access key and secret key are required")
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	return &MinioStore{Client: client, Bucket: cfg.Minio.Bucket}, nil
}

// Destroy removes the object. Removing a missing object is not an error.
func (s *MinioStore) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := s.Client.RemoveObject(ctx, s.Bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", s.Bucket, publicID, err)
	}
	return nil
}

// Noop is used when no object store is configured.
type Noop struct{}

func (Noop) Destroy(context.Context, string) error { return nil }
