package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/devinfo/internal/config"
	"github.com/imamik/devinfo/internal/platform/s3"
	"github.com/imamik/devinfo/internal/util/naming"
)

// ErrNotFound is returned by Load when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Store loads and saves snapshots by key.
type Store interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, key string, s *Snapshot) error
	// Delete removes the snapshot. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}

// Key returns the storage key of a stack's snapshot.
func Key(cloudID, folderID, stack string) string {
	return naming.StateKey(cloudID, folderID, stack)
}

// Function variable for dependency injection in tests.
var newS3Client = func(ctx context.Context, opts s3.Options) (objectClient, error) {
	return s3.NewClient(ctx, opts)
}

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg config.StateConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultStatePath
		}
		return NewFileStore(path), nil
	case config.BackendS3:
		client, err := newS3Client(ctx, s3.Options{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.Endpoint != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return NewS3Store(client, cfg.S3.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
