package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/imamik/devinfo/internal/platform/s3"
)

// objectClient is the subset of the S3 client the store needs.
type objectClient interface {
	EnsureBucket(ctx context.Context, bucket string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// S3Store keeps snapshots in an S3-compatible bucket.
type S3Store struct {
	client objectClient
	bucket string

	mu            sync.Mutex
	bucketEnsured bool
}

// NewS3Store returns a store writing to bucket. The bucket is created on
// first save if it does not exist.
func NewS3Store(client objectClient, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, key string) (*Snapshot, error) {
	data, err := s.client.GetObject(ctx, s.bucket, key)
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return Decode(data)
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, key string, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	return s.client.PutObject(ctx, s.bucket, key, data)
}

// Delete implements Store.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.client.DeleteObject(ctx, s.bucket, key)
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketEnsured {
		return nil
	}
	if err := s.client.EnsureBucket(ctx, s.bucket); err != nil {
		return fmt.Errorf("failed to prepare state bucket %s: %w", s.bucket, err)
	}
	s.bucketEnsured = true
	return nil
}
