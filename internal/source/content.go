package source

import (
	"context"
	"fmt"

	"github.com/nucleus/catalog-api/internal/blob"
)

// ContentStore resolves the raw content of a source file. Inline content is
// preferred; files uploaded past the inline limit carry a storage key that
// is resolved against the object store.
type ContentStore interface {
	FileContent(ctx context.Context, file FileDescriptor) (string, error)
}

// BlobContentStore resolves storage-key file content from an object store.
type BlobContentStore struct {
	store  blob.ObjectStore
	bucket string
}

// NewBlobContentStore creates a content store backed by the given object
// store. A nil store resolves inline content only.
func NewBlobContentStore(store blob.ObjectStore, bucket string) *BlobContentStore {
	return &BlobContentStore{store: store, bucket: bucket}
}

func (s *BlobContentStore) FileContent(ctx context.Context, file FileDescriptor) (string, error) {
	if file.Content != "" {
		return file.Content, nil
	}
	if file.StorageKey == "" {
		return "", fmt.Errorf("file %q has no inline content and no storage key", file.Name)
	}
	if s.store == nil {
		return "", fmt.Errorf("file %q requires object storage, but none is configured", file.Name)
	}
	data, err := s.store.GetObject(ctx, s.bucket, file.StorageKey)
	if err != nil {
		return "", fmt.Errorf("failed to fetch content for %q: %w", file.Name, err)
	}
	return string(data), nil
}
