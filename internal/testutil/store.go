package testutil

import (
	"context"
	"io"

	"appdird/internal/directory"
	"appdird/internal/objstore"
)

// NewTestStore creates a new in-memory object store for testing.
func NewTestStore() *objstore.MemoryStore {
	return objstore.NewMemoryStore()
}

// FailingStore wraps an ObjectStore and fails selected operations, for
// exercising the cache's remote-failure policies.
type FailingStore struct {
	Inner   directory.ObjectStore
	PutErr  error
	ListErr error
}

func (f *FailingStore) List(ctx context.Context, prefix string) ([]directory.ObjectInfo, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Inner.List(ctx, prefix)
}

func (f *FailingStore) Get(ctx context.Context, key string, w io.Writer) error {
	return f.Inner.Get(ctx, key, w)
}

func (f *FailingStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	return f.Inner.Put(ctx, key, r, size)
}
