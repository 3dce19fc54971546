package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"appdird/internal/directory"
)

// MemoryStore is an in-memory implementation of the ObjectStore interface.
// It keeps every blob in a map, making it useful for testing and for
// running the service without a remote backend. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	modified map[string]time.Time
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

// List returns every object whose key starts with prefix, sorted by
// last-modified time the way the remote listing is.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]directory.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []directory.ObjectInfo
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, directory.ObjectInfo{
				Key:          key,
				LastModified: m.modified[key],
			})
		}
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.Before(objects[j].LastModified)
	})
	return objects, nil
}

// Get retrieves the object at key and writes it to w.
func (m *MemoryStore) Get(_ context.Context, key string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("object not found: %s", key)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// Put stores the object at key, overwriting any existing blob.
func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.modified[key] = time.Now()
	return nil
}

// Compile-time check that MemoryStore implements the ObjectStore interface
var _ directory.ObjectStore = (*MemoryStore)(nil)
