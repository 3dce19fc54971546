// Package cache provides the concurrent record cache shared by all
// data-access paths. Reads are served from memory; writes persist to the
// local filesystem first, then optionally replicate to a remote object
// store. Construction primes the cache from both backends before it is
// handed to callers.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"appdird/internal/directory"
)

const recordExt = ".json"

// Record is the pointer constraint every cached record type satisfies:
// it exposes its own identifier and accepts a generated one.
type Record[T any] interface {
	*T
	RecordID() string
	SetRecordID(string)
}

// Durability controls how a remote write failure is treated.
type Durability string

const (
	// BestEffort logs and swallows remote write failures. The local write
	// remains authoritative. This is the default.
	BestEffort Durability = "best-effort"
	// Required fails the upsert when the remote write fails. The local
	// file has already been written, but the record is not published to
	// memory and the caller is told the write did not happen.
	Required Durability = "required"
)

// Options configures a Cache.
type Options struct {
	// Dir is the local directory of one-file-per-record JSON blobs.
	// Created if absent; failure to create is fatal.
	Dir string

	// Remote is the replication target. nil disables remote persistence.
	Remote directory.ObjectStore

	// Prefix is the remote key prefix for this record type.
	Prefix string

	// Durability selects the remote failure policy. Defaults to BestEffort.
	Durability Durability

	Logger directory.Logger
	IDGen  directory.IDGenerator
}

// Cache is an in-memory mapping from record identifier to record, backed
// by a local directory and an optional remote object store. The map is
// authoritative while the process runs; the durable copies become
// authoritative again at the next priming.
//
// The mutex guards only the map. Serialization and all I/O happen outside
// the lock, so two upserts to different identifiers proceed independently
// and a stalled remote call blocks only its own request. Two upserts to
// the same identifier race; the last one to finish its local write wins
// the in-memory publish.
type Cache[T any, PT Record[T]] struct {
	mu      sync.RWMutex
	records map[string]PT

	dir        string
	remote     directory.ObjectStore
	prefix     string
	durability Durability
	logger     directory.Logger
	idgen      directory.IDGenerator
}

// New creates a Cache and primes it from the local directory and, when a
// remote store is configured, from the remote prefix. The cache is not
// returned until priming completes, so no caller can observe a partially
// primed map. A missing local directory is created; failure to create it
// is a fatal startup condition.
func New[T any, PT Record[T]](ctx context.Context, opts Options) (*Cache[T, PT], error) {
	if opts.Logger == nil {
		opts.Logger = directory.NewNopLogger()
	}
	if opts.IDGen == nil {
		opts.IDGen = directory.UUIDGenerator{}
	}
	if opts.Durability == "" {
		opts.Durability = BestEffort
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating record directory %s: %w", opts.Dir, err)
	}

	c := &Cache[T, PT]{
		records:    make(map[string]PT),
		dir:        opts.Dir,
		remote:     opts.Remote,
		prefix:     opts.Prefix,
		durability: opts.Durability,
		logger:     opts.Logger,
		idgen:      opts.IDGen,
	}

	if err := c.primeLocal(); err != nil {
		return nil, err
	}
	if c.remote != nil {
		if err := c.primeRemote(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// primeLocal loads every record file from the local directory. A file
// that cannot be read or decoded is logged and skipped, never fatal.
// Records are keyed by their own decoded identifier, not the filename.
func (c *Cache[T, PT]) primeLocal() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading record directory %s: %w", c.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			c.logger.Warn("skipping unreadable record file", "file", entry.Name(), "error", err)
			continue
		}

		rec := PT(new(T))
		if err := json.Unmarshal(data, rec); err != nil {
			c.logger.Warn("skipping malformed record file", "file", entry.Name(), "error", err)
			continue
		}
		if rec.RecordID() == "" {
			c.logger.Warn("skipping record file without identifier", "file", entry.Name())
			continue
		}

		c.records[rec.RecordID()] = rec
	}

	c.logger.Info("primed records from disk", "dir", c.dir, "count", len(c.records))
	return nil
}

// primeRemote loads every record under the remote prefix, exhausting the
// listing before returning. Remote records overwrite local ones with the
// same identifier: the remote copy is the authoritative replica at prime
// time. A remote object without a usable identifier is logged and dropped.
func (c *Cache[T, PT]) primeRemote(ctx context.Context) error {
	objects, err := c.remote.List(ctx, c.prefix)
	if err != nil {
		return fmt.Errorf("listing remote records under %s: %w", c.prefix, err)
	}

	loaded := 0
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, recordExt) {
			continue
		}

		var buf bytes.Buffer
		if err := c.remote.Get(ctx, obj.Key, &buf); err != nil {
			c.logger.Warn("skipping unreadable remote record", "key", obj.Key, "error", err)
			continue
		}

		rec := PT(new(T))
		if err := json.Unmarshal(buf.Bytes(), rec); err != nil {
			c.logger.Warn("skipping malformed remote record", "key", obj.Key, "error", err)
			continue
		}
		if rec.RecordID() == "" {
			c.logger.Warn("skipping remote record without identifier", "key", obj.Key)
			continue
		}

		c.records[rec.RecordID()] = rec
		loaded++
	}

	c.logger.Info("primed records from remote store", "prefix", c.prefix, "count", loaded)
	return nil
}

// Get returns a copy of the record for id, or directory.ErrNotFound.
func (c *Cache[T, PT]) Get(id string) (PT, error) {
	c.mu.RLock()
	rec, ok := c.records[id]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", directory.ErrNotFound, id)
	}

	cp := *rec
	return &cp, nil
}

// GetAll returns a snapshot copy of every record. Order carries no meaning.
func (c *Cache[T, PT]) GetAll() []PT {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PT, 0, len(c.records))
	for _, rec := range c.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out
}

// Upsert persists rec and publishes it to memory. A record without an
// identifier gets a generated one before any persistence step. The order
// is fixed: persist local (authoritative), persist remote (policy per
// Durability), then publish in memory. A failed local write surfaces a
// PersistError and leaves memory untouched, so a failed write never
// silently succeeds in memory only.
func (c *Cache[T, PT]) Upsert(ctx context.Context, rec PT) (PT, error) {
	if rec == nil {
		return nil, directory.ErrInvalidRecord
	}
	if rec.RecordID() == "" {
		rec.SetRecordID(c.idgen.New())
	}
	id := rec.RecordID()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, &directory.PersistError{Key: id, Err: err}
	}

	if err := c.writeLocal(id, data); err != nil {
		return nil, &directory.PersistError{Key: id, Err: err}
	}

	if c.remote != nil {
		key := path.Join(c.prefix, id+recordExt)
		if err := c.remote.Put(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
			if c.durability == Required {
				return nil, &directory.PersistError{Key: id, Err: fmt.Errorf("remote write: %w", err)}
			}
			// Best-effort: the local copy is the source of truth and the
			// inconsistency window closes on the next successful write.
			c.logger.Error("remote record write failed", "key", key, "error", err)
		}
	}

	cp := *rec
	c.mu.Lock()
	c.records[id] = &cp
	c.mu.Unlock()

	return rec, nil
}

// writeLocal writes the record file via a temp file and atomic rename, so
// a crash leaves either the old file or the new one, never a torn write.
func (c *Cache[T, PT]) writeLocal(id string, data []byte) error {
	destPath := filepath.Join(c.dir, id+recordExt)

	tmpFile, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing record file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Len returns the number of records currently cached.
func (c *Cache[T, PT]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
