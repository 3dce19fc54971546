package directory

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a single object in the remote store listing.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStore is the remote blob namespace used to replicate records.
// Implementations are expected to treat it purely as named blobs under a
// bucket: list, fetch, write. Nothing store-specific beyond that.
type ObjectStore interface {
	// List returns every object key under prefix. Implementations must
	// exhaust pagination before returning.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Get retrieves the object at key and writes it to w.
	Get(ctx context.Context, key string, w io.Writer) error

	// Put stores the object at key. size is the number of bytes that will
	// be read from r.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// UserStore is the persistence contract the user service runs against.
// It has no authorization awareness; ownership and policy checks are the
// caller's responsibility.
type UserStore interface {
	Get(id string) (*UserSecurity, error)
	GetAll() []*UserSecurity
	Upsert(ctx context.Context, u *UserSecurity) (*UserSecurity, error)
}

// AppStore is the persistence contract the application service runs against.
type AppStore interface {
	Get(id string) (*Application, error)
	GetAll() []*Application
	Upsert(ctx context.Context, a *Application) (*Application, error)
}

// CredentialHasher produces and verifies one-way password digests.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A malformed digest
	// simply verifies false; there is no error surface.
	Verify(plaintext, digest string) bool
}

// TokenService issues and validates signed, time-scoped identity tokens.
type TokenService interface {
	Issue(userID string) (string, error)
	// Validate returns the identity id bound into the token, or
	// auth.ErrInvalidToken on bad signature, malformed structure, or expiry.
	Validate(token string) (string, error)
}
