package directory

import (
	"context"
	"fmt"
	"strings"
)

// UserService manages identity records: registration, authentication,
// self-service reads and updates. It owns the "one live session per
// identity" rule: every successful authentication overwrites the stored
// session token, invalidating any previously issued token.
type UserService struct {
	users  UserStore
	hasher CredentialHasher
	tokens TokenService
	logger Logger
}

// NewUserService creates a UserService with the provided dependencies.
func NewUserService(users UserStore, hasher CredentialHasher, tokens TokenService, logger Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Create validates and stores a new identity with the given role.
// The plaintext password is hashed before anything is persisted. Email
// uniqueness is a lookup-before-create check, case-insensitive.
func (s *UserService) Create(ctx context.Context, sec *UserSecurity, role Role) (*User, error) {
	if sec == nil || sec.Email == "" || sec.Password == "" || sec.Firstname == "" || sec.Lastname == "" {
		return nil, fmt.Errorf("%w: email, password, firstname and lastname are required", ErrInvalidRecord)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRecord, role)
	}

	if _, err := s.IDByEmail(sec.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, sec.Email)
	}

	digest, err := s.hasher.Hash(sec.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	sec.ID = "" // identifier is assigned exactly once, by the store
	sec.Role = role
	sec.Password = digest
	sec.Token = ""

	saved, err := s.users.Upsert(ctx, sec)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "id", saved.ID, "email", saved.Email, "role", saved.Role)
	return saved.Public(), nil
}

// Register creates a self-service identity. The role is always "user";
// elevated roles are assigned out of band. On success the new identity is
// immediately authenticated and the fresh token returned.
func (s *UserService) Register(ctx context.Context, sec *UserSecurity) (string, *User, error) {
	plain := sec.Password

	user, err := s.Create(ctx, sec, RoleUser)
	if err != nil {
		return "", nil, err
	}

	token, err := s.Authenticate(ctx, user.Email, plain)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate verifies credentials for email, issues a fresh token, and
// stores it on the identity record. The previous session token, if any,
// stops passing the gate the moment the new one is stored.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	id, err := s.IDByEmail(email)
	if err != nil {
		return "", err
	}

	sec, err := s.users.Get(id)
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(password, sec.Password) {
		s.logger.Warn("authentication failed", "email", email)
		return "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	sec.Token = token
	if _, err := s.users.Upsert(ctx, sec); err != nil {
		return "", err
	}

	s.logger.Info("user authenticated", "id", id)
	return token, nil
}

// IDByEmail resolves an identity id from an email address,
// case-insensitively. Returns ErrNotFound when no identity matches.
func (s *UserService) IDByEmail(email string) (string, error) {
	if email == "" {
		return "", ErrNotFound
	}
	for _, sec := range s.users.GetAll() {
		if strings.EqualFold(sec.Email, email) {
			return sec.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no user for email %s", ErrNotFound, email)
}

// Get returns the public view of an identity.
func (s *UserService) Get(id string) (*User, error) {
	sec, err := s.users.Get(id)
	if err != nil {
		return nil, err
	}
	return sec.Public(), nil
}

// GetAll returns the public views of every known identity.
func (s *UserService) GetAll() []*User {
	secs := s.users.GetAll()
	users := make([]*User, 0, len(secs))
	for _, sec := range secs {
		users = append(users, sec.Public())
	}
	return users
}

// Update applies a self-service update to the identity's descriptive
// fields. The id always comes from the authenticated request, never the
// payload; role, password, and session token are untouched.
func (s *UserService) Update(ctx context.Context, id string, user *User) (*User, error) {
	if user == nil || user.Email == "" || user.Firstname == "" || user.Lastname == "" {
		return nil, fmt.Errorf("%w: email, firstname and lastname are required", ErrInvalidRecord)
	}

	sec, err := s.users.Get(id)
	if err != nil {
		return nil, err
	}

	sec.Email = user.Email
	sec.Firstname = user.Firstname
	sec.Lastname = user.Lastname
	sec.Company = user.Company

	saved, err := s.users.Upsert(ctx, sec)
	if err != nil {
		return nil, err
	}
	return saved.Public(), nil
}

// Delete is a stub. Identity records have no hard-delete path.
func (s *UserService) Delete(string) error {
	return ErrNotSupported
}
