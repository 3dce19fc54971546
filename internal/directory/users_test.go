package directory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"appdird/internal/auth"
	"appdird/internal/cache"
	"appdird/internal/directory"
)

func newUserService(t *testing.T) (*directory.UserService, directory.UserStore) {
	t.Helper()

	users, err := cache.New[directory.UserSecurity](context.Background(), cache.Options{
		Dir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	tokens, err := auth.NewTokens("test-signing-key", time.Hour, directory.RealClock{})
	if err != nil {
		t.Fatalf("auth.NewTokens() error = %v", err)
	}

	svc := directory.NewUserService(users, auth.NewHasher(), tokens, directory.NewNopLogger())
	return svc, users
}

func registration(email string) *directory.UserSecurity {
	return &directory.UserSecurity{
		User: directory.User{
			Email:     email,
			Firstname: "Ada",
			Lastname:  "Lovelace",
			Company:   "Analytical Engines",
		},
		Password: "plaintext-password",
	}
}

func TestUserService_Register(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, registration("ada@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if token == "" {
		t.Error("Register() returned empty token")
	}
	if user.ID == "" {
		t.Error("Register() returned user without identifier")
	}
	if user.Role != directory.RoleUser {
		t.Errorf("Role = %q, registration must always assign %q", user.Role, directory.RoleUser)
	}

	sec, err := users.Get(user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sec.Password == "plaintext-password" {
		t.Error("stored password is plaintext, want digest")
	}
	if sec.Token != token {
		t.Error("session token not stored on the identity record")
	}
}

func TestUserService_Register_RequiredFields(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*directory.UserSecurity)
	}{
		{"missing email", func(u *directory.UserSecurity) { u.Email = "" }},
		{"missing password", func(u *directory.UserSecurity) { u.Password = "" }},
		{"missing firstname", func(u *directory.UserSecurity) { u.Firstname = "" }},
		{"missing lastname", func(u *directory.UserSecurity) { u.Lastname = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec := registration("ada@example.com")
			tt.mutate(sec)

			if _, _, err := svc.Register(ctx, sec); !errors.Is(err, directory.ErrInvalidRecord) {
				t.Errorf("Register() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registration("ada@example.com")); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	// Same address with different case is still a duplicate.
	_, _, err := svc.Register(ctx, registration("ADA@Example.COM"))
	if !errors.Is(err, directory.ErrUserExists) {
		t.Errorf("Register() error = %v, want ErrUserExists", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registration("ada@example.com")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("correct password", func(t *testing.T) {
		token, err := svc.Authenticate(ctx, "ada@example.com", "plaintext-password")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if token == "" {
			t.Error("Authenticate() returned empty token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ada@example.com", "nope")
		if !errors.Is(err, directory.ErrBadCredentials) {
			t.Errorf("Authenticate() error = %v, want ErrBadCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "plaintext-password")
		if !errors.Is(err, directory.ErrNotFound) {
			t.Errorf("Authenticate() error = %v, want ErrNotFound", err)
		}
	})
}

func TestUserService_ReauthenticationReplacesToken(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	first, user, err := svc.Register(ctx, registration("ada@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	second, err := svc.Authenticate(ctx, "ada@example.com", "plaintext-password")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	sec, err := users.Get(user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sec.Token != second {
		t.Error("stored token is not the most recently issued one")
	}
	if sec.Token == first && first != second {
		t.Error("previous session token survived re-authentication")
	}
}

func TestUserService_Update(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, user, err := svc.Register(ctx, registration("ada@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, &directory.User{
		Email:     "ada@newcorp.com",
		Firstname: "Ada",
		Lastname:  "King",
		Company:   "NewCorp",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ID != user.ID {
		t.Errorf("Update() changed the identifier: %q -> %q", user.ID, updated.ID)
	}
	if updated.Lastname != "King" || updated.Company != "NewCorp" {
		t.Errorf("Update() result = %+v", updated)
	}
	if updated.Role != directory.RoleUser {
		t.Error("Update() must not change the role")
	}
}

func TestUserService_Update_RequiredFields(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, user, err := svc.Register(ctx, registration("ada@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err = svc.Update(ctx, user.ID, &directory.User{Email: "", Firstname: "A", Lastname: "B"})
	if !errors.Is(err, directory.ErrInvalidRecord) {
		t.Errorf("Update() error = %v, want ErrInvalidRecord", err)
	}
}

func TestUserService_GetAllOmitsCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registration("ada@example.com")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	all := svc.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() len = %d, want 1", len(all))
	}
	// The public view carries no password or token fields at all; just
	// confirm the record round-trips with its descriptive fields.
	if all[0].Email != "ada@example.com" {
		t.Errorf("Email = %q", all[0].Email)
	}
}

func TestUserService_DeleteNotSupported(t *testing.T) {
	svc, _ := newUserService(t)

	if err := svc.Delete("any-id"); !errors.Is(err, directory.ErrNotSupported) {
		t.Errorf("Delete() error = %v, want ErrNotSupported", err)
	}
}

func TestUserService_CreateWithRole(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, registration("root@example.com"), directory.RoleAdmin)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if admin.Role != directory.RoleAdmin {
		t.Errorf("Role = %q, want admin", admin.Role)
	}

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, registration("x@example.com"), directory.Role("superuser"))
		if !errors.Is(err, directory.ErrInvalidRecord) {
			t.Errorf("Create() error = %v, want ErrInvalidRecord", err)
		}
	})
}
