package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"appdird/internal/auth"
	"appdird/internal/cache"
	"appdird/internal/config"
	"appdird/internal/directory"
	"appdird/internal/objstore"
	"appdird/internal/server"
)

// UserCache and AppCache are the two dual-backed record caches the
// service runs on, one per record type, each with its own directory and
// remote prefix.
type (
	UserCache = cache.Cache[directory.UserSecurity, *directory.UserSecurity]
	AppCache  = cache.Cache[directory.Application, *directory.Application]
)

// App is the application layer between the CLI and the directory
// services. It constructs all dependencies from config — object store,
// record caches (primed during construction), token service, REST server —
// and owns their lifecycle. The caller must call Close when done.
type App struct {
	cfg     *config.Config
	users   *directory.UserService
	apps    *directory.AppService
	server  *server.Server
	logFile *os.File
}

// New creates a fully wired App from the given config. component
// identifies the CLI command being run (e.g. "serve", "UserAdd").
// Configuration problems and an uncreatable record directory are fatal:
// the error is returned and the process should not continue serving.
func New(ctx context.Context, cfg *config.Config, component string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, component)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	store, err := objstore.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	durability := cache.Durability(cfg.Store.Durability)

	usersCache, err := cache.New[directory.UserSecurity](ctx, cache.Options{
		Dir:        cfg.Users.Dir,
		Remote:     store,
		Prefix:     cfg.Users.Prefix,
		Durability: durability,
		Logger:     log,
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("priming user cache: %w", err)
	}

	appsCache, err := cache.New[directory.Application](ctx, cache.Options{
		Dir:        cfg.Apps.Dir,
		Remote:     store,
		Prefix:     cfg.Apps.Prefix,
		Durability: durability,
		Logger:     log,
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("priming application cache: %w", err)
	}

	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	tokens, err := auth.NewTokens(cfg.Auth.SigningKey, ttl, directory.RealClock{})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	userSvc := directory.NewUserService(usersCache, auth.NewHasher(), tokens, log)
	appSvc := directory.NewAppService(appsCache, log)
	gate := server.NewGate(usersCache, tokens, log)

	return &App{
		cfg:     cfg,
		users:   userSvc,
		apps:    appSvc,
		server:  server.New(userSvc, appSvc, gate, log),
		logFile: logFile,
	}, nil
}

// Serve runs the HTTP server on the configured listen address and blocks.
func (a *App) Serve() error {
	return a.server.Run(a.cfg.Listen)
}

// CreateUser registers an identity with an explicit role. Used by the
// admin CLI to bootstrap accounts the public registration endpoint cannot
// create (it always assigns role "user").
func (a *App) CreateUser(ctx context.Context, email, firstname, lastname, company, password string, role directory.Role) (*directory.User, error) {
	sec := &directory.UserSecurity{
		User: directory.User{
			Email:     email,
			Firstname: firstname,
			Lastname:  lastname,
			Company:   company,
		},
		Password: password,
	}
	return a.users.Create(ctx, sec, role)
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
