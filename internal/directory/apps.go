package directory

import (
	"context"
	"fmt"
	"strings"
)

// AppService manages application entries. Publishing is an upsert keyed by
// appId, with an ownership precondition: the caller's company must match
// the incoming publisher and, for an existing entry, the stored publisher.
// The backing store itself is policy-free; the check lives here.
type AppService struct {
	apps   AppStore
	logger Logger
}

// NewAppService creates an AppService with the provided dependencies.
func NewAppService(apps AppStore, logger Logger) *AppService {
	return &AppService{apps: apps, logger: logger}
}

// Get returns the application entry for appID, or ErrNotFound.
func (s *AppService) Get(appID string) (*Application, error) {
	return s.apps.Get(appID)
}

// Search returns every application entry in the directory.
func (s *AppService) Search() []*Application {
	return s.apps.GetAll()
}

// Publish creates or replaces an application entry on behalf of caller.
// Name and manifest are required; an absent appId gets a generated one in
// the store. The ownership checks run before any persistence is attempted.
func (s *AppService) Publish(ctx context.Context, caller *User, app *Application) (*Application, error) {
	if app == nil || app.Name == "" || len(app.Manifest) == 0 {
		return nil, fmt.Errorf("%w: name and manifest are required", ErrInvalidRecord)
	}

	if !strings.EqualFold(app.Publisher, caller.Company) {
		return nil, fmt.Errorf("%w: company/publisher=%s", ErrNotPublisher, app.Publisher)
	}

	if app.AppID != "" {
		if existing, err := s.apps.Get(app.AppID); err == nil {
			if !strings.EqualFold(existing.Publisher, caller.Company) {
				return nil, fmt.Errorf("%w: company/publisher=%s", ErrNotPublisher, existing.Publisher)
			}
		}
	}

	saved, err := s.apps.Upsert(ctx, app)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application published", "appId", saved.AppID, "publisher", saved.Publisher)
	return saved, nil
}
