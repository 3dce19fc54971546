package directory

import "encoding/json"

// Role classifies an identity for endpoint authorization.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// User is the public view of an identity. It carries no credential or
// session state and is safe to serialize in API responses.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Company   string `json:"company,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// UserSecurity is the stored identity record: the public view plus the
// password digest and the current session token. Only the most recently
// issued token is kept; issuing a new one invalidates the previous session.
type UserSecurity struct {
	User
	Password string `json:"password,omitempty"` // one-way digest, never plaintext
	Token    string `json:"token,omitempty"`
}

// Public returns the identity stripped of credential and session state.
func (u *UserSecurity) Public() *User {
	cp := u.User
	return &cp
}

func (u *UserSecurity) RecordID() string      { return u.ID }
func (u *UserSecurity) SetRecordID(id string) { u.ID = id }

// Icon is a reference to an application icon image.
type Icon struct {
	Icon string `json:"icon"`
}

// Screenshot is a promotional or documentation image for an application.
type Screenshot struct {
	URL     string `json:"url"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Application is a published application entry in the directory.
// The manifest payload is opaque to the service and returned verbatim.
type Application struct {
	AppID        string          `json:"appId"`
	Name         string          `json:"name"`
	Version      string          `json:"version,omitempty"`
	Title        string          `json:"title,omitempty"`
	Tooltip      string          `json:"tooltip,omitempty"`
	Description  string          `json:"description,omitempty"`
	Publisher    string          `json:"publisher"`
	ContactEmail string          `json:"contactEmail,omitempty"`
	SupportEmail string          `json:"supportEmail,omitempty"`
	Icons        []Icon          `json:"icons,omitempty"`
	Images       []Screenshot    `json:"images,omitempty"`
	ManifestType string          `json:"manifestType,omitempty"`
	Manifest     json.RawMessage `json:"manifest,omitempty"`
}

func (a *Application) RecordID() string      { return a.AppID }
func (a *Application) SetRecordID(id string) { a.AppID = id }
