// Package server exposes the REST surface and the access-control gate
// evaluated ahead of every non-public operation.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"appdird/internal/directory"
)

// ContextUserID is the gin context key under which the gate stores the
// authenticated identity id for downstream handlers.
const ContextUserID = "id"

const bearerScheme = "Bearer"

// Gate rejection messages. Rebuilt into a fresh response per request.
const (
	msgForbidden    = "access forbidden"
	msgNoToken      = "no token provided"
	msgInvalidToken = "invalid token, authenticate again"
	msgMismatch     = "token mismatch"
	msgExpired      = "token expired, authenticate again"
	msgDenied       = "access denied"
)

// Policy declares what an endpoint requires of its caller. Exactly one of
// the three shapes applies per route: public, deny-all, or
// identity-required with an optional role set.
type Policy struct {
	Public  bool
	DenyAll bool
	Roles   []directory.Role
}

// Public marks an endpoint that needs no credential.
func Public() Policy { return Policy{Public: true} }

// DenyAll marks an endpoint nobody may call.
func DenyAll() Policy { return Policy{DenyAll: true} }

// RolesAllowed marks an endpoint requiring an authenticated identity whose
// role is in the given set. With no roles, any authenticated identity passes.
func RolesAllowed(roles ...directory.Role) Policy { return Policy{Roles: roles} }

// Gate is the per-request authentication and authorization filter. It
// decodes the bearer token, resolves the identity, confirms the stored
// session token, and enforces the route's role policy. A rejection aborts
// the chain; the wrapped handler never executes.
type Gate struct {
	users  directory.UserStore
	tokens directory.TokenService
	logger directory.Logger
}

// NewGate creates a Gate with the provided dependencies.
func NewGate(users directory.UserStore, tokens directory.TokenService, logger directory.Logger) *Gate {
	return &Gate{users: users, tokens: tokens, logger: logger}
}

// Middleware returns the gin handler enforcing policy for one route.
func (g *Gate) Middleware(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		// everybody can access (e.g. user/create or user/authenticate)
		if policy.Public {
			c.Next()
			return
		}

		// nobody can access
		if policy.DenyAll {
			abort(c, http.StatusForbidden, msgForbidden)
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerScheme) {
			g.logger.Warn("no token provided", "path", c.FullPath())
			abort(c, http.StatusUnauthorized, msgNoToken)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerScheme))

		id, err := g.tokens.Validate(token)
		if err != nil {
			g.logger.Warn("invalid token provided", "path", c.FullPath())
			abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		sec, err := g.users.Get(id)
		if err != nil {
			g.logger.Warn("token mismatch", "id", id)
			abort(c, http.StatusUnauthorized, msgMismatch)
			return
		}

		// The stored session token is the one most recently issued. A
		// differing token means the caller re-authenticated elsewhere.
		if sec.Token == "" || sec.Token != token {
			g.logger.Warn("token expired", "id", id)
			abort(c, http.StatusUnauthorized, msgExpired)
			return
		}

		if len(policy.Roles) > 0 && !roleAllowed(sec.Role, policy.Roles) {
			g.logger.Warn("role not allowed", "id", id, "role", sec.Role)
			abort(c, http.StatusUnauthorized, msgDenied)
			return
		}

		c.Set(ContextUserID, id)
		c.Next()
	}
}

func roleAllowed(role directory.Role, allowed []directory.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
