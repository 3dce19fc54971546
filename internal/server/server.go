package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"appdird/internal/directory"
)

// Server wires the directory services behind the REST surface. Every
// non-public route passes through the gate before its handler runs.
type Server struct {
	users  *directory.UserService
	apps   *directory.AppService
	gate   *Gate
	logger directory.Logger
	engine *gin.Engine
}

// New builds the router. The engine is ready to serve once this returns.
func New(users *directory.UserService, apps *directory.AppService, gate *Gate, logger directory.Logger) *Server {
	s := &Server{
		users:  users,
		apps:   apps,
		gate:   gate,
		logger: logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")

	user := v1.Group("/user")
	user.POST("/create", s.gate.Middleware(Public()), s.createUser)
	user.POST("/authenticate", s.gate.Middleware(Public()), s.authenticate)
	user.GET("/get", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser)), s.getUser)
	user.GET("/getAll", s.gate.Middleware(RolesAllowed(directory.RoleAdmin)), s.getAllUsers)
	user.POST("/update", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser)), s.updateUser)
	user.DELETE("/delete", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser)), s.deleteUser)

	apps := v1.Group("/apps")
	apps.GET("/search", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser, directory.RoleGuest)), s.searchApps)
	apps.POST("", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser)), s.publishApp)
	apps.GET("/:appId", s.gate.Middleware(RolesAllowed(directory.RoleAdmin, directory.RoleUser, directory.RoleGuest)), s.getApp)
}

// Handler exposes the router for serving and for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// callerID returns the identity id the gate attached to the request.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// writeError maps the domain error taxonomy onto HTTP responses. Every
// recoverable error becomes a response here; nothing propagates.
func writeError(c *gin.Context, err error) {
	var persist *directory.PersistError

	switch {
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, directory.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, directory.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, directory.ErrNotPublisher):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, directory.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, directory.ErrNotSupported):
		c.JSON(http.StatusNotImplemented, gin.H{"message": err.Error()})
	case errors.As(err, &persist):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "record not saved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
