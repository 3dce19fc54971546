package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"appdird/internal/directory"
)

// createUser registers a self-service identity and returns a fresh token,
// so a successful registration is immediately authenticated.
func (s *Server) createUser(c *gin.Context) {
	var sec directory.UserSecurity
	if err := c.ShouldBindJSON(&sec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user payload"})
		return
	}

	token, user, err := s.users.Register(c.Request.Context(), &sec)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "token": token, "user": user})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) authenticate(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid credentials payload"})
		return
	}

	token, err := s.users.Authenticate(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "token": token})
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgDenied})
		return
	}

	user, err := s.users.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})
}

func (s *Server) getAllUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "OK", "users": s.users.GetAll()})
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgDenied})
		return
	}

	var user directory.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user payload"})
		return
	}

	updated, err := s.users.Update(c.Request.Context(), id, &user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated", "user": updated})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgDenied})
		return
	}

	if err := s.users.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
