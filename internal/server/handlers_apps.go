package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"appdird/internal/directory"
)

func (s *Server) getApp(c *gin.Context) {
	app, err := s.apps.Get(c.Param("appId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "application record not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "application": app})
}

func (s *Server) searchApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "OK", "applications": s.apps.Search()})
}

// publishApp upserts an application entry after the ownership check. A
// persist failure maps to Not Modified: the record was not saved.
func (s *Server) publishApp(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgDenied})
		return
	}

	caller, err := s.users.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}

	var app directory.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid application payload"})
		return
	}

	saved, err := s.apps.Publish(c.Request.Context(), caller, &app)
	if err != nil {
		var persist *directory.PersistError
		if errors.As(err, &persist) {
			c.JSON(http.StatusNotModified, gin.H{"message": "application not added or modified"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "application": saved})
}
