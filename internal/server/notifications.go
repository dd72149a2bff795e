package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListBookingNotifications(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.dispatcher.List(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RetryBookingNotifications(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.dispatcher.RetryFailed(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
