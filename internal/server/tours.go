package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
)

func (s *Server) ListTours(c *gin.Context) {
	pageToken := strings.TrimSpace(c.Query("page_token"))
	pageSize := 0
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, invalidRequestError())
			return
		}
		pageSize = parsed
	}

	resp, err := s.tourSvc.ListTours(c.Request.Context(), pageToken, pageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTourByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.tourSvc.GetTour(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSupplier(c *gin.Context) {
	var req tourdomain.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tourSvc.CreateSupplier(c.Request.Context(), tourdomain.CreateSupplierRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTour(c *gin.Context) {
	var req tourdomain.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tourSvc.CreateTour(c.Request.Context(), tourdomain.CreateTourRequest{
		SupplierID:   strings.TrimSpace(req.SupplierID),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Location:     req.Location,
		MaxGroupSize: req.MaxGroupSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTourOption(c *gin.Context) {
	tourID := strings.TrimSpace(c.Param("id"))

	var req tourdomain.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tourSvc.CreateOption(c.Request.Context(), tourID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
