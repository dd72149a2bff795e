package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
)

func (s *Server) CreateBooking(c *gin.Context) {
	var req bookingdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Create(c.Request.Context(), bookingdomain.CreateRequest{
		TourID:          strings.TrimSpace(req.TourID),
		OptionID:        strings.TrimSpace(req.OptionID),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		TravelDate:      strings.TrimSpace(req.TravelDate),
		PartySize:       req.PartySize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetBookingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.bookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelBooking(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.bookingSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefundBooking(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.bookingSvc.MarkRefunded(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
