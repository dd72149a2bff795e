package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
)

// HandlePaymentCallback receives the gateway's post-checkout callback.
// Verification and settlement are a single service call so a replayed
// or tampered callback can never half-apply.
func (s *Server) HandlePaymentCallback(c *gin.Context) {
	var req settlementdomain.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.VerifyAndSettle(c.Request.Context(), settlementdomain.CallbackRequest{
		BookingID:        strings.TrimSpace(req.BookingID),
		GatewayOrderID:   strings.TrimSpace(req.GatewayOrderID),
		GatewayPaymentID: strings.TrimSpace(req.GatewayPaymentID),
		Status:           strings.TrimSpace(req.Status),
		Signature:        strings.TrimSpace(req.Signature),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
