package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetInvoiceSnapshot(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	snapshot, err := s.invoiceSvc.Snapshot(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

func (s *Server) RenderInvoiceHTML(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	out, err := s.invoiceSvc.RenderHTML(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	reader, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="invoice.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}
