package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type generateInvoiceRequest struct {
	ReadingID string `json:"reading_id"`
}

// GenerateInvoice issues the invoice for a reading recorded earlier, e.g.
// when a previous generation attempt failed after the reading was accepted.
func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.GenerateForReading(c.Request.Context(), s.companyID(c), req.ReadingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context(), s.companyID(c), c.Query("status"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.ListPending(c.Request.Context(), s.companyID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	resp, err := s.paymentSvc.ListByInvoice(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
