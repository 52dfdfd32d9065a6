package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
)

type recordPaymentRequest struct {
	InvoiceID        string          `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordRequest{
		CompanyID:        s.companyID(c),
		InvoiceID:        req.InvoiceID,
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if companyID, parseErr := paymentdomain.ParseID(resp.CompanyID); parseErr == nil {
		paymentID := resp.ID
		_ = s.auditSvc.Record(c.Request.Context(), &companyID, auditdomain.ActionPaymentRecorded, "payment", &paymentID, map[string]any{
			"invoice_id":     resp.InvoiceID,
			"amount":         resp.Amount.String(),
			"method":         resp.PaymentMethod,
			"receipt_number": resp.ReceiptNumber,
		})
		if resp.InvoiceStatus == invoicedomain.StatusPaid {
			invoiceID := resp.InvoiceID
			_ = s.auditSvc.Record(c.Request.Context(), &companyID, auditdomain.ActionInvoiceSettled, "invoice", &invoiceID, map[string]any{
				"payment_id": resp.ID,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPayment(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
