package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingdomain "github.com/aquabill/aquabill/internal/billing/domain"
)

type submitReadingRequest struct {
	MeterID    string          `json:"meter_id"`
	Reading    decimal.Decimal `json:"reading"`
	Notes      string          `json:"notes"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

// SubmitReading is the cashier flow: record the reading and hand back the
// invoice it produced in one shot.
func (s *Server) SubmitReading(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.SubmitReading(c.Request.Context(), billingdomain.SubmitReadingRequest{
		CompanyID:  s.companyID(c),
		MeterID:    req.MeterID,
		Reading:    req.Reading,
		Notes:      req.Notes,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReadings(c *gin.Context) {
	if meterID := c.Query("meter_id"); meterID != "" {
		resp, err := s.readingSvc.ListByMeter(c.Request.Context(), s.companyID(c), meterID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	resp, err := s.readingSvc.ListByCompany(c.Request.Context(), s.companyID(c), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReading(c *gin.Context) {
	resp, err := s.readingSvc.GetByID(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
