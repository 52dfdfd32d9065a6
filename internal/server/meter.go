package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
)

type createMeterRequest struct {
	ClientID       string          `json:"client_id"`
	SerialNumber   string          `json:"serial_number"`
	Location       string          `json:"location"`
	InitialReading decimal.Decimal `json:"initial_reading"`
}

func (s *Server) CreateMeter(c *gin.Context) {
	var req createMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meterSvc.Create(c.Request.Context(), meterdomain.CreateRequest{
		CompanyID:      s.companyID(c),
		ClientID:       req.ClientID,
		SerialNumber:   req.SerialNumber,
		Location:       req.Location,
		InitialReading: req.InitialReading,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMeters(c *gin.Context) {
	if clientID := c.Query("client_id"); clientID != "" {
		resp, err := s.meterSvc.ListByClient(c.Request.Context(), s.companyID(c), clientID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	resp, err := s.meterSvc.List(c.Request.Context(), s.companyID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMeter(c *gin.Context) {
	resp, err := s.meterSvc.GetByID(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateMeterRequest struct {
	Location *string `json:"location,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (s *Server) UpdateMeter(c *gin.Context) {
	var req updateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meterSvc.Update(c.Request.Context(), meterdomain.UpdateRequest{
		CompanyID: s.companyID(c),
		ID:        c.Param("id"),
		Location:  req.Location,
		Status:    req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type replaceMeterRequest struct {
	SerialNumber   string          `json:"serial_number"`
	Location       string          `json:"location"`
	InitialReading decimal.Decimal `json:"initial_reading"`
}

func (s *Server) ReplaceMeter(c *gin.Context) {
	var req replaceMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meterSvc.Replace(c.Request.Context(), meterdomain.ReplaceRequest{
		CompanyID:      s.companyID(c),
		MeterID:        c.Param("id"),
		SerialNumber:   req.SerialNumber,
		Location:       req.Location,
		InitialReading: req.InitialReading,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if companyID, parseErr := meterdomain.ParseID(resp.CompanyID); parseErr == nil {
		oldMeterID := c.Param("id")
		_ = s.auditSvc.Record(c.Request.Context(), &companyID, auditdomain.ActionMeterReplaced, "meter", &oldMeterID, map[string]any{
			"new_meter_id":  resp.ID,
			"serial_number": resp.SerialNumber,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMeterReadings(c *gin.Context) {
	resp, err := s.readingSvc.ListByMeter(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
