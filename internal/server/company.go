package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
)

type createCompanyRequest struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Province string `json:"province"`

	MinimumCharge      decimal.Decimal `json:"minimum_charge"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(c.Request.Context(), companydomain.CreateRequest{
		Name:               req.Name,
		TaxID:              req.TaxID,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		City:               req.City,
		Province:           req.Province,
		MinimumCharge:      req.MinimumCharge,
		MinimumCubicMeters: req.MinimumCubicMeters,
		PricePerCubicMeter: req.PricePerCubicMeter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCompanies(c *gin.Context) {
	resp, err := s.companySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCompany(c *gin.Context) {
	resp, err := s.companySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCompany(c *gin.Context) {
	var req companydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.companySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateTariffRequest struct {
	MinimumCharge      decimal.Decimal `json:"minimum_charge"`
	MinimumCubicMeters int64           `json:"minimum_cubic_meters"`
	PricePerCubicMeter decimal.Decimal `json:"price_per_cubic_meter"`
}

func (s *Server) UpdateTariff(c *gin.Context) {
	var req updateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.UpdateTariff(c.Request.Context(), companydomain.UpdateTariffRequest{
		ID:                 c.Param("id"),
		MinimumCharge:      req.MinimumCharge,
		MinimumCubicMeters: req.MinimumCubicMeters,
		PricePerCubicMeter: req.PricePerCubicMeter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if companyID, parseErr := companydomain.ParseID(resp.ID); parseErr == nil {
		targetID := resp.ID
		_ = s.auditSvc.Record(c.Request.Context(), &companyID, auditdomain.ActionTariffUpdated, "company", &targetID, map[string]any{
			"minimum_charge":        resp.MinimumCharge.String(),
			"minimum_cubic_meters":  resp.MinimumCubicMeters,
			"price_per_cubic_meter": resp.PricePerCubicMeter.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
