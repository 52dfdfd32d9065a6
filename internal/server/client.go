package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
)

type createClientRequest struct {
	Name           string `json:"name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateRequest{
		CompanyID:      s.companyID(c),
		Name:           req.Name,
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
	resp, err := s.clientSvc.List(c.Request.Context(), s.companyID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClient(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req clientdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CompanyID = s.companyID(c)
	req.ID = c.Param("id")

	resp, err := s.clientSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClientInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.ListByClient(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClientPayments(c *gin.Context) {
	resp, err := s.paymentSvc.ListByClient(c.Request.Context(), s.companyID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
