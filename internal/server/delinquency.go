package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	delinquencydomain "github.com/aquabill/aquabill/internal/delinquency/domain"
)

func (s *Server) DelinquencyReport(c *gin.Context) {
	resp, err := s.delinquencySvc.Report(c.Request.Context(), delinquencydomain.ReportRequest{
		CompanyID: s.companyID(c),
		ClientID:  c.Query("client_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
