package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/aquabill/aquabill/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := auditdomain.ListRequest{
		Pagination: query.Pagination,
		CompanyID:  s.companyID(c),
		Action:     query.Action,
		TargetType: query.TargetType,
		TargetID:   query.TargetID,
	}

	if query.StartAt != "" {
		t, err := time.Parse(time.RFC3339, query.StartAt)
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_time", "invalid time"))
			return
		}
		req.StartAt = &t
	}
	if query.EndAt != "" {
		t, err := time.Parse(time.RFC3339, query.EndAt)
		if err != nil {
			AbortWithError(c, newValidationError("end_at", "invalid_time", "invalid time"))
			return
		}
		req.EndAt = &t
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
