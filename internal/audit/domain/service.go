package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/aquabill/aquabill/pkg/db/pagination"
)

type ListRequest struct {
	pagination.Pagination
	CompanyID  string
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// Record writes an audit entry. Failures are reported but callers
	// treat them as non-fatal: audit must never abort the operation it
	// records.
	Record(ctx context.Context, companyID *snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
