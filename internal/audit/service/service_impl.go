package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/requestctx"
	"github.com/aquabill/aquabill/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, companyID *snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}
	if ip := requestctx.IPAddressFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := requestctx.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	companyID, err := auditdomain.ParseID(strings.TrimSpace(req.CompanyID))
	if err != nil || companyID == 0 {
		return auditdomain.ListResponse{}, auditdomain.ErrInvalidCompany
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListResponse{}, auditdomain.ErrInvalidTimeRange
	}

	var cursor *auditdomain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursor = &auditdomain.Cursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	logs, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		CompanyID:  companyID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      pageSize,
	})
	if err != nil {
		return auditdomain.ListResponse{}, err
	}

	resp := auditdomain.ListResponse{}
	if len(logs) > pageSize {
		logs = logs[:pageSize]
		last := logs[len(logs)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return auditdomain.ListResponse{}, err
		}
		resp.NextPageToken = token
		resp.HasMore = true
	}

	resp.AuditLogs = make([]auditdomain.AuditLog, 0, len(logs))
	for _, entry := range logs {
		resp.AuditLogs = append(resp.AuditLogs, *entry)
	}
	return resp, nil
}
