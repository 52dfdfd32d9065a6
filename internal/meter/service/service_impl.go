package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	"github.com/aquabill/aquabill/internal/clock"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    meterdomain.Repository
	Clients clientdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    meterdomain.Repository
	clients clientdomain.Repository
	genID   *snowflake.Node
}

func New(p Params) meterdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("meter.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		clients: p.Clients,
		genID:   p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req meterdomain.CreateRequest) (*meterdomain.Response, error) {
	companyID, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	clientID, err := meterdomain.ParseID(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return nil, meterdomain.ErrInvalidClient
	}

	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, meterdomain.ErrInvalidSerial
	}

	if req.InitialReading.IsNegative() {
		return nil, meterdomain.ErrInvalidReading
	}

	client, err := s.clients.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, meterdomain.ErrInvalidClient
	}

	if existing, err := s.repo.FindBySerial(ctx, s.db, companyID, serial); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, meterdomain.ErrSerialTaken
	}

	now := s.clock.Now()
	m := &meterdomain.Meter{
		ID:             s.genID.Generate(),
		CompanyID:      companyID,
		ClientID:       clientID,
		SerialNumber:   serial,
		Location:       strings.TrimSpace(req.Location),
		Status:         meterdomain.StatusActive,
		IsCurrentMeter: true,
		LastReading:    req.InitialReading,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, m); err != nil {
		return nil, err
	}

	s.log.Info("meter installed",
		zap.String("meter_id", m.ID.String()),
		zap.String("client_id", m.ClientID.String()),
		zap.String("serial_number", m.SerialNumber),
	)
	return s.toResponse(m), nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]meterdomain.Response, error) {
	id, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) ListByClient(ctx context.Context, companyID, clientID string) ([]meterdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	clid, err := meterdomain.ParseID(strings.TrimSpace(clientID))
	if err != nil || clid == 0 {
		return nil, meterdomain.ErrInvalidClient
	}

	items, err := s.repo.ListByClient(ctx, s.db, cid, clid)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (*meterdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	meterID, err := meterdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, meterID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, meterdomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) Update(ctx context.Context, req meterdomain.UpdateRequest) (*meterdomain.Response, error) {
	cid, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	meterID, err := meterdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, meterID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, meterdomain.ErrNotFound
	}

	if req.Location != nil {
		item.Location = strings.TrimSpace(*req.Location)
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !meterdomain.ValidStatus(status) {
			return nil, meterdomain.ErrInvalidStatus
		}
		item.Status = status
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	return s.toResponse(item), nil
}

func (s *Service) Replace(ctx context.Context, req meterdomain.ReplaceRequest) (*meterdomain.Response, error) {
	cid, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	meterID, err := meterdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, meterdomain.ErrInvalidSerial
	}
	if req.InitialReading.IsNegative() {
		return nil, meterdomain.ErrInvalidReading
	}

	var installed *meterdomain.Meter
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := s.repo.FindByIDForUpdate(ctx, tx, cid, meterID)
		if err != nil {
			return err
		}
		if old == nil {
			return meterdomain.ErrNotFound
		}

		if existing, err := s.repo.FindBySerial(ctx, tx, cid, serial); err != nil {
			return err
		} else if existing != nil {
			return meterdomain.ErrSerialTaken
		}

		now := s.clock.Now()
		old.Status = meterdomain.StatusReplaced
		old.IsCurrentMeter = false
		old.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, old); err != nil {
			return err
		}

		installed = &meterdomain.Meter{
			ID:             s.genID.Generate(),
			CompanyID:      cid,
			ClientID:       old.ClientID,
			SerialNumber:   serial,
			Location:       strings.TrimSpace(req.Location),
			Status:         meterdomain.StatusActive,
			IsCurrentMeter: true,
			LastReading:    req.InitialReading,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return s.repo.Insert(ctx, tx, installed)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("meter replaced",
		zap.String("old_meter_id", meterID.String()),
		zap.String("new_meter_id", installed.ID.String()),
	)
	return s.toResponse(installed), nil
}

func (s *Service) parseCompanyID(value string) (snowflake.ID, error) {
	id, err := meterdomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, meterdomain.ErrInvalidCompany
	}
	return id, nil
}

func (s *Service) toResponses(items []meterdomain.Meter) []meterdomain.Response {
	resp := make([]meterdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp
}

func (s *Service) toResponse(m *meterdomain.Meter) *meterdomain.Response {
	return &meterdomain.Response{
		ID:              m.ID.String(),
		CompanyID:       m.CompanyID.String(),
		ClientID:        m.ClientID.String(),
		SerialNumber:    m.SerialNumber,
		Location:        m.Location,
		Status:          m.Status,
		IsCurrentMeter:  m.IsCurrentMeter,
		LastReading:     m.LastReading,
		LastReadingDate: m.LastReadingDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
