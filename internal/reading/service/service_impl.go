package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/clock"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	"github.com/aquabill/aquabill/internal/observability/metrics"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    readingdomain.Repository
	Meters  meterdomain.Repository
	Metrics *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    readingdomain.Repository
	meters  meterdomain.Repository
	genID   *snowflake.Node
	metrics *metrics.BillingMetrics
}

func New(p Params) readingdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reading.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		meters:  p.Meters,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req readingdomain.RecordRequest) (*readingdomain.Response, error) {
	var resp *readingdomain.Response
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		resp, err = s.RecordTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RecordTx locks the meter row, enforces monotonicity against the stored
// last reading, then persists the reading and advances the meter. The caller
// owns the transaction.
func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, req readingdomain.RecordRequest) (*readingdomain.Response, error) {
	companyID, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	meterID, err := readingdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil || meterID == 0 {
		s.metrics.RecordReadingRejected("invalid_meter")
		return nil, readingdomain.ErrMeterNotFound
	}

	if req.Reading.IsNegative() {
		s.metrics.RecordReadingRejected("invalid_reading")
		return nil, readingdomain.ErrInvalidReading
	}

	meter, err := s.meters.FindByIDForUpdate(ctx, tx, companyID, meterID)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		s.metrics.RecordReadingRejected("meter_not_found")
		return nil, readingdomain.ErrMeterNotFound
	}
	if !meter.Billable() {
		s.metrics.RecordReadingRejected("meter_inactive")
		s.log.Warn("reading rejected on inactive meter",
			zap.String("meter_id", meter.ID.String()),
			zap.String("status", meter.Status),
		)
		return nil, readingdomain.ErrMeterInactive
	}

	if req.Reading.LessThan(meter.LastReading) {
		s.metrics.RecordReadingRejected("regression")
		s.log.Warn("reading regression rejected",
			zap.String("meter_id", meter.ID.String()),
			zap.String("last_reading", meter.LastReading.String()),
			zap.String("attempted_reading", req.Reading.String()),
		)
		return nil, readingdomain.ErrReadingRegression
	}

	recordedAt := s.clock.Now()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	reading := &readingdomain.MeterReading{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		MeterID:         meter.ID,
		ClientID:        meter.ClientID,
		Reading:         req.Reading,
		PreviousReading: meter.LastReading,
		Consumption:     req.Reading.Sub(meter.LastReading),
		Notes:           strings.TrimSpace(req.Notes),
		RecordedAt:      recordedAt,
		CreatedAt:       s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, reading); err != nil {
		return nil, err
	}

	if err := s.meters.UpdateLastReading(ctx, tx, meter.ID, reading.Reading, recordedAt); err != nil {
		return nil, err
	}

	s.metrics.RecordReadingAccepted(companyID.String())
	s.log.Info("reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("meter_id", meter.ID.String()),
		zap.String("consumption", reading.Consumption.String()),
	)
	return s.toResponse(reading), nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (*readingdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	readingID, err := readingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, readingdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, readingID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, readingdomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) ListByMeter(ctx context.Context, companyID, meterID string) ([]readingdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	mid, err := readingdomain.ParseID(strings.TrimSpace(meterID))
	if err != nil || mid == 0 {
		return nil, readingdomain.ErrMeterNotFound
	}

	items, err := s.repo.ListByMeter(ctx, s.db, cid, mid)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) ListByCompany(ctx context.Context, companyID string, limit int) ([]readingdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	items, err := s.repo.ListByCompany(ctx, s.db, cid, limit)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) parseCompanyID(value string) (snowflake.ID, error) {
	id, err := readingdomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, readingdomain.ErrInvalidCompany
	}
	return id, nil
}

func (s *Service) toResponses(items []readingdomain.MeterReading) []readingdomain.Response {
	resp := make([]readingdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp
}

func (s *Service) toResponse(r *readingdomain.MeterReading) *readingdomain.Response {
	return &readingdomain.Response{
		ID:              r.ID.String(),
		CompanyID:       r.CompanyID.String(),
		MeterID:         r.MeterID.String(),
		ClientID:        r.ClientID.String(),
		Reading:         r.Reading,
		PreviousReading: r.PreviousReading,
		Consumption:     r.Consumption,
		Notes:           r.Notes,
		RecordedAt:      r.RecordedAt,
		CreatedAt:       r.CreatedAt,
	}
}
