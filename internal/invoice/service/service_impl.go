package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/clock"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	"github.com/aquabill/aquabill/internal/config"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/internal/observability/metrics"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/tariff"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      invoicedomain.Repository
	Companies companydomain.Repository
	Readings  readingdomain.Repository
	Billing   *config.BillingConfigHolder
	Metrics   *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      invoicedomain.Repository
	companies companydomain.Repository
	readings  readingdomain.Repository
	billing   *config.BillingConfigHolder
	genID     *snowflake.Node
	metrics   *metrics.BillingMetrics
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		companies: p.Companies,
		readings:  p.Readings,
		billing:   p.Billing,
		genID:     p.GenID,
		metrics:   p.Metrics,
	}
}

func (s *Service) GenerateForReading(ctx context.Context, companyID, readingID string) (*invoicedomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	rid, err := invoicedomain.ParseID(strings.TrimSpace(readingID))
	if err != nil || rid == 0 {
		return nil, invoicedomain.ErrReadingNotFound
	}

	var resp *invoicedomain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp, err = s.GenerateTx(ctx, tx, cid, rid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GenerateTx prices the reading under the company's current tariff and
// issues the invoice. The company row lock serializes sequence numbering;
// the unique index on reading_id makes generation idempotent per reading.
func (s *Service) GenerateTx(ctx context.Context, tx *gorm.DB, companyID, readingID snowflake.ID) (*invoicedomain.Response, error) {
	reading, err := s.readings.FindByID(ctx, tx, companyID, readingID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, invoicedomain.ErrReadingNotFound
	}

	company, err := s.companies.FindByIDForUpdate(ctx, tx, reading.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, companydomain.ErrNotFound
	}
	if !company.TariffConfigured() {
		return nil, companydomain.ErrTariffNotConfigured
	}

	charge, err := tariff.ComputeCharge(reading.Consumption, company.Tariff())
	if err != nil {
		return nil, err
	}

	sequence, err := s.repo.NextSequence(ctx, tx, company.ID)
	if err != nil {
		return nil, err
	}

	cfg := s.billing.Get()
	issuedAt := s.clock.Now()
	inv := &invoicedomain.Invoice{
		ID:              s.genID.Generate(),
		CompanyID:       company.ID,
		ClientID:        reading.ClientID,
		MeterID:         reading.MeterID,
		ReadingID:       reading.ID,
		InvoiceNumber:   invoiceNumber(cfg.InvoicePrefix, issuedAt, sequence),
		Sequence:        sequence,
		PreviousReading: reading.PreviousReading,
		CurrentReading:  reading.Reading,
		Consumption:     reading.Consumption,
		BaseCharge:      charge.BaseCharge,
		UnitPrice:       company.PricePerCubicMeter,
		TotalAmount:     charge.TotalAmount,
		Status:          invoicedomain.StatusPending,
		IssuedAt:        issuedAt,
		DueDate:         issuedAt.AddDate(0, 0, cfg.DueInDays),
		CreatedAt:       issuedAt,
		UpdatedAt:       issuedAt,
	}

	inserted, err := s.repo.Insert(ctx, tx, inv)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, invoicedomain.ErrDuplicateInvoice
	}

	s.metrics.RecordInvoiceIssued()
	s.log.Info("invoice issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("reading_id", reading.ID.String()),
		zap.String("total_amount", inv.TotalAmount.String()),
	)
	return s.toResponse(inv), nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (*invoicedomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	invoiceID, err := invoicedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, invoiceID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, invoicedomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) List(ctx context.Context, companyID, status string) ([]invoicedomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if status != "" && status != invoicedomain.StatusPending && status != invoicedomain.StatusPaid {
		return nil, invoicedomain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, cid, status)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) ListPending(ctx context.Context, companyID string) ([]invoicedomain.Response, error) {
	return s.List(ctx, companyID, invoicedomain.StatusPending)
}

func (s *Service) ListByClient(ctx context.Context, companyID, clientID string) ([]invoicedomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	clid, err := invoicedomain.ParseID(strings.TrimSpace(clientID))
	if err != nil || clid == 0 {
		return nil, invoicedomain.ErrInvalidID
	}

	items, err := s.repo.ListByClient(ctx, s.db, cid, clid)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) parseCompanyID(value string) (snowflake.ID, error) {
	id, err := invoicedomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invoicedomain.ErrInvalidCompany
	}
	return id, nil
}

func (s *Service) toResponses(items []invoicedomain.Invoice) []invoicedomain.Response {
	resp := make([]invoicedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp
}

func (s *Service) toResponse(inv *invoicedomain.Invoice) *invoicedomain.Response {
	return &invoicedomain.Response{
		ID:              inv.ID.String(),
		CompanyID:       inv.CompanyID.String(),
		ClientID:        inv.ClientID.String(),
		MeterID:         inv.MeterID.String(),
		ReadingID:       inv.ReadingID.String(),
		InvoiceNumber:   inv.InvoiceNumber,
		PreviousReading: inv.PreviousReading,
		CurrentReading:  inv.CurrentReading,
		Consumption:     inv.Consumption,
		BaseCharge:      inv.BaseCharge,
		ExcessCharge:    inv.TotalAmount.Sub(inv.BaseCharge),
		UnitPrice:       inv.UnitPrice,
		TotalAmount:     inv.TotalAmount,
		Status:          inv.Status,
		IsOverdue:       inv.Overdue(s.clock.Now()),
		IssuedAt:        inv.IssuedAt,
		DueDate:         inv.DueDate,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func invoiceNumber(prefix string, issuedAt time.Time, sequence int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, issuedAt.Format("200601"), sequence)
}
