package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	billingdomain "github.com/aquabill/aquabill/internal/billing/domain"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Readings readingdomain.Service
	Invoices invoicedomain.Service
	Audit    auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	readings readingdomain.Service
	invoices invoicedomain.Service
	audit    auditdomain.Service
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		readings: p.Readings,
		invoices: p.Invoices,
		audit:    p.Audit,
	}
}

func (s *Service) SubmitReading(ctx context.Context, req billingdomain.SubmitReadingRequest) (*billingdomain.SubmitReadingResponse, error) {
	var (
		reading *readingdomain.Response
		invoice *invoicedomain.Response
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reading, err = s.readings.RecordTx(ctx, tx, readingdomain.RecordRequest{
			CompanyID:  req.CompanyID,
			MeterID:    req.MeterID,
			Reading:    req.Reading,
			Notes:      req.Notes,
			RecordedAt: req.RecordedAt,
		})
		if err != nil {
			return err
		}

		companyID, err := readingdomain.ParseID(reading.CompanyID)
		if err != nil {
			return err
		}
		readingID, err := readingdomain.ParseID(reading.ID)
		if err != nil {
			return err
		}

		invoice, err = s.invoices.GenerateTx(ctx, tx, companyID, readingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, reading, invoice)

	s.log.Info("reading billed",
		zap.String("reading_id", reading.ID),
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)
	return &billingdomain.SubmitReadingResponse{
		ReadingID:       reading.ID,
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		ClientID:        invoice.ClientID,
		Consumption:     invoice.Consumption,
		BaseCharge:      invoice.BaseCharge,
		ExcessCharge:    invoice.ExcessCharge,
		TotalAmount:     invoice.TotalAmount,
		DueDate:         invoice.DueDate,
		PreviousReading: invoice.PreviousReading,
		CurrentReading:  invoice.CurrentReading,
	}, nil
}

// writeAudit records the two audit entries after commit. Audit failures are
// logged by the audit service and do not affect the billing result.
func (s *Service) writeAudit(ctx context.Context, reading *readingdomain.Response, invoice *invoicedomain.Response) {
	companyID, err := readingdomain.ParseID(reading.CompanyID)
	if err != nil {
		return
	}

	readingID := reading.ID
	_ = s.audit.Record(ctx, &companyID, auditdomain.ActionReadingRecorded, "meter_reading", &readingID, map[string]any{
		"meter_id":    reading.MeterID,
		"reading":     reading.Reading.String(),
		"consumption": reading.Consumption.String(),
	})

	invoiceID := invoice.ID
	_ = s.audit.Record(ctx, &companyID, auditdomain.ActionInvoiceIssued, "invoice", &invoiceID, map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"reading_id":     reading.ID,
		"total_amount":   invoice.TotalAmount.String(),
	})
}
