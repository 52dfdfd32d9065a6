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
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      paymentdomain.Repository
	Invoices  invoicedomain.Repository
	Companies companydomain.Repository
	Billing   *config.BillingConfigHolder
	Metrics   *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      paymentdomain.Repository
	invoices  invoicedomain.Repository
	companies companydomain.Repository
	billing   *config.BillingConfigHolder
	genID     *snowflake.Node
	metrics   *metrics.BillingMetrics
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		invoices:  p.Invoices,
		companies: p.Companies,
		billing:   p.Billing,
		genID:     p.GenID,
		metrics:   p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (*paymentdomain.Response, error) {
	companyID, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	invoiceID, err := paymentdomain.ParseID(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return nil, paymentdomain.ErrInvoiceNotFound
	}

	if !req.Amount.IsPositive() {
		s.metrics.RecordPaymentRejected("invalid_amount")
		return nil, paymentdomain.ErrInvalidAmount
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if !paymentdomain.ValidMethod(method) {
		s.metrics.RecordPaymentRejected("invalid_method")
		return nil, paymentdomain.ErrInvalidMethod
	}

	var resp *paymentdomain.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoices.FindByIDForUpdate(ctx, tx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			s.metrics.RecordPaymentRejected("invoice_not_found")
			return paymentdomain.ErrInvoiceNotFound
		}
		if invoice.Status == invoicedomain.StatusPaid {
			s.metrics.RecordPaymentRejected("already_settled")
			return paymentdomain.ErrAlreadySettled
		}

		company, err := s.companies.FindByID(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if company == nil {
			return companydomain.ErrNotFound
		}
		if !company.AcceptsMethod(method) {
			s.metrics.RecordPaymentRejected("method_not_accepted")
			return paymentdomain.ErrMethodNotAccepted
		}

		paid, err := s.repo.SumByInvoice(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}

		remaining := invoice.TotalAmount.Sub(paid)
		if req.Amount.GreaterThan(remaining) {
			s.metrics.RecordPaymentRejected("overpayment")
			s.log.Warn("overpayment rejected",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("remaining", remaining.String()),
				zap.String("attempted", req.Amount.String()),
			)
			return &paymentdomain.OverpaymentError{Remaining: remaining, Attempted: req.Amount}
		}

		paidAt := s.clock.Now()
		payment := &paymentdomain.Payment{
			ID:               s.genID.Generate(),
			CompanyID:        companyID,
			InvoiceID:        invoice.ID,
			ClientID:         invoice.ClientID,
			Amount:           req.Amount,
			PaymentMethod:    method,
			PaymentReference: strings.TrimSpace(req.PaymentReference),
			Notes:            strings.TrimSpace(req.Notes),
			PaidAt:           paidAt,
			CreatedAt:        paidAt,
		}
		payment.ReceiptNumber = receiptNumber(s.billing.Get().ReceiptPrefix, paidAt, payment.ID)

		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}

		remaining = remaining.Sub(req.Amount)
		status := invoice.Status
		if remaining.IsZero() {
			status = invoicedomain.StatusPaid
			if err := s.invoices.UpdateStatus(ctx, tx, invoice.ID, status, paidAt); err != nil {
				return err
			}
			s.metrics.RecordInvoiceSettled()
		}

		resp = s.toResponse(payment)
		resp.RemainingAmount = remaining
		resp.InvoiceStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentAccepted(method)
	s.log.Info("payment recorded",
		zap.String("payment_id", resp.ID),
		zap.String("invoice_id", resp.InvoiceID),
		zap.String("amount", resp.Amount.String()),
		zap.String("method", resp.PaymentMethod),
		zap.String("invoice_status", resp.InvoiceStatus),
	)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (*paymentdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	paymentID, err := paymentdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, paymentdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, paymentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, paymentdomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) ListByInvoice(ctx context.Context, companyID, invoiceID string) ([]paymentdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	iid, err := paymentdomain.ParseID(strings.TrimSpace(invoiceID))
	if err != nil || iid == 0 {
		return nil, paymentdomain.ErrInvoiceNotFound
	}

	items, err := s.repo.ListByInvoice(ctx, s.db, cid, iid)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) ListByClient(ctx context.Context, companyID, clientID string) ([]paymentdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	clid, err := paymentdomain.ParseID(strings.TrimSpace(clientID))
	if err != nil || clid == 0 {
		return nil, paymentdomain.ErrInvalidID
	}

	items, err := s.repo.ListByClient(ctx, s.db, cid, clid)
	if err != nil {
		return nil, err
	}

	return s.toResponses(items), nil
}

func (s *Service) parseCompanyID(value string) (snowflake.ID, error) {
	id, err := paymentdomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, paymentdomain.ErrInvalidCompany
	}
	return id, nil
}

func (s *Service) toResponses(items []paymentdomain.Payment) []paymentdomain.Response {
	resp := make([]paymentdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}
	return resp
}

func (s *Service) toResponse(p *paymentdomain.Payment) *paymentdomain.Response {
	return &paymentdomain.Response{
		ID:               p.ID.String(),
		CompanyID:        p.CompanyID.String(),
		InvoiceID:        p.InvoiceID.String(),
		ClientID:         p.ClientID.String(),
		Amount:           p.Amount,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ReceiptNumber:    p.ReceiptNumber,
		Notes:            p.Notes,
		PaidAt:           p.PaidAt,
		CreatedAt:        p.CreatedAt,
	}
}

func receiptNumber(prefix string, paidAt time.Time, id snowflake.ID) string {
	return fmt.Sprintf("%s-%s-%s", prefix, paidAt.Format("200601"), id)
}
