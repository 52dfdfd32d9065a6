package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/config"
	delinquencydomain "github.com/aquabill/aquabill/internal/delinquency/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Billing *config.BillingConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	billing *config.BillingConfigHolder
}

func New(p Params) delinquencydomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("delinquency.service"),
		clock:   p.Clock,
		billing: p.Billing,
	}
}

type delinquentRow struct {
	InvoiceID     snowflake.ID    `gorm:"column:invoice_id"`
	InvoiceNumber string          `gorm:"column:invoice_number"`
	ClientID      snowflake.ID    `gorm:"column:client_id"`
	ClientName    string          `gorm:"column:client_name"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount"`
	PaidAmount    decimal.Decimal `gorm:"column:paid_amount"`
	DueDate       time.Time       `gorm:"column:due_date"`
}

func (s *Service) Report(ctx context.Context, req delinquencydomain.ReportRequest) (*delinquencydomain.Report, error) {
	cid, err := delinquencydomain.ParseID(strings.TrimSpace(req.CompanyID))
	if err != nil || cid == 0 {
		return nil, delinquencydomain.ErrInvalidCompany
	}

	now := s.clock.Now()

	query := `SELECT i.id AS invoice_id, i.invoice_number, i.client_id, c.name AS client_name,
	                 i.total_amount, COALESCE(p.paid, 0) AS paid_amount, i.due_date
	          FROM invoices i
	          JOIN clients c ON c.id = i.client_id
	          LEFT JOIN (
	              SELECT invoice_id, SUM(amount) AS paid FROM payments GROUP BY invoice_id
	          ) p ON p.invoice_id = i.id
	          WHERE i.company_id = ? AND i.status = 'PENDING' AND i.due_date < ?`
	args := []any{cid, now}

	if clientID := strings.TrimSpace(req.ClientID); clientID != "" {
		clid, err := delinquencydomain.ParseID(clientID)
		if err != nil || clid == 0 {
			return nil, delinquencydomain.ErrInvalidClient
		}
		query += ` AND i.client_id = ?`
		args = append(args, clid)
	}
	query += ` ORDER BY i.client_id ASC, i.due_date ASC`

	var rows []delinquentRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := s.billing.Get().AgingBuckets

	report := &delinquencydomain.Report{
		CompanyID:        cid.String(),
		GeneratedAt:      now,
		TotalOutstanding: decimal.Zero,
		Clients:          []delinquencydomain.ClientDelinquency{},
	}

	var current *delinquencydomain.ClientDelinquency
	for i := range rows {
		row := &rows[i]

		if current == nil || current.ClientID != row.ClientID.String() {
			report.Clients = append(report.Clients, delinquencydomain.ClientDelinquency{
				ClientID:      row.ClientID.String(),
				ClientName:    row.ClientName,
				TotalDue:      decimal.Zero,
				OldestDueDate: row.DueDate,
			})
			current = &report.Clients[len(report.Clients)-1]
		}

		remaining := row.TotalAmount.Sub(row.PaidAmount)
		daysOverdue := int(now.Sub(row.DueDate).Hours() / 24)

		current.Invoices = append(current.Invoices, delinquencydomain.DelinquentInvoice{
			InvoiceID:       row.InvoiceID.String(),
			InvoiceNumber:   row.InvoiceNumber,
			TotalAmount:     row.TotalAmount,
			PaidAmount:      row.PaidAmount,
			RemainingAmount: remaining,
			DueDate:         row.DueDate,
			DaysOverdue:     daysOverdue,
			AgingBucket:     bucketLabel(buckets, daysOverdue),
		})
		current.TotalDue = current.TotalDue.Add(remaining)
		if row.DueDate.Before(current.OldestDueDate) {
			current.OldestDueDate = row.DueDate
		}
		report.TotalOutstanding = report.TotalOutstanding.Add(remaining)
	}

	report.ClientCount = len(report.Clients)

	s.log.Debug("delinquency report generated",
		zap.String("company_id", report.CompanyID),
		zap.Int("client_count", report.ClientCount),
		zap.String("total_outstanding", report.TotalOutstanding.String()),
	)
	return report, nil
}

func bucketLabel(buckets []config.AgingBucket, daysOverdue int) string {
	for _, b := range buckets {
		if daysOverdue < b.MinDays {
			continue
		}
		if b.MaxDays == nil || daysOverdue <= *b.MaxDays {
			return b.Label
		}
	}
	return ""
}
