package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/clock"
	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	companyrepository "github.com/aquabill/aquabill/internal/company/repository"
	"github.com/aquabill/aquabill/internal/config"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	invoicerepository "github.com/aquabill/aquabill/internal/invoice/repository"
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
	"github.com/aquabill/aquabill/internal/payment/repository"
	"github.com/aquabill/aquabill/internal/payment/service"
	"github.com/aquabill/aquabill/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     paymentdomain.Service
	company snowflake.ID
	client  snowflake.ID
	invoice snowflake.ID
}

func newFixture(t *testing.T, total string) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))

	f := &fixture{
		db:      db,
		node:    node,
		clock:   fc,
		company: node.Generate(),
		client:  node.Generate(),
		invoice: node.Generate(),
	}
	f.svc = service.New(service.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     fc,
		GenID:     node,
		Repo:      repository.Provide(),
		Invoices:  invoicerepository.Provide(),
		Companies: companyrepository.Provide(),
		Billing:   config.StaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	now := fc.Now()
	if err := db.Create(&companydomain.Company{
		ID:                 f.company,
		Name:               "Aguas do Norte",
		MinimumCharge:      decimal.RequireFromString("300"),
		MinimumCubicMeters: 5,
		PricePerCubicMeter: decimal.RequireFromString("100"),
		AcceptCash:         true,
		AcceptBankTransfer: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	if err := db.Create(&clientdomain.Client{
		ID:        f.client,
		CompanyID: f.company,
		Name:      "Joana Macamo",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := db.Create(&invoicedomain.Invoice{
		ID:              f.invoice,
		CompanyID:       f.company,
		ClientID:        f.client,
		MeterID:         node.Generate(),
		ReadingID:       node.Generate(),
		InvoiceNumber:   "INV-202501-00001",
		Sequence:        1,
		PreviousReading: decimal.RequireFromString("100"),
		CurrentReading:  decimal.RequireFromString("112.5"),
		Consumption:     decimal.RequireFromString("12.5"),
		BaseCharge:      decimal.RequireFromString("300"),
		UnitPrice:       decimal.RequireFromString("100"),
		TotalAmount:     decimal.RequireFromString(total),
		Status:          invoicedomain.StatusPending,
		IssuedAt:        now,
		DueDate:         now.AddDate(0, 0, 15),
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return f
}

func (f *fixture) pay(amount, method string) (*paymentdomain.Response, error) {
	return f.svc.Record(context.Background(), paymentdomain.RecordRequest{
		CompanyID:     f.company.String(),
		InvoiceID:     f.invoice.String(),
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: method,
	})
}

func (f *fixture) invoiceStatus(t *testing.T) string {
	t.Helper()
	var status string
	if err := f.db.Raw(`SELECT status FROM invoices WHERE id = ?`, f.invoice).Scan(&status).Error; err != nil {
		t.Fatalf("load invoice status: %v", err)
	}
	return status
}

func TestPartialPaymentsSettleInvoice(t *testing.T) {
	f := newFixture(t, "1000")

	first, err := f.pay("600", paymentdomain.MethodCash)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if !first.RemainingAmount.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("remaining = %s, want 400", first.RemainingAmount)
	}
	if first.InvoiceStatus != invoicedomain.StatusPending {
		t.Fatalf("invoice status = %s, want PENDING", first.InvoiceStatus)
	}
	if !strings.HasPrefix(first.ReceiptNumber, "RCP-202501-") {
		t.Fatalf("receipt number = %s", first.ReceiptNumber)
	}

	_, err = f.pay("500", paymentdomain.MethodCash)
	var overpay *paymentdomain.OverpaymentError
	if !errors.As(err, &overpay) {
		t.Fatalf("err = %v, want OverpaymentError", err)
	}
	if !overpay.Remaining.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("overpay remaining = %s, want 400", overpay.Remaining)
	}
	if !overpay.Attempted.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("overpay attempted = %s, want 500", overpay.Attempted)
	}

	last, err := f.pay("400", paymentdomain.MethodBankTransfer)
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if !last.RemainingAmount.IsZero() {
		t.Fatalf("remaining = %s, want 0", last.RemainingAmount)
	}
	if last.InvoiceStatus != invoicedomain.StatusPaid {
		t.Fatalf("invoice status = %s, want PAID", last.InvoiceStatus)
	}
	if got := f.invoiceStatus(t); got != invoicedomain.StatusPaid {
		t.Fatalf("stored status = %s, want PAID", got)
	}
}

func TestPaymentAgainstSettledInvoice(t *testing.T) {
	f := newFixture(t, "1000")

	if _, err := f.pay("1000", paymentdomain.MethodCash); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := f.pay("1", paymentdomain.MethodCash); !errors.Is(err, paymentdomain.ErrAlreadySettled) {
		t.Fatalf("err = %v, want ErrAlreadySettled", err)
	}
}

func TestPaymentMethodValidation(t *testing.T) {
	f := newFixture(t, "1000")

	if _, err := f.pay("100", "CHEQUE"); !errors.Is(err, paymentdomain.ErrInvalidMethod) {
		t.Fatalf("err = %v, want ErrInvalidMethod", err)
	}
	// Company accepts cash and bank transfer only.
	if _, err := f.pay("100", paymentdomain.MethodMpesa); !errors.Is(err, paymentdomain.ErrMethodNotAccepted) {
		t.Fatalf("err = %v, want ErrMethodNotAccepted", err)
	}
}

func TestPaymentAmountValidation(t *testing.T) {
	f := newFixture(t, "1000")

	if _, err := f.pay("0", paymentdomain.MethodCash); !errors.Is(err, paymentdomain.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if _, err := f.pay("-50", paymentdomain.MethodCash); !errors.Is(err, paymentdomain.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestPaymentUnknownInvoice(t *testing.T) {
	f := newFixture(t, "1000")

	_, err := f.svc.Record(context.Background(), paymentdomain.RecordRequest{
		CompanyID:     f.company.String(),
		InvoiceID:     "424242424242",
		Amount:        decimal.RequireFromString("100"),
		PaymentMethod: paymentdomain.MethodCash,
	})
	if !errors.Is(err, paymentdomain.ErrInvoiceNotFound) {
		t.Fatalf("err = %v, want ErrInvoiceNotFound", err)
	}
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	f := newFixture(t, "900")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.pay("300", paymentdomain.MethodCash)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
	}

	var paid decimal.Decimal
	if err := f.db.Raw(`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?`, f.invoice).Scan(&paid).Error; err != nil {
		t.Fatalf("sum payments: %v", err)
	}
	if !paid.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("paid total = %s, want 900", paid)
	}
	if got := f.invoiceStatus(t); got != invoicedomain.StatusPaid {
		t.Fatalf("stored status = %s, want PAID", got)
	}
}
