package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditrepository "github.com/aquabill/aquabill/internal/audit/repository"
	auditservice "github.com/aquabill/aquabill/internal/audit/service"
	billingservice "github.com/aquabill/aquabill/internal/billing/service"
	clientrepository "github.com/aquabill/aquabill/internal/client/repository"
	clientservice "github.com/aquabill/aquabill/internal/client/service"
	"github.com/aquabill/aquabill/internal/clock"
	companyrepository "github.com/aquabill/aquabill/internal/company/repository"
	companyservice "github.com/aquabill/aquabill/internal/company/service"
	"github.com/aquabill/aquabill/internal/config"
	delinquencyservice "github.com/aquabill/aquabill/internal/delinquency/service"
	invoicerepository "github.com/aquabill/aquabill/internal/invoice/repository"
	invoiceservice "github.com/aquabill/aquabill/internal/invoice/service"
	meterrepository "github.com/aquabill/aquabill/internal/meter/repository"
	meterservice "github.com/aquabill/aquabill/internal/meter/service"
	"github.com/aquabill/aquabill/internal/observability"
	obsmetrics "github.com/aquabill/aquabill/internal/observability/metrics"
	paymentrepository "github.com/aquabill/aquabill/internal/payment/repository"
	paymentservice "github.com/aquabill/aquabill/internal/payment/service"
	readingrepository "github.com/aquabill/aquabill/internal/reading/repository"
	readingservice "github.com/aquabill/aquabill/internal/reading/service"
	"github.com/aquabill/aquabill/internal/server"
	"github.com/aquabill/aquabill/internal/testutil"
)

type testEnv struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	httpSrv *httptest.Server
	baseURL string
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.httpSrv.Close()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	db, err := testutil.Open()
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	fc := clock.NewFakeClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	holder := config.StaticBillingConfigHolder(config.DefaultBillingConfig())
	cfg := config.Config{AppName: "aquabill", Environment: "test"}

	companies := companyservice.New(companyservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo: companyrepository.Provide(),
	})
	clients := clientservice.New(clientservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo: clientrepository.Provide(),
	})
	meters := meterservice.New(meterservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo:    meterrepository.Provide(),
		Clients: clientrepository.Provide(),
	})
	readings := readingservice.New(readingservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo:   readingrepository.Provide(),
		Meters: meterrepository.Provide(),
	})
	invoices := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo:      invoicerepository.Provide(),
		Companies: companyrepository.Provide(),
		Readings:  readingrepository.Provide(),
		Billing:   holder,
	})
	payments := paymentservice.New(paymentservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo:      paymentrepository.Provide(),
		Invoices:  invoicerepository.Provide(),
		Companies: companyrepository.Provide(),
		Billing:   holder,
	})
	audit := auditservice.New(auditservice.Params{
		DB: db, Log: log, Clock: fc, GenID: node,
		Repo: auditrepository.Provide(),
	})
	billing := billingservice.New(billingservice.Params{
		DB: db, Log: log,
		Readings: readings,
		Invoices: invoices,
		Audit:    audit,
	})
	delinquency := delinquencyservice.New(delinquencyservice.Params{
		DB: db, Log: log, Clock: fc,
		Billing: holder,
	})

	engine := server.NewEngine(observability.Config{Environment: "test"}, obsmetrics.NewHTTPMetrics())
	server.NewServer(server.ServerParams{
		Gin:            engine,
		Cfg:            cfg,
		Log:            log,
		DB:             db,
		GenID:          node,
		CompanySvc:     companies,
		ClientSvc:      clients,
		MeterSvc:       meters,
		ReadingSvc:     readings,
		InvoiceSvc:     invoices,
		PaymentSvc:     payments,
		BillingSvc:     billing,
		DelinquencySvc: delinquency,
		AuditSvc:       audit,
	})

	srv := httptest.NewServer(engine)
	return &testEnv{
		db:      db,
		clock:   fc,
		httpSrv: srv,
		baseURL: srv.URL,
	}, nil
}

func resetDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, table := range testutil.Tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
	env.clock.Set(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, payload
}

func decodeData(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	out := map[string]any{}
	if err := json.Unmarshal(envelope.Data, &out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
	return out
}

func stringField(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	v, ok := m[key].(string)
	if !ok {
		t.Fatalf("field %q missing or not a string: %v", key, m[key])
	}
	return v
}

func decimalField(t *testing.T, m map[string]any, key string) decimal.Decimal {
	t.Helper()
	raw := m[key]
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatalf("field %q not decimal: %v", key, raw)
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		t.Fatalf("field %q missing: %v", key, raw)
		return decimal.Zero
	}
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}
