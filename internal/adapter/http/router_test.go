package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/adapter/http/handler"
	apimiddleware "github.com/iho/billsplit/internal/adapter/http/middleware"
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessiveImports(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	body := `{"reference_month":"2024-03","candidates":[]}`

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code == http.StatusTooManyRequests {
		t.Fatalf("expected first request to pass the limiter, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyTTL = time.Hour
	}))

	body := `{"reference_month":"2024-03","candidates":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/imports",
		"GET /api/v1/ledger/{month}",
		"GET /api/v1/months/{month}/transactions",
		"DELETE /api/v1/months/{month}/transactions",
		"POST /api/v1/months/{month}/close",
		"GET /api/v1/months/{month}/closings",
		"GET /api/v1/months/{month}/installments",
		"PATCH /api/v1/transactions/{id}/classify",
		"POST /api/v1/payments/",
		"POST /api/v1/withdrawals/",
		"POST /api/v1/maintenance",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	importHandler := handler.NewImportHandler(&stubImportService{})
	ledgerHandler := handler.NewLedgerHandler(&stubLedgerService{})
	paymentHandler := handler.NewPaymentHandler(&stubPaymentService{})
	maintenanceHandler := handler.NewMaintenanceHandler(&stubMaintenanceService{})

	idGen := &stubIDGenerator{}
	classifyUC := usecase.NewClassifyUseCase(nil, nil, idGen, zerolog.Nop())
	transactionHandler := handler.NewTransactionHandler(classifyUC, nil)

	withdrawalUC := usecase.NewWithdrawalUseCase(nil, idGen, zerolog.Nop())
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalUC)

	invoiceHandler := handler.NewInvoiceHandler(nil)

	cfg := RouterConfig{
		ImportHandler:      importHandler,
		LedgerHandler:      ledgerHandler,
		TransactionHandler: transactionHandler,
		PaymentHandler:     paymentHandler,
		WithdrawalHandler:  withdrawalHandler,
		InvoiceHandler:     invoiceHandler,
		MaintenanceHandler: maintenanceHandler,
		HealthHandler:      &handler.HealthHandler{},
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubImportService struct{}

func (stubImportService) Reconcile(ctx context.Context, input usecase.ReconcileInput) (*usecase.ReconcileReport, error) {
	return &usecase.ReconcileReport{ReferenceMonth: input.ReferenceMonth}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) ComputeLedger(ctx context.Context, month string) (*usecase.LedgerSummary, error) {
	return &usecase.LedgerSummary{Month: month}, nil
}

func (stubLedgerService) OpenInstallments(ctx context.Context, month string) (*usecase.InstallmentReport, error) {
	return &usecase.InstallmentReport{Month: month}, nil
}

func (stubLedgerService) CloseMonth(ctx context.Context, month string) (*usecase.CloseResult, error) {
	return &usecase.CloseResult{Summary: &usecase.LedgerSummary{Month: month}}, nil
}

func (stubLedgerService) Closings(ctx context.Context, month string) ([]*domain.MonthlyClosing, error) {
	return []*domain.MonthlyClosing{}, nil
}

func (stubLedgerService) Transactions(ctx context.Context, month string) ([]*domain.Transaction, error) {
	return []*domain.Transaction{}, nil
}

func (stubLedgerService) DeleteMonth(ctx context.Context, month string) (int64, error) {
	return 0, nil
}

type stubPaymentService struct{}

func (stubPaymentService) Record(ctx context.Context, in usecase.PaymentInput) (*domain.Payment, error) {
	return &domain.Payment{ID: "pay"}, nil
}

func (stubPaymentService) Delete(ctx context.Context, id string) error { return nil }

func (stubPaymentService) ListByMonth(ctx context.Context, month string) ([]*domain.Payment, error) {
	return []*domain.Payment{}, nil
}

type stubMaintenanceService struct{}

func (stubMaintenanceService) Run(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error) {
	return &usecase.MaintenanceReport{ReferenceMonth: referenceMonth}, nil
}

type stubIDGenerator struct{}

func (stubIDGenerator) Generate() string { return "id" }

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
