package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobbykesh/lms/internal/application/state"
	"github.com/bobbykesh/lms/internal/application/usecase"
	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/service"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
	"github.com/bobbykesh/lms/internal/infrastructure/messaging"
)

// memoryStore keeps the dataset in memory for handler tests.
type memoryStore struct {
	data model.Dataset
}

func (s *memoryStore) Load(context.Context) (model.Dataset, error) { return s.data, nil }

func (s *memoryStore) Save(_ context.Context, data model.Dataset) error {
	s.data = data
	return nil
}

func (s *memoryStore) Subscribe(ctx context.Context, _ func(model.Dataset), _ func(error)) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := slog.Default()
	book := state.NewBook(&memoryStore{}, logger)
	require.NoError(t, book.Load(context.Background()))

	limits := service.NewCreditLimitEngine()
	publisher := messaging.NopEventPublisher{}

	h := NewHandler(
		usecase.NewRegisterClientUseCase(book, publisher, logger),
		usecase.NewToggleBlacklistUseCase(book, publisher, logger),
		usecase.NewIssueLoanUseCase(book, limits, publisher, logger),
		usecase.NewRecordPaymentUseCase(book, publisher, logger),
		usecase.NewAddExpenseUseCase(book, publisher, logger),
		usecase.NewRemoveExpenseUseCase(book, publisher, logger),
		usecase.NewBackupUseCase(book, logger),
		usecase.NewQueries(book, limits, service.NewPortfolioReporter()),
		logger,
	)

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ClientAndLoanFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register a client.
	rec := doJSON(t, router, http.MethodPost, "/api/clients", map[string]string{
		"name":  "Amina",
		"phone": "0788 123 456",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var client struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	require.NotEmpty(t, client.ID)

	// Check the starter credit limit.
	rec = doJSON(t, router, http.MethodGet, "/api/clients/"+client.ID+"/credit-limit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var limit struct {
		Limit decimal.Decimal `json:"limit"`
		Tier  string          `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limit))
	assert.True(t, limit.Limit.Equal(decimal.NewFromInt(20_000)))
	assert.Equal(t, "Starter", limit.Tier)

	// Issue a loan.
	rec = doJSON(t, router, http.MethodPost, "/api/loans", map[string]any{
		"client_id":    client.ID,
		"principal":    "15000",
		"rate_percent": "10",
		"term":         6,
		"frequency":    "MONTHLY",
		"start_date":   "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loan struct {
		ID             string          `json:"id"`
		ClientName     string          `json:"client_name"`
		TotalRepayable decimal.Decimal `json:"total_repayable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, "Amina", loan.ClientName)
	assert.True(t, loan.TotalRepayable.Equal(decimal.NewFromInt(16_500)))

	// Record a payment.
	rec = doJSON(t, router, http.MethodPost, "/api/loans/"+loan.ID+"/payments", map[string]string{
		"amount": "2750",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payment struct {
		Balance decimal.Decimal `json:"balance"`
		Status  string          `json:"loan_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	assert.True(t, payment.Balance.Equal(decimal.NewFromInt(13_750)))
	assert.Equal(t, "ACTIVE", payment.Status)

	// Dashboard shows the lent amount with display formatting.
	rec = doJSON(t, router, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		TotalLent decimal.Decimal   `json:"total_lent"`
		Display   map[string]string `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.True(t, dash.TotalLent.Equal(decimal.NewFromInt(15_000)))
	assert.Equal(t, "15,000.00", dash.Display["total_lent"])
}

func TestHandler_ErrorStatuses(t *testing.T) {
	router := newTestRouter(t)

	t.Run("unknown loan is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/loans/ghost/payments", map[string]string{"amount": "100"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("over-limit loan is 422", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/clients", map[string]string{"name": "Joseph"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var client struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))

		rec = doJSON(t, router, http.MethodPost, "/api/loans", map[string]any{
			"client_id":    client.ID,
			"principal":    "25000",
			"rate_percent": "10",
			"term":         6,
			"frequency":    "MONTHLY",
			"start_date":   "2025-03-01",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var payload errorPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "limit_exceeded", payload.Code)
	})

	t.Run("restore without confirm is 409", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/restore", map[string]any{
			"timestamp": "2025-04-09T00:00:00Z",
			"clients":   []any{},
			"loans":     []any{},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("restore of a malformed backup is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/restore?confirm=true", map[string]any{
			"unrelated": true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{valueobject.ErrNotFound, http.StatusNotFound, "not_found"},
		{valueobject.ErrLimitExceeded, http.StatusUnprocessableEntity, "limit_exceeded"},
		{valueobject.ErrTermExceeded, http.StatusUnprocessableEntity, "term_exceeded"},
		{valueobject.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{valueobject.ErrBadBackup, http.StatusBadRequest, "bad_backup"},
		{valueobject.ErrConfirmationRequired, http.StatusConflict, "confirmation_required"},
		{valueobject.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status"},
		{valueobject.ErrPersistence, http.StatusServiceUnavailable, "persistence_unavailable"},
		{valueobject.ErrValidation, http.StatusBadRequest, "validation_failed"},
		{assert.AnError, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, code := statusFor(fmt.Errorf("wrapped: %w", tc.err))
			assert.Equal(t, tc.want, status)
			assert.Equal(t, tc.code, code)
		})
	}
}
