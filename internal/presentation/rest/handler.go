package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bobbykesh/lms/internal/application/dto"
	"github.com/bobbykesh/lms/internal/application/usecase"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
	"github.com/bobbykesh/lms/internal/platform/money"
)

// maxBodyBytes bounds request bodies; backup restores are the largest.
const maxBodyBytes = 8 << 20

// Handler exposes the loan book over HTTP.
type Handler struct {
	registerClient  *usecase.RegisterClientUseCase
	toggleBlacklist *usecase.ToggleBlacklistUseCase
	issueLoan       *usecase.IssueLoanUseCase
	recordPayment   *usecase.RecordPaymentUseCase
	addExpense      *usecase.AddExpenseUseCase
	removeExpense   *usecase.RemoveExpenseUseCase
	backup          *usecase.BackupUseCase
	queries         *usecase.Queries
	logger          *slog.Logger
}

// NewHandler wires the use cases into an HTTP handler.
func NewHandler(
	registerClient *usecase.RegisterClientUseCase,
	toggleBlacklist *usecase.ToggleBlacklistUseCase,
	issueLoan *usecase.IssueLoanUseCase,
	recordPayment *usecase.RecordPaymentUseCase,
	addExpense *usecase.AddExpenseUseCase,
	removeExpense *usecase.RemoveExpenseUseCase,
	backup *usecase.BackupUseCase,
	queries *usecase.Queries,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registerClient:  registerClient,
		toggleBlacklist: toggleBlacklist,
		issueLoan:       issueLoan,
		recordPayment:   recordPayment,
		addExpense:      addExpense,
		removeExpense:   removeExpense,
		backup:          backup,
		queries:         queries,
		logger:          logger,
	}
}

// RegisterRoutes attaches the API routes to the given router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/clients", h.handleRegisterClient).Methods(http.MethodPost)
	api.HandleFunc("/clients", h.handleListClients).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}/blacklist", h.handleToggleBlacklist).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}/credit-limit", h.handleCreditLimit).Methods(http.MethodGet)

	api.HandleFunc("/loans", h.handleIssueLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.handleListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.handleGetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", h.handleRecordPayment).Methods(http.MethodPost)

	api.HandleFunc("/expenses", h.handleAddExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses", h.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", h.handleRemoveExpense).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet)

	api.HandleFunc("/backup", h.handleExportBackup).Methods(http.MethodGet)
	api.HandleFunc("/restore", h.handleRestoreBackup).Methods(http.MethodPost)
	api.HandleFunc("/clear", h.handleClearData).Methods(http.MethodPost)
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func (h *Handler) handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterClientRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.registerClient.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.queries.ListClients(r.Context()))
}

func (h *Handler) handleToggleBlacklist(w http.ResponseWriter, r *http.Request) {
	resp, err := h.toggleBlacklist.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreditLimit(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.CreditLimit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

// issueLoanPayload is the wire form of an issuance; dates arrive as
// "2006-01-02" from date pickers.
type issueLoanPayload struct {
	ClientID      string          `json:"client_id"`
	Principal     decimal.Decimal `json:"principal"`
	RatePercent   decimal.Decimal `json:"rate_percent"`
	Term          int             `json:"term"`
	Frequency     string          `json:"frequency"`
	StartDate     string          `json:"start_date"`
	TopUpOfLoanID string          `json:"top_up_of_loan_id,omitempty"`
}

func (h *Handler) handleIssueLoan(w http.ResponseWriter, r *http.Request) {
	var payload issueLoanPayload
	if !h.decode(w, r, &payload) {
		return
	}

	startDate, err := parseDate(payload.StartDate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.issueLoan.Execute(r.Context(), dto.IssueLoanRequest{
		ClientID:      payload.ClientID,
		Principal:     payload.Principal,
		RatePercent:   payload.RatePercent,
		Term:          payload.Term,
		Frequency:     payload.Frequency,
		StartDate:     startDate,
		TopUpOfLoanID: payload.TopUpOfLoanID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleListLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.queries.ListLoans(r.Context()))
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	resp, err := h.recordPayment.Execute(r.Context(), dto.RecordPaymentRequest{
		LoanID: mux.Vars(r)["id"],
		Amount: payload.Amount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

type addExpensePayload struct {
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

func (h *Handler) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var payload addExpensePayload
	if !h.decode(w, r, &payload) {
		return
	}

	date, err := parseDate(payload.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.addExpense.Execute(r.Context(), dto.AddExpenseRequest{
		Date:     date,
		Category: payload.Category,
		Amount:   payload.Amount,
		Note:     payload.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.queries.ListExpenses(r.Context()))
}

func (h *Handler) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.removeExpense.Execute(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

// dashboardPayload decorates the snapshot with display-formatted amounts.
type dashboardPayload struct {
	TotalLent       decimal.Decimal   `json:"total_lent"`
	Outstanding     decimal.Decimal   `json:"outstanding"`
	ExpenseTotal    decimal.Decimal   `json:"expense_total"`
	NetProfit       decimal.Decimal   `json:"net_profit"`
	PortfolioAtRisk decimal.Decimal   `json:"portfolio_at_risk"`
	ClientCount     int               `json:"client_count"`
	AsOf            time.Time         `json:"as_of"`
	Display         map[string]string `json:"display"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		asOf = parsed
	}

	snap := h.queries.Dashboard(r.Context(), asOf)
	writeJSON(w, http.StatusOK, dashboardPayload{
		TotalLent:       snap.TotalLent,
		Outstanding:     snap.Outstanding,
		ExpenseTotal:    snap.ExpenseTotal,
		NetProfit:       snap.NetProfit,
		PortfolioAtRisk: snap.PortfolioAtRisk,
		ClientCount:     snap.ClientCount,
		AsOf:            snap.AsOf,
		Display: map[string]string{
			"total_lent":        money.Format(snap.TotalLent),
			"outstanding":       money.Format(snap.Outstanding),
			"expense_total":     money.Format(snap.ExpenseTotal),
			"net_profit":        money.Format(snap.NetProfit),
			"portfolio_at_risk": money.Format(snap.PortfolioAtRisk),
		},
	})
}

// ---------------------------------------------------------------------------
// Backup & restore
// ---------------------------------------------------------------------------

func (h *Handler) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	doc := h.backup.Export(r.Context())
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename()+`"`)
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.backup.Import(r.Context(), raw, confirm); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (h *Handler) handleClearData(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.backup.Clear(r.Context(), confirm); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseDate accepts both bare dates from date pickers and full RFC 3339
// timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.Join(valueobject.ErrValidation, err)
	}
	return t.UTC(), nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.writeError(w, r, errors.Join(valueobject.ErrValidation, err))
		return false
	}
	return true
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorPayload{Error: err.Error(), Code: code})
}

// statusFor maps the domain error taxonomy onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, valueobject.ErrLimitExceeded):
		return http.StatusUnprocessableEntity, "limit_exceeded"
	case errors.Is(err, valueobject.ErrTermExceeded):
		return http.StatusUnprocessableEntity, "term_exceeded"
	case errors.Is(err, valueobject.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, valueobject.ErrBadBackup):
		return http.StatusBadRequest, "bad_backup"
	case errors.Is(err, valueobject.ErrConfirmationRequired):
		return http.StatusConflict, "confirmation_required"
	case errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return http.StatusConflict, "invalid_status"
	case errors.Is(err, valueobject.ErrPersistence):
		return http.StatusServiceUnavailable, "persistence_unavailable"
	case errors.Is(err, valueobject.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
