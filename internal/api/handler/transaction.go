// internal/api/handler/transaction.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/util"
)

// TransactionHandler handles HTTP requests related to the ledger and its reports.
type TransactionHandler struct {
	responder
	ledger  service.LedgerService
	reports service.ReportService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger service.LedgerService, reports service.ReportService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		responder: responder{logger: logger},
		ledger:    ledger,
		reports:   reports,
	}
}

// TransactionRequest represents the request body for create and update.
// Absent fields are nil; owner and id are never read from the body.
type TransactionRequest struct {
	Title    *string          `json:"title"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category"`
	Date     *domain.Date     `json:"date"`
}

func (req TransactionRequest) patch() domain.TransactionPatch {
	return domain.TransactionPatch{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
	}
}

// List returns all of the caller's transactions.
// GET /api/transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	txs, err := h.ledger.List(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, txs)
}

// Create records a new transaction for the caller.
// POST /api/transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	tx, err := h.ledger.Create(r.Context(), userID, req.patch())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, tx)
}

// Get returns one of the caller's transactions.
// GET /api/transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.target(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	tx, err := h.ledger.Get(r.Context(), userID, id)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, tx)
}

// Update applies a partial update to one of the caller's transactions.
// PUT /api/transactions/{id}
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.target(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	tx, err := h.ledger.Update(r.Context(), userID, id, req.patch())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, tx)
}

// Delete removes one of the caller's transactions.
// DELETE /api/transactions/{id}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.target(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	if err := h.ledger.Delete(r.Context(), userID, id); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithMessage(w, http.StatusOK, "Transaction removed")
}

// Reports summarises the caller's ledger over the selected time range.
// GET /api/transactions/reports?timeRange=7|30|90|year|all
func (h *TransactionHandler) Reports(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	report, err := h.reports.Generate(r.Context(), userID, r.URL.Query().Get("timeRange"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to generate report", "user_id", userID, "error", err)
		h.respondWithMessage(w, http.StatusInternalServerError, "Error generating reports")
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}

// target resolves the caller and the {id} path parameter. A malformed id
// cannot name any transaction, so it is reported as not found.
func (h *TransactionHandler) target(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, util.ErrTransactionNotFound
	}
	return userID, id, nil
}
