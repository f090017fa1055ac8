package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deskline/billing/internal/adapter/http/dto"
	"github.com/deskline/billing/internal/usecase"
)

// LedgerHandler handles ledger entry and summary HTTP requests.
type LedgerHandler struct {
	recorderUC *usecase.RecorderUseCase
	summaryUC  *usecase.SummaryUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(recorderUC *usecase.RecorderUseCase, summaryUC *usecase.SummaryUseCase) *LedgerHandler {
	return &LedgerHandler{
		recorderUC: recorderUC,
		summaryUC:  summaryUC,
	}
}

// Record records a single ledger entry. Resubmitting the same stripe charge
// id returns the previously recorded entry, so the response is 201 either
// way and callers can rely on the returned entry id.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.recorderUC.Record(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Summary returns reconciled billing totals for a tenant over a rolling
// window.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant ID", "")
		return
	}

	windowDays := parseIntQuery(r, "window_days", 0)

	summary, err := h.summaryUC.Summarize(r.Context(), tenantID, windowDays)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to summarize ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
