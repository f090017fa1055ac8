package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deskline/billing/internal/adapter/http/dto"
	"github.com/deskline/billing/internal/usecase"
)

// DunningHandler handles dunning event HTTP requests.
type DunningHandler struct {
	dunningUC *usecase.DunningUseCase
}

// NewDunningHandler creates a new DunningHandler.
func NewDunningHandler(dunningUC *usecase.DunningUseCase) *DunningHandler {
	return &DunningHandler{dunningUC: dunningUC}
}

// ListByInvoice lists the dunning sequence for an invoice in step order.
func (h *DunningHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	invoiceID := chi.URLParam(r, "invoiceID")
	if tenantID == "" || invoiceID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant or invoice ID", "")
		return
	}

	events, err := h.dunningUC.ListByInvoice(r.Context(), tenantID, invoiceID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list dunning events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DunningEventsFromDomain(events))
}

// ListPending lists pending dunning events for the notifier to dispatch.
func (h *DunningHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)

	events, err := h.dunningUC.ListPending(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list pending dunning events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DunningEventsFromDomain(events))
}

// MarkSent records that the notifier dispatched the event.
func (h *DunningHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.dunningUC.MarkSent)
}

// MarkFailed records that the dispatch attempt failed.
func (h *DunningHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.dunningUC.MarkFailed)
}

func (h *DunningHandler) updateStatus(w http.ResponseWriter, r *http.Request, update func(ctx context.Context, eventID string) error) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	if err := update(r.Context(), eventID); err != nil {
		writeError(w, mapDomainError(err), "failed to update dunning event", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
