package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deskline/billing/internal/adapter/http/dto"
	"github.com/deskline/billing/internal/usecase"
)

// AlertHandler handles billing alert HTTP requests.
type AlertHandler struct {
	alertUC          *usecase.AlertUseCase
	reconciliationUC *usecase.ReconciliationUseCase
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertUC *usecase.AlertUseCase, reconciliationUC *usecase.ReconciliationUseCase) *AlertHandler {
	return &AlertHandler{
		alertUC:          alertUC,
		reconciliationUC: reconciliationUC,
	}
}

// ListOpen lists a tenant's unresolved alerts, newest-first.
func (h *AlertHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant ID", "")
		return
	}

	alerts, err := h.alertUC.ListOpen(r.Context(), tenantID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list alerts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AlertsFromDomain(alerts))
}

// Resolve closes an open alert. Resolving an alert that does not belong to
// the tenant in the path reports 404.
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	alertID := chi.URLParam(r, "alertID")
	if tenantID == "" || alertID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant or alert ID", "")
		return
	}

	if err := h.alertUC.Resolve(r.Context(), alertID, tenantID); err != nil {
		writeError(w, mapDomainError(err), "failed to resolve alert", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// PaymentFailed handles the failed-invoice notification: it raises a
// payment_failed alert and enqueues the dunning schedule in one call.
func (h *AlertHandler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	invoiceID := chi.URLParam(r, "invoiceID")
	if tenantID == "" || invoiceID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant or invoice ID", "")
		return
	}

	var req dto.PaymentFailedRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if err := h.reconciliationUC.HandleFailedInvoice(r.Context(), tenantID, invoiceID, req.Reason); err != nil {
		writeError(w, mapDomainError(err), "failed to handle failed invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
