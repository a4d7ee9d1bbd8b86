package handlers

import (
	"context"
	"net/http"

	"sideio-backend/internal/models"
)

type leadSubmitter interface {
	Submit(ctx context.Context, req models.ContactRequest) (*models.Lead, error)
}

type ContactHandler struct {
	leads leadSubmitter
}

func NewContactHandler(leads leadSubmitter) *ContactHandler {
	return &ContactHandler{leads: leads}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	lead, err := h.leads.Submit(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "received",
		"lead_id": lead.ID,
	})
}
