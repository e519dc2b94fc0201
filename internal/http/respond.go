package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/checkout"
	"github.com/binhvu284/nobleco-sub000/internal/clients"
	"github.com/binhvu284/nobleco-sub000/internal/ordersync"
	"github.com/binhvu284/nobleco-sub000/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// handleFlowError maps core errors onto HTTP statuses.
func handleFlowError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, checkout.ErrNoDraftOrder), errors.Is(err, ordersync.ErrNoOrder):
		respondError(w, http.StatusConflict, "no_draft_order", err.Error())
	case errors.Is(err, ordersync.ErrAlreadyFinalized):
		respondError(w, http.StatusConflict, "already_finalized", err.Error())
	case errors.Is(err, payment.ErrNotStarted):
		respondError(w, http.StatusConflict, "payment_not_started", err.Error())
	case errors.Is(err, clients.ErrNameRequired), errors.Is(err, clients.ErrPhoneRequired):
		respondError(w, http.StatusBadRequest, "invalid_client", err.Error())
	case errors.Is(err, clients.ErrUnknownClient):
		respondError(w, http.StatusNotFound, "unknown_client", err.Error())
	case errors.As(err, &apiErr):
		respondError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}
}
