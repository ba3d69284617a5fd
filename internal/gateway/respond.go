package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/cart"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/checkout"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleError maps domain and backend errors onto gateway responses. Backend
// statuses pass through with the backend's message.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.Status, "backend_error", apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, checkout.ErrNoItemsSelected),
		errors.Is(err, checkout.ErrNoAddress),
		errors.Is(err, checkout.ErrBelowMinimumOrder),
		errors.Is(err, checkout.ErrPointsExceedLimit),
		errors.Is(err, cart.ErrQuantityRange),
		errors.Is(err, cart.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, checkout.ErrAttemptNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrAmountMismatch),
		errors.Is(err, checkout.ErrOrderMismatch),
		errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	default:
		slog.Error("unhandled gateway error", "err", err)
		respondError(w, http.StatusBadGateway, "upstream_error", "upstream request failed")
	}
}
