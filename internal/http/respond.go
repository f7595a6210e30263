package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	authservice "github.com/yogesh1636/Bibliotheca/internal/auth/service"
	catalogrepo "github.com/yogesh1636/Bibliotheca/internal/catalog/repository"
	"github.com/yogesh1636/Bibliotheca/internal/catalog/source"
	orderrepo "github.com/yogesh1636/Bibliotheca/internal/order/repository"
	orderservice "github.com/yogesh1636/Bibliotheca/internal/order/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError converts service sentinel errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, orderservice.ErrEmptyCart),
		errors.Is(err, orderservice.ErrMissingAddress),
		errors.Is(err, authservice.ErrWeakPassword),
		errors.Is(err, authservice.ErrInvalidEmail):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, authservice.ErrInvalidCredentials),
		errors.Is(err, authservice.ErrNotAuthenticated):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, authservice.ErrEmailTaken):
		httpStatus = http.StatusConflict
		code = "already_exists"
	case errors.Is(err, catalogrepo.ErrBookNotFound),
		errors.Is(err, orderrepo.ErrOrderNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, source.ErrSourceUnavailable),
		errors.Is(err, source.ErrMalformedCatalog):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	respondError(w, httpStatus, code, err.Error())
}
