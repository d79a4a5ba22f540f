package http

import (
	"errors"
	"net/http"

	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Unclassified errors become an opaque 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyBatch):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrConflict):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:            "conflict",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{
			Error:            "unauthorized",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteJSON(w, http.StatusForbidden, errorResponse{
			Error:            "forbidden",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, errorResponse{
			Error:            "not_found",
			ErrorDescription: err.Error(),
		})
	case errors.Is(err, service.ErrUpstream):
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{
			Error:            "upstream_error",
			ErrorDescription: err.Error(),
		})
	default:
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{
			Error:            "internal_error",
			ErrorDescription: "an internal error occurred",
		})
	}
}

func writeInvalidBody(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
		Error:            "invalid_request",
		ErrorDescription: "Invalid JSON body",
	})
}
