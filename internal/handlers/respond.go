// Package handlers exposes the quotation workflow over JSON HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/httpx"
)

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var validation *apperr.ValidationError
	var invalid *apperr.InvalidOperation

	switch {
	case apperr.IsNotFound(err):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.As(err, &validation):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{validation.Field: validation.Msg})
	case errors.As(err, &invalid):
		httpx.JSONError(w, http.StatusConflict, invalid.Op+"_rejected", map[string]string{"reason": invalid.Msg})
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return "", false
	}
	return id, true
}
