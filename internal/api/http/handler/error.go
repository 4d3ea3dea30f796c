package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/fileshare-server/internal/apperr"
)

// errorResponse is the only error body shape clients ever see.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the taxonomy kind to an HTTP status. Expired grants
// are answered 403 so probing callers can not tell them from forbidden.
// Anything outside the taxonomy is an internal error and its detail
// never crosses the boundary.
func writeError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
		return
	}

	var status int
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindExpired:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errorResponse{Message: err.Error()})
}
