package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	p := Problem{
		Type:      "about:blank",
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: RequestID(r),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeError maps a domain error onto a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := classify(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithFields(logger.Fields{"request_id": RequestID(r), "path": r.URL.Path}).
			Errorf("request failed: %v", err)
		detail = "unexpected server error"
	}
	writeProblem(w, r, status, title, detail)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrReadOnly):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCallback):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "OAuth Not Configured"
	case errors.Is(err, domain.ErrNoToken):
		return http.StatusConflict, "Not Connected"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate Limited"
	case errors.Is(err, domain.ErrAuthenticationFailed),
		errors.Is(err, domain.ErrAuthorizationFailed),
		errors.Is(err, domain.ErrRefreshFailed),
		errors.Is(err, domain.ErrRequestFailed),
		errors.Is(err, domain.ErrNetwork),
		errors.Is(err, domain.ErrDecoding):
		return http.StatusBadGateway, "Upstream Error"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
