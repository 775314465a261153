package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"go.uber.org/zap"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Internal details are only exposed for client errors.
func writeError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	code := statusFor(err)
	resp := errorResponse{Detail: fallback}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		resp.Detail = vErr.Field + " " + vErr.Reason
		resp.Field = vErr.Field
	case code == http.StatusNotFound:
		resp.Detail = "Item not found"
	case code == http.StatusConflict:
		resp.Detail = err.Error()
	case code == http.StatusServiceUnavailable:
		resp.Detail = "Storage temporarily unavailable, retry later"
	}

	if code >= http.StatusInternalServerError {
		log.Error(fallback, zap.Error(err))
	}
	writeJSON(w, log, code, resp)
}
