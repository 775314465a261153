package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Abdurahmanit/reusehub/internal/disposal"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/Abdurahmanit/reusehub/internal/platform/metrics"
	"go.uber.org/zap"
)

type GuidanceResolver interface {
	Resolve(itemName, category string) (*disposal.Guidance, error)
}

type DisposalHandler struct {
	resolver GuidanceResolver
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
}

// NewDisposalHandler accepts a nil metrics manager.
func NewDisposalHandler(resolver GuidanceResolver, m *metrics.MetricsManager, log *logger.Logger) *DisposalHandler {
	return &DisposalHandler{resolver: resolver, metrics: m, logger: log.Named("DisposalHandler")}
}

func (h *DisposalHandler) HandleGuidance(w http.ResponseWriter, r *http.Request) {
	var req disposalRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Debug("Invalid request body for disposal guidance", zap.Error(err))
		writeError(w, h.logger, domain.NewValidationError("body", "is not valid JSON"), "")
		return
	}

	guidance, err := h.resolver.Resolve(req.ItemName, req.Category)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ValidationErrorsTotal.WithLabelValues("category").Inc()
		}
		writeError(w, h.logger, err, "Error getting disposal guidance")
		return
	}
	if h.metrics != nil {
		h.metrics.DisposalQueriesTotal.WithLabelValues(guidance.Category).Inc()
	}
	writeJSON(w, h.logger, http.StatusOK, guidance)
}
