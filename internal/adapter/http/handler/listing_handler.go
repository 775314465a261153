package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/filter"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ListingService is what the transport needs from the listing usecase.
type ListingService interface {
	Create(ctx context.Context, in domain.ListingInput) (*domain.Listing, error)
	List(ctx context.Context, q filter.Query) ([]*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Listing, error)
	Stats(ctx context.Context) (stats.Stats, error)
	Ping(ctx context.Context) error
}

type ListingHandler struct {
	svc    ListingService
	logger *logger.Logger
}

func NewListingHandler(svc ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, logger: log.Named("ListingHandler")}
}

// HandleListListings serves GET /api/items?search=&category=&item_type=&status=
func (h *ListingHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := filter.Query{
		Text:     params.Get("search"),
		Category: params.Get("category"),
		ItemType: params.Get("item_type"),
		Status:   params.Get("status"),
	}

	listings, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err, "Error fetching items")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toListingResponses(listings))
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Debug("Invalid request body for CreateListing", zap.Error(err))
		writeError(w, h.logger, domain.NewValidationError("body", "is not valid JSON"), "")
		return
	}

	listing, err := h.svc.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, h.logger, err, "Error creating item")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "Error fetching item")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toListingResponse(listing))
}

// HandleUpdateStatus serves PUT /api/items/{id}/status. The status comes from the
// "status" query parameter or, failing that, a JSON body {"status": "..."}.
func (h *ListingHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")
	if status == "" && r.ContentLength != 0 {
		var req statusUpdateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, h.logger, domain.NewValidationError("body", "is not valid JSON"), "")
			return
		}
		status = req.Status
	}

	listing, err := h.svc.SetStatus(r.Context(), id, status)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) && vErr.Field == "status" {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Detail: "Invalid status", Field: "status"})
			return
		}
		writeError(w, h.logger, err, "Error updating item status")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, statusUpdateResponse{
		Message: "Status updated successfully",
		Item:    toListingResponse(listing),
	})
}

func (h *ListingHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Error getting stats")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}
