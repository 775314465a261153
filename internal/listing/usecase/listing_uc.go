package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/filter"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/Abdurahmanit/reusehub/internal/platform/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	EventListingCreated = "listing.created"
	EventListingRehomed = "listing.rehomed"
)

var tracer = otel.Tracer("reusehub/listing-usecase")

// ListingUsecase implements listing creation, browsing, lifecycle and statistics.
type ListingUsecase struct {
	repo       domain.ListingRepository
	publisher  domain.EventPublisher
	aggregator *stats.Aggregator
	metrics    *metrics.MetricsManager
	logger     *logger.Logger
	now        func() time.Time
	newID      func() (string, error)
}

type Option func(*ListingUsecase)

// WithPublisher enables domain events. Without it nothing is published.
func WithPublisher(p domain.EventPublisher) Option {
	return func(uc *ListingUsecase) { uc.publisher = p }
}

func WithMetrics(m *metrics.MetricsManager) Option {
	return func(uc *ListingUsecase) { uc.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(uc *ListingUsecase) { uc.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(uc *ListingUsecase) { uc.newID = gen }
}

func NewListingUsecase(repo domain.ListingRepository, aggregator *stats.Aggregator, log *logger.Logger, opts ...Option) *ListingUsecase {
	uc := &ListingUsecase{
		repo:       repo,
		aggregator: aggregator,
		logger:     log.Named("ListingUsecase"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      newUUIDv7,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// newUUIDv7 yields time-ordered ids so that id order follows creation order.
func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Create validates the input and stores a new available listing.
func (uc *ListingUsecase) Create(ctx context.Context, in domain.ListingInput) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) && uc.metrics != nil {
			uc.metrics.ValidationErrorsTotal.WithLabelValues(vErr.Field).Inc()
		}
		uc.logger.Info("Rejected listing input", zap.Error(err))
		failSpan(span, err)
		return nil, err
	}

	id, err := uc.newID()
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("failed to generate listing id: %w", err)
	}

	listing, err := domain.NewListing(id, in, uc.now())
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to save listing", zap.String("listing_id", id), zap.Error(err))
		failSpan(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("listing.id", listing.ID),
		attribute.String("listing.category", string(listing.Category)),
	)

	if uc.metrics != nil {
		uc.metrics.ListingsCreatedTotal.WithLabelValues(string(listing.Category), string(listing.ItemType)).Inc()
	}
	uc.publish(ctx, EventListingCreated, listing)

	uc.logger.Info("Listing created",
		zap.String("listing_id", listing.ID),
		zap.String("category", string(listing.Category)),
		zap.String("item_type", string(listing.ItemType)))
	return listing, nil
}

// List returns the listings matching q, newest first. An empty query returns everything.
func (uc *ListingUsecase) List(ctx context.Context, q filter.Query) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.List")
	defer span.End()

	all, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.Error(err))
		failSpan(span, err)
		return nil, err
	}
	result := filter.Apply(all, q)
	span.SetAttributes(attribute.Int("listing.total", len(all)), attribute.Int("listing.matched", len(result)))
	return result, nil
}

func (uc *ListingUsecase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Get")
	defer span.End()

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Error("Failed to get listing", zap.String("listing_id", id), zap.Error(err))
		}
		failSpan(span, err)
		return nil, err
	}
	return listing, nil
}

// SetStatus applies a lifecycle transition. raw may be a legacy alias such as "completed".
// Setting the current status again is a no-op that returns the listing unchanged.
func (uc *ListingUsecase) SetStatus(ctx context.Context, id, raw string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.SetStatus")
	defer span.End()

	status, ok := domain.ParseStatus(raw)
	if !ok {
		err := domain.NewValidationError("status", fmt.Sprintf("must be one of %q, %q", domain.StatusAvailable, domain.StatusRehomed))
		failSpan(span, err)
		return nil, err
	}

	current, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := uc.repo.UpdateStatus(ctx, id, status, uc.now().UTC())
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) && !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Error("Failed to update listing status", zap.String("listing_id", id), zap.Error(err))
		}
		failSpan(span, err)
		return nil, err
	}

	if updated.Status == domain.StatusRehomed {
		if uc.metrics != nil {
			uc.metrics.ListingsRehomedTotal.Inc()
		}
		uc.publish(ctx, EventListingRehomed, updated)
	}
	uc.logger.Info("Listing status updated", zap.String("listing_id", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

func (uc *ListingUsecase) MarkRehomed(ctx context.Context, id string) (*domain.Listing, error) {
	return uc.SetStatus(ctx, id, string(domain.StatusRehomed))
}

// Stats aggregates over a single snapshot of the store.
func (uc *ListingUsecase) Stats(ctx context.Context) (stats.Stats, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Stats")
	defer span.End()

	all, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to read listings for stats", zap.Error(err))
		failSpan(span, err)
		return stats.Stats{}, err
	}
	return uc.aggregator.Compute(all), nil
}

func (uc *ListingUsecase) Ping(ctx context.Context) error {
	return uc.repo.Ping(ctx)
}

func (uc *ListingUsecase) publish(ctx context.Context, event string, l *domain.Listing) {
	if uc.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"listing_id": l.ID,
		"title":      l.Title,
		"category":   l.Category,
		"item_type":  l.ItemType,
		"status":     l.Status,
		"created_at": l.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": l.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, event, payload); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("event", event), zap.String("listing_id", l.ID), zap.Error(err))
	}
}
