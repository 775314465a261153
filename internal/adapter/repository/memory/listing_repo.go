// Package memory is the default, process-local listing store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
)

// ListingRepository keeps listings in insertion order behind a RWMutex.
// Readers get copies, so a reader never observes a half-applied write.
type ListingRepository struct {
	mu       sync.RWMutex
	listings []*domain.Listing // oldest first
	byID     map[string]int
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{byID: make(map[string]int)}
}

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	if listing == nil || listing.ID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[listing.ID]; exists {
		return fmt.Errorf("%w: duplicate listing id %s", domain.ErrInvalidInput, listing.ID)
	}
	stored := listing.Clone()
	if n := len(r.listings); n > 0 {
		if last := r.listings[n-1].CreatedAt; stored.CreatedAt.Before(last) {
			stored.CreatedAt = last
			listing.CreatedAt = last
		}
	}
	r.byID[stored.ID] = len(r.listings)
	r.listings = append(r.listings, stored)
	return nil
}

func (r *ListingRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.listings[idx].Clone(), nil
}

func (r *ListingRepository) List(_ context.Context) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Listing, 0, len(r.listings))
	for i := len(r.listings) - 1; i >= 0; i-- {
		out = append(out, r.listings[i].Clone())
	}
	return out, nil
}

func (r *ListingRepository) UpdateStatus(_ context.Context, id string, status domain.ListingStatus, at time.Time) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l := r.listings[idx]
	if !l.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, l.Status, status)
	}
	if l.Status != status {
		l.Status = status
		l.UpdatedAt = at
	}
	return l.Clone(), nil
}

func (r *ListingRepository) Ping(context.Context) error {
	return nil
}
