package domain

import (
	"context"
	"time"
)

// ListingRepository is the persistence port of the listing store.
// Implementations must make Create atomic with respect to List and FindByID.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// List returns every listing, newest first.
	List(ctx context.Context) ([]*Listing, error)
	// UpdateStatus moves a listing to status and stamps UpdatedAt with at.
	UpdateStatus(ctx context.Context, id string, status ListingStatus, at time.Time) (*Listing, error)
	Ping(ctx context.Context) error
}

// EventPublisher delivers domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
