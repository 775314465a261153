package domain

import (
	"strings"
	"time"
)

// Listing is an item offered for giveaway or barter. Listings are immutable
// after creation except for Status.
type Listing struct {
	ID            string
	Title         string
	Description   string
	Category      Category
	Condition     Condition
	ItemType      ItemType
	BarterWants   string
	ContactMethod ContactMethod
	ContactInfo   string
	ImageURL      string
	Status        ListingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListingInput is the client-supplied part of a listing.
type ListingInput struct {
	Title         string
	Description   string
	Category      string
	Condition     string
	ItemType      string
	BarterWants   string
	ContactMethod string
	ContactInfo   string
	ImageURL      string
}

// Validate checks required fields in a fixed order and returns the first failure.
func (in ListingInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return NewValidationError("title", "must not be empty")
	case strings.TrimSpace(in.Description) == "":
		return NewValidationError("description", "must not be empty")
	case !Category(in.Category).IsValid():
		return NewValidationError("category", "is not a recognized category")
	case !Condition(in.Condition).IsValid():
		return NewValidationError("condition", "is not a recognized condition")
	case !ItemType(in.ItemType).IsValid():
		return NewValidationError("item_type", "must be give_away or barter")
	case !ContactMethod(in.ContactMethod).IsValid():
		return NewValidationError("contact_method", "must be email, phone or message")
	case strings.TrimSpace(in.ContactInfo) == "":
		return NewValidationError("contact_info", "must not be empty")
	}
	return nil
}

// NewListing validates in and builds an available listing with the given id and creation time.
// BarterWants is only kept for barter listings.
func NewListing(id string, in ListingInput, now time.Time) (*Listing, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	l := &Listing{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Category:      Category(in.Category),
		Condition:     Condition(in.Condition),
		ItemType:      ItemType(in.ItemType),
		ContactMethod: ContactMethod(in.ContactMethod),
		ContactInfo:   in.ContactInfo,
		ImageURL:      in.ImageURL,
		Status:        StatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if l.ItemType == ItemTypeBarter {
		l.BarterWants = in.BarterWants
	}
	return l, nil
}

// Clone returns a copy safe to hand to callers outside the store.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
