package mongodb

import (
	"time"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
)

// listingDocument is the stored form of a listing. The listing id doubles as _id.
type listingDocument struct {
	ID            string    `bson:"_id"`
	Title         string    `bson:"title"`
	Description   string    `bson:"description"`
	Category      string    `bson:"category"`
	Condition     string    `bson:"condition"`
	ItemType      string    `bson:"item_type"`
	BarterWants   string    `bson:"barter_wants,omitempty"`
	ContactMethod string    `bson:"contact_method"`
	ContactInfo   string    `bson:"contact_info"`
	ImageURL      string    `bson:"image_url,omitempty"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	return &listingDocument{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Category:      string(l.Category),
		Condition:     string(l.Condition),
		ItemType:      string(l.ItemType),
		BarterWants:   l.BarterWants,
		ContactMethod: string(l.ContactMethod),
		ContactInfo:   l.ContactInfo,
		ImageURL:      l.ImageURL,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.UTC(),
		UpdatedAt:     l.UpdatedAt.UTC(),
	}
}

func (d *listingDocument) toDomainListing() *domain.Listing {
	status := domain.ListingStatus(d.Status)
	if parsed, ok := domain.ParseStatus(d.Status); ok {
		status = parsed
	}
	return &domain.Listing{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Category:      domain.Category(d.Category),
		Condition:     domain.Condition(d.Condition),
		ItemType:      domain.ItemType(d.ItemType),
		BarterWants:   d.BarterWants,
		ContactMethod: domain.ContactMethod(d.ContactMethod),
		ContactInfo:   d.ContactInfo,
		ImageURL:      d.ImageURL,
		Status:        status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
