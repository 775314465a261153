package handler

import (
	"time"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
)

type createListingRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Condition     string `json:"condition"`
	ItemType      string `json:"item_type"`
	BarterWants   string `json:"barter_wants"`
	ContactMethod string `json:"contact_method"`
	ContactInfo   string `json:"contact_info"`
	ImageURL      string `json:"image_url"`
}

func (r createListingRequest) toInput() domain.ListingInput {
	return domain.ListingInput{
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Condition:     r.Condition,
		ItemType:      r.ItemType,
		BarterWants:   r.BarterWants,
		ContactMethod: r.ContactMethod,
		ContactInfo:   r.ContactInfo,
		ImageURL:      r.ImageURL,
	}
}

type listingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Condition     string    `json:"condition"`
	ItemType      string    `json:"item_type"`
	BarterWants   string    `json:"barter_wants,omitempty"`
	ContactMethod string    `json:"contact_method"`
	ContactInfo   string    `json:"contact_info"`
	ImageURL      string    `json:"image_url,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
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
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type statusUpdateResponse struct {
	Message string          `json:"message"`
	Item    listingResponse `json:"item"`
}

type disposalRequest struct {
	ItemName string `json:"item_name"`
	Category string `json:"category"`
}
