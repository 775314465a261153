// Package filter narrows a sequence of listings by text, category, item type and status.
// All predicates are pure and combined with AND, so the result does not depend on
// evaluation order and applying the same query twice changes nothing.
package filter

import (
	"iter"
	"slices"
	"strings"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
)

// All is the sentinel meaning "do not filter on this field".
const All = "all"

// Query holds the optional criteria. Empty strings and All disable a criterion.
type Query struct {
	Text     string
	Category string
	ItemType string
	Status   string
}

type predicate func(*domain.Listing) bool

func (q Query) predicates() []predicate {
	var preds []predicate
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		preds = append(preds, func(l *domain.Listing) bool {
			return strings.Contains(strings.ToLower(l.Title), text) ||
				strings.Contains(strings.ToLower(l.Description), text)
		})
	}
	if active(q.Category) {
		category := domain.Category(q.Category)
		preds = append(preds, func(l *domain.Listing) bool { return l.Category == category })
	}
	if active(q.ItemType) {
		itemType := domain.ItemType(q.ItemType)
		preds = append(preds, func(l *domain.Listing) bool { return l.ItemType == itemType })
	}
	if active(q.Status) {
		status := domain.ListingStatus(q.Status)
		preds = append(preds, func(l *domain.Listing) bool { return l.Status == status })
	}
	return preds
}

func active(v string) bool {
	return v != "" && !strings.EqualFold(v, All)
}

// Matches reports whether l satisfies every criterion in q.
func (q Query) Matches(l *domain.Listing) bool {
	for _, p := range q.predicates() {
		if !p(l) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether q filters nothing.
func (q Query) IsEmpty() bool {
	return len(q.predicates()) == 0
}

// Filter lazily yields the listings of seq that match q, preserving order.
// The returned sequence can be ranged over again if seq can.
func Filter(seq iter.Seq[*domain.Listing], q Query) iter.Seq[*domain.Listing] {
	preds := q.predicates()
	return func(yield func(*domain.Listing) bool) {
		for l := range seq {
			if !matchAll(preds, l) {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

func matchAll(preds []predicate, l *domain.Listing) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

// Apply is Filter over a slice. It always returns a non-nil slice.
func Apply(listings []*domain.Listing, q Query) []*domain.Listing {
	out := slices.Collect(Filter(slices.Values(listings), q))
	if out == nil {
		out = []*domain.Listing{}
	}
	return out
}
