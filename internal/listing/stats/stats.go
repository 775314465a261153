// Package stats derives the platform summary shown on the landing page.
package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
)

// Stats is computed on demand and never stored.
type Stats struct {
	TotalListings   int     `json:"total_listings"`
	AvailableItems  int     `json:"available_items"`
	ItemsRehomed    int     `json:"items_rehomed"`
	WasteDivertedKg float64 `json:"waste_diverted_kg"`
}

// WeightTable is the estimated weight in kilograms of a typical item per category.
type WeightTable map[domain.Category]float64

// DefaultWeights is used when no table is configured. Other uses the flat
// 2.5 kg per-item estimate the platform started with.
func DefaultWeights() WeightTable {
	return WeightTable{
		domain.CategoryElectronics: 5,
		domain.CategoryFurniture:   25,
		domain.CategoryClothing:    1,
		domain.CategoryBooks:       2,
		domain.CategoryAppliances:  30,
		domain.CategoryToys:        1.5,
		domain.CategorySports:      4,
		domain.CategoryKitchen:     3,
		domain.CategoryGarden:      8,
		domain.CategoryOther:       2.5,
	}
}

// ParseWeights converts a configured table into a WeightTable, overlaying it on
// DefaultWeights. Keys match category names case-insensitively because config
// loaders lowercase map keys.
func ParseWeights(raw map[string]float64) (WeightTable, error) {
	table := DefaultWeights()
	for key, kg := range raw {
		category, ok := lookupCategory(key)
		if !ok {
			return nil, fmt.Errorf("unknown category %q in weight table", key)
		}
		if kg < 0 {
			return nil, fmt.Errorf("negative weight %v for category %q", kg, key)
		}
		table[category] = kg
	}
	return table, nil
}

func lookupCategory(key string) (domain.Category, bool) {
	for _, c := range domain.Categories {
		if strings.EqualFold(string(c), key) {
			return c, true
		}
	}
	return "", false
}

// Aggregator computes Stats with an injected weight policy.
type Aggregator struct {
	weights WeightTable
}

// NewAggregator copies weights; a nil table means DefaultWeights.
func NewAggregator(weights WeightTable) *Aggregator {
	if weights == nil {
		weights = DefaultWeights()
	}
	own := make(WeightTable, len(weights))
	for k, v := range weights {
		own[k] = v
	}
	return &Aggregator{weights: own}
}

// Compute is a pure function of listings. Categories missing from the weight table contribute 0.
func (a *Aggregator) Compute(listings []*domain.Listing) Stats {
	var s Stats
	for _, l := range listings {
		if l == nil {
			continue
		}
		s.TotalListings++
		switch l.Status {
		case domain.StatusRehomed:
			s.ItemsRehomed++
		default:
			s.AvailableItems++
		}
		s.WasteDivertedKg += a.weights[l.Category]
	}
	s.WasteDivertedKg = math.Round(s.WasteDivertedKg*100) / 100
	return s
}

// Weight returns the configured weight for c.
func (a *Aggregator) Weight(c domain.Category) float64 {
	return a.weights[c]
}
