package market

import (
	"strings"

	"github.com/Godzilla108108/agritech/internal/filter"
)

// Spec searches name, description and category; categories match exactly.
var Spec = filter.Spec[Product]{
	Fields: func(p Product) []string {
		return []string{p.Name, p.Description, p.Category}
	},
	Category: func(p Product) string { return p.Category },
}

// Refinement is the marketplace's extra filter panel.
type Refinement struct {
	MinPrice float64
	MaxPrice float64
	State    string
}

// DefaultRefinement admits every listing priced up to DefaultMaxPrice.
func DefaultRefinement() Refinement {
	return Refinement{MaxPrice: DefaultMaxPrice}
}

// Predicates returns the price-range and state conditions for filter.Apply.
func (r Refinement) Predicates() []filter.Predicate[Product] {
	state := strings.ToLower(strings.TrimSpace(r.State))
	preds := []filter.Predicate[Product]{
		func(p Product) bool { return p.Price >= r.MinPrice && p.Price <= r.MaxPrice },
	}
	if state != "" {
		preds = append(preds, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.State), state)
		})
	}
	return preds
}
