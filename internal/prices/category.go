package prices

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Godzilla108108/agritech/internal/filter"
)

const (
	Grains     = "Grains"
	Vegetables = "Vegetables"
	Fruits     = "Fruits"
	Other      = "Other"
)

// Categories are the filter tabs in display order.
var Categories = []string{filter.All, Grains, Vegetables, Fruits}

// Keywords place a commodity in a category when its name contains one of them.
var Keywords = map[string][]string{
	Grains:     {"wheat", "rice", "maize", "barley", "jowar", "bajra"},
	Vegetables: {"tomato", "onion", "potato", "brinjal", "cabbage", "cauliflower"},
	Fruits:     {"banana", "apple", "mango", "grapes", "orange", "papaya"},
}

// aliases are the short forms accepted on the command line.
var aliases = map[string]string{
	"all":    filter.All,
	"grain":  Grains,
	"veg":    Vegetables,
	"veggie": Vegetables,
	"fruit":  Fruits,
}

// ResolveCategory maps a CLI value to a category tab.
func ResolveCategory(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return filter.All, nil
	}
	if cat, ok := aliases[s]; ok {
		return cat, nil
	}
	for _, cat := range Categories {
		if strings.EqualFold(cat, s) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(aliases))
	for k := range aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(valid, ", "))
}

// Classify returns the first category whose keywords match commodity, or Other.
func Classify(commodity string) string {
	c := strings.ToLower(strings.TrimSpace(commodity))
	for _, cat := range Categories[1:] {
		for _, kw := range Keywords[cat] {
			if strings.Contains(c, kw) {
				return cat
			}
		}
	}
	return Other
}
