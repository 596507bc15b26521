package prices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Godzilla108108/agritech/internal/filter"
)

// Price is one commodity quote at one market on one day.
type Price struct {
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety,omitempty"`
	Market      string `json:"market"`
	District    string `json:"district"`
	State       string `json:"state"`
	MinPrice    Amount `json:"min_price"`
	MaxPrice    Amount `json:"max_price"`
	ModalPrice  Amount `json:"modal_price"`
	ArrivalDate string `json:"arrival_date"`
}

// Amount is a price in rupees per quintal. The source sends it as either a
// JSON string or a number; both decode to the same text.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Float parses the amount; ok is false for blank or non-numeric text.
func (a Amount) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(a), 64)
	return f, err == nil
}

// Display renders the amount with a rupee sign, or N/A when blank.
func (a Amount) Display() string {
	if a == "" {
		return "N/A"
	}
	return "₹" + string(a)
}

// FormatDate turns an arrival date in DD/MM/YYYY form into "15 May 2023".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return "Invalid Date"
	}
	return t.Format("2 Jan 2006")
}

// Spec searches commodity and location fields and categorizes by commodity.
var Spec = filter.Spec[Price]{
	Fields: func(p Price) []string {
		return []string{p.Commodity, p.Market, p.District, p.State}
	},
	Category: func(p Price) string { return p.Commodity },
	Keywords: Keywords,
}
