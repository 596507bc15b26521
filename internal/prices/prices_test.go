package prices

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/filter"
)

const recordsJSON = `{
	"total": 3,
	"records": [
		{"state": "Maharashtra", "district": "Pune", "market": "Pune", "commodity": "Tomato", "min_price": "800", "max_price": "1400", "modal_price": "1200", "arrival_date": "15/05/2023"},
		{"state": "Uttar Pradesh", "district": "Agra", "market": "Agra", "commodity": "Potato", "min_price": 600, "max_price": 900, "modal_price": 750, "arrival_date": "16/05/2023"},
		{"state": "Madhya Pradesh", "district": "Indore", "market": "Indore", "commodity": "Wheat", "modal_price": null, "arrival_date": ""}
	]
}`

func mockClient(t *testing.T, body string, status int) *Client {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://api.data.gov.in/resource/"+DefaultResource,
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "test-key", q.Get("api-key"))
			assert.Equal(t, "json", q.Get("format"))
			assert.Equal(t, "50", q.Get("limit"))
			return httpmock.NewStringResponse(status, body), nil
		})
	fc := fetch.New(fetch.WithHTTPClient(&http.Client{Transport: transport}))
	return New(fc, Options{APIKey: "test-key"})
}

func TestPrices(t *testing.T) {
	c := mockClient(t, recordsJSON, 200)

	got, err := c.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Amount("1200"), got[0].ModalPrice)
	assert.Equal(t, Amount("750"), got[1].ModalPrice, "numeric amounts decode like strings")
	assert.Equal(t, "N/A", got[2].ModalPrice.Display())
}

func TestPricesMissingRecords(t *testing.T) {
	c := mockClient(t, `{"message": "Invalid API key"}`, 200)

	_, err := c.Prices(context.Background())
	var malformed fetch.ErrMalformedResponse
	assert.True(t, errors.As(err, &malformed), "expected ErrMalformedResponse, got %v", err)
}

func TestPricesEmptyRecords(t *testing.T) {
	c := mockClient(t, `{"records": []}`, 200)

	got, err := c.Prices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPricesHTTPStatus(t *testing.T) {
	c := mockClient(t, `forbidden`, 403)

	_, err := c.Prices(context.Background())
	assert.Equal(t, "API request failed with status 403", fetch.Message(err))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15/05/2023", "15 May 2023"},
		{"5/3/2024", "5 Mar 2024"},
		{"01/12/2022", "1 Dec 2022"},
		{"", "N/A"},
		{"   ", "N/A"},
		{"garbage", "Invalid Date"},
		{"2023-05-15", "Invalid Date"},
		{"32/01/2023", "Invalid Date"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountFloat(t *testing.T) {
	if f, ok := Amount("1200.5").Float(); !ok || f != 1200.5 {
		t.Errorf("expected 1200.5, got %v %v", f, ok)
	}
	if _, ok := Amount("").Float(); ok {
		t.Error("expected blank amount to be non-numeric")
	}
}

func TestTomatoVegetables(t *testing.T) {
	records := []Price{
		{Commodity: "Tomato", Market: "Pune"},
		{Commodity: "Potato", Market: "Agra"},
		{Commodity: "Tomato Hybrid", Market: "Nashik"},
		{Commodity: "Wheat", Market: "Tomatopur"},
	}

	got := filter.Apply(records, filter.Criteria{Search: "tomato", Category: Vegetables}, Spec)
	require.Len(t, got, 2)
	assert.Equal(t, "Tomato", got[0].Commodity)
	assert.Equal(t, "Tomato Hybrid", got[1].Commodity)
}

func TestSearchCoversLocationFields(t *testing.T) {
	records := []Price{
		{Commodity: "Onion", District: "Nashik"},
		{Commodity: "Rice", State: "Punjab"},
		{Commodity: "Mango", Market: "Ratnagiri"},
	}
	for _, term := range []string{"nashik", "PUNJAB", "ratna"} {
		if got := filter.Apply(records, filter.Criteria{Search: term}, Spec); len(got) != 1 {
			t.Errorf("search %q: expected 1 match, got %d", term, len(got))
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Wheat", Grains},
		{"Paddy(Dhan)(Basmati) Rice", Grains},
		{"Brinjal", Vegetables},
		{"Banana - Green", Fruits},
		{"Cotton", Other},
	}
	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", filter.All, false},
		{"veg", Vegetables, false},
		{"FRUITS", Fruits, false},
		{"grain", Grains, false},
		{"spices", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
