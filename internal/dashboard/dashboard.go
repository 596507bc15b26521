// Package dashboard assembles the farm overview: weather, market trends,
// soil readings, alerts, crop suggestions and recent activity.
package dashboard

import (
	"time"

	"github.com/Godzilla108108/agritech/internal/advisory"
	"github.com/Godzilla108108/agritech/internal/weather"
)

// RefreshInterval is how often the overview is rebuilt while on screen.
const RefreshInterval = 5 * time.Minute

type Severity string

const (
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

// Alert is one line in the alerts panel.
type Alert struct {
	Kind     string
	Message  string
	Severity Severity
	Link     string
}

// WeatherSummary is the compact weather card.
type WeatherSummary struct {
	Location    string
	Temperature float64
	Humidity    int
	RainfallMM  float64
	WindSpeed   float64
	Forecast    string
	Risk        string
	// Live is false when the card shows placeholder data.
	Live bool
}

// Trend is a crop's mandi price and its weekly change in percent.
type Trend struct {
	Crop   string
	Price  int
	Change float64
	Unit   string
}

type Soil struct {
	Moisture   int
	Nitrogen   int
	Phosphorus int
	Potassium  int
	PH         float64
	LastTested string
}

// Crop is a planting suggestion with a 0-100 suitability score.
type Crop struct {
	Name        string
	Suitability int
}

type Activity struct {
	Action string
	When   string
}

// Overview is everything the dashboard page shows.
type Overview struct {
	Greeting    string
	Weather     WeatherSummary
	Trends      []Trend
	Soil        Soil
	Alerts      []Alert
	Crops       []Crop
	Activities  []Activity
	GeneratedAt time.Time
}

// GenerateOpts holds the live inputs available to Generate.
type GenerateOpts struct {
	Now time.Time
	// Weather is the last known snapshot, if any.
	Weather *weather.Snapshot
	// Advisories are alerts read from configured feeds.
	Advisories []Alert
}

// Generate builds an overview. Without live inputs the panels fall back to
// representative sample data.
func Generate(opts GenerateOpts) Overview {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	o := Overview{
		Greeting:    greeting(opts.Now),
		Weather:     sampleWeather(),
		Trends:      sampleTrends(),
		Soil:        sampleSoil(),
		Alerts:      append(append([]Alert(nil), opts.Advisories...), sampleAlerts()...),
		Crops:       sampleCrops(),
		Activities:  sampleActivities(),
		GeneratedAt: opts.Now,
	}
	if opts.Weather != nil {
		o.Weather = summarize(opts.Weather.Current)
	}
	return o
}

func summarize(c weather.Conditions) WeatherSummary {
	return WeatherSummary{
		Location:    c.Location,
		Temperature: c.Temp,
		Humidity:    c.Humidity,
		RainfallMM:  c.Rain1h,
		WindSpeed:   c.WindSpeed,
		Forecast:    c.Description,
		Risk:        advisory.Assess(c).Label(),
		Live:        true,
	}
}

func greeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
