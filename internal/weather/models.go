package weather

import (
	"time"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

// Conditions are the current weather at one location.
type Conditions struct {
	Location    string    `json:"location"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	Raining     bool      `json:"raining"`
	Rain1h      float64   `json:"rain_1h"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Observed    time.Time `json:"observed"`
}

// Day is one forecast sample.
type Day struct {
	Time        time.Time `json:"time"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
	Temp        float64   `json:"temp"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Humidity    int       `json:"humidity"`
	// Pop is the probability of precipitation, 0 to 1.
	Pop float64 `json:"pop"`
}

// Snapshot is what the weather page shows and caches.
type Snapshot struct {
	Current   Conditions `json:"current"`
	Forecast  []Day      `json:"forecast"`
	FetchedAt time.Time  `json:"fetched_at"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type currentResponse struct {
	Name    string      `json:"name"`
	Weather []condition `json:"weather"`
	Main    *mainBlock  `json:"main"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain map[string]float64 `json:"rain"`
	Sys  struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Dt int64 `json:"dt"`
}

func (r currentResponse) conditions() (Conditions, error) {
	if r.Main == nil {
		return Conditions{}, fetch.Malformed("current weather: missing main")
	}
	if len(r.Weather) == 0 {
		return Conditions{}, fetch.Malformed("current weather: missing weather")
	}
	return Conditions{
		Location:    r.Name,
		Main:        r.Weather[0].Main,
		Description: r.Weather[0].Description,
		Temp:        r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		TempMin:     r.Main.TempMin,
		TempMax:     r.Main.TempMax,
		Humidity:    r.Main.Humidity,
		Pressure:    r.Main.Pressure,
		WindSpeed:   r.Wind.Speed,
		Raining:     r.Rain != nil,
		Rain1h:      r.Rain["1h"],
		Sunrise:     unix(r.Sys.Sunrise),
		Sunset:      unix(r.Sys.Sunset),
		Observed:    unix(r.Dt),
	}, nil
}

type forecastResponse struct {
	List []struct {
		Dt      int64       `json:"dt"`
		Main    mainBlock   `json:"main"`
		Weather []condition `json:"weather"`
		Pop     float64     `json:"pop"`
	} `json:"list"`
}

func (r forecastResponse) days() []Day {
	out := make([]Day, 0, len(r.List))
	for _, e := range r.List {
		d := Day{
			Time:     unix(e.Dt),
			Temp:     e.Main.Temp,
			TempMin:  e.Main.TempMin,
			TempMax:  e.Main.TempMax,
			Humidity: e.Main.Humidity,
			Pop:      e.Pop,
		}
		if len(e.Weather) > 0 {
			d.Main = e.Weather[0].Main
			d.Description = e.Weather[0].Description
		}
		out = append(out, d)
	}
	return out
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
