package dashboard

func sampleWeather() WeatherSummary {
	return WeatherSummary{
		Location:    "Farm",
		Temperature: 28.5,
		Humidity:    72,
		RainfallMM:  18,
		WindSpeed:   12,
		Forecast:    "Scattered Thunderstorms",
		Risk:        "Medium (Monitor rainfall)",
	}
}

func sampleTrends() []Trend {
	return []Trend{
		{Crop: "Wheat", Price: 2150, Change: 2.5, Unit: "quintal"},
		{Crop: "Rice", Price: 1980, Change: -0.8, Unit: "quintal"},
		{Crop: "Corn", Price: 1850, Change: 3.2, Unit: "quintal"},
		{Crop: "Soybean", Price: 3450, Change: 1.9, Unit: "quintal"},
	}
}

func sampleSoil() Soil {
	return Soil{Moisture: 65, Nitrogen: 42, Phosphorus: 38, Potassium: 55, PH: 6.8, LastTested: "3 days ago"}
}

func sampleAlerts() []Alert {
	return []Alert{
		{Kind: "weather", Message: "Heavy rain expected in 48 hours", Severity: High},
		{Kind: "market", Message: "Wheat prices up by 12% this week", Severity: Medium},
		{Kind: "pest", Message: "Locust alert in neighboring districts", Severity: Critical},
	}
}

func sampleCrops() []Crop {
	return []Crop{
		{Name: "Wheat", Suitability: 92},
		{Name: "Barley", Suitability: 85},
		{Name: "Soybean", Suitability: 78},
		{Name: "Corn", Suitability: 68},
	}
}

func sampleActivities() []Activity {
	return []Activity{
		{Action: "Soil test completed", When: "2 hours ago"},
		{Action: "Crop health scan", When: "1 day ago"},
		{Action: "Irrigation system activated", When: "1 day ago"},
		{Action: "Market analysis viewed", When: "2 days ago"},
	}
}
