// Package advisory turns current weather into a field-work risk level and a
// short list of recommended actions.
package advisory

import "github.com/Godzilla108108/agritech/internal/weather"

// Level is the coarse risk bucket, used for styling.
type Level int

const (
	Low Level = iota
	Medium
	High
)

func (l Level) String() string {
	switch l {
	case High:
		return "High"
	case Medium:
		return "Medium"
	}
	return "Low"
}

const (
	heatStressTemp = 35.0
	dryHumidity    = 40
	fungalHumidity = 80
)

// Assessment is the advisory for one set of conditions.
type Assessment struct {
	Level   Level
	Reason  string
	Actions []string
}

// Label renders the level with its reason, e.g. "High (Heat stress)".
func (a Assessment) Label() string {
	return a.Level.String() + " (" + a.Reason + ")"
}

// Assess rates c. Rain takes precedence over heat, heat over dryness.
func Assess(c weather.Conditions) Assessment {
	a := Assessment{Actions: actions(c)}
	switch {
	case c.Raining:
		a.Level, a.Reason = High, "Irrigation not needed"
	case c.Temp > heatStressTemp:
		a.Level, a.Reason = High, "Heat stress"
	case c.Humidity < dryHumidity:
		a.Level, a.Reason = Medium, "Dry conditions"
	default:
		a.Level, a.Reason = Low, "Ideal conditions"
	}
	return a
}

func actions(c weather.Conditions) []string {
	var out []string
	if c.Raining {
		out = append(out, "Delay field work")
	}
	if c.Temp > heatStressTemp {
		out = append(out, "Increase irrigation frequency")
	}
	if c.Humidity > fungalHumidity {
		out = append(out, "Watch for fungal diseases")
	}
	if !c.Raining && c.Humidity < dryHumidity {
		out = append(out, "Schedule irrigation")
	}
	return out
}
