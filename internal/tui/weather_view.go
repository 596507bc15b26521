package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/advisory"
	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/filter"
	"github.com/Godzilla108108/agritech/internal/page"
	"github.com/Godzilla108108/agritech/internal/task"
	"github.com/Godzilla108108/agritech/internal/weather"
)

const locationNotFound = "Location not found. Please try another location."

// weatherPage shows one snapshot. The store holds at most one record so the
// last good snapshot survives a failed fetch.
type weatherPage struct {
	deps     *Deps
	store    page.Store[weather.Snapshot]
	tracker  task.Tracker
	input    textinput.Model
	location string
}

func newWeatherPage(deps *Deps) *weatherPage {
	var cached []weather.Snapshot
	location := deps.Location
	if deps.DB != nil {
		if snap, ok := cache.LoadValue[weather.Snapshot](deps.DB, cache.KeyWeather); ok {
			cached = []weather.Snapshot{snap}
			if snap.Current.Location != "" {
				location = snap.Current.Location
			}
		}
	}

	ti := textinput.New()
	ti.Placeholder = "City or village..."
	ti.Prompt = searchPromptStyle.Render("location ")
	ti.CharLimit = 80
	ti.SetValue(location)

	return &weatherPage{
		deps:     deps,
		store:    page.New(filter.Spec[weather.Snapshot]{}, cached),
		input:    ti,
		location: location,
	}
}

func (p *weatherPage) mount() tea.Cmd {
	return p.fetch(p.location)
}

func (p *weatherPage) busy() bool { return p.store.Busy() }

func (p *weatherPage) capturing() bool { return p.input.Focused() }

func (p *weatherPage) stop() { p.tracker.Stop() }

// fetch requests location, superseding any request still in flight.
func (p *weatherPage) fetch(location string) tea.Cmd {
	location = strings.TrimSpace(location)
	p.location = location
	var seq uint64
	p.store, seq = p.store.Begin()
	ctx := p.tracker.Start(context.Background())
	src := p.deps.Weather
	timeout := p.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		snap, err := src.Snapshot(ctx, location)
		return weatherLoadedMsg{seq: seq, location: location, snap: snap, err: err}
	}
}

// snapshot is the last good snapshot, if any.
func (p *weatherPage) snapshot() (weather.Snapshot, bool) {
	if len(p.store.All) == 0 {
		return weather.Snapshot{}, false
	}
	return p.store.All[0], true
}

func (p *weatherPage) notFound() bool {
	var nf fetch.ErrLocationNotFound
	return p.store.Phase == page.Error && errors.As(p.store.Err, &nf)
}

func (p *weatherPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case weatherLoadedMsg:
		return p.resolve(msg)
	case tea.KeyMsg:
		if p.input.Focused() {
			return p.handleInputKey(msg)
		}
		switch msg.String() {
		case "/", "e", "enter":
			p.input.Focus()
			p.input.CursorEnd()
			return textinput.Blink
		case "r":
			if p.store.Busy() {
				return nil
			}
			return p.fetch(p.location)
		}
		return nil
	}
	if p.input.Focused() {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}
	return nil
}

func (p *weatherPage) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.input.SetValue(p.location)
		p.input.Blur()
		return nil
	case "enter":
		p.input.Blur()
		return p.fetch(p.input.Value())
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *weatherPage) resolve(msg weatherLoadedMsg) tea.Cmd {
	var records []weather.Snapshot
	if msg.err == nil {
		records = []weather.Snapshot{msg.snap}
	}
	next, ok := p.store.Resolve(msg.seq, records, msg.err)
	if !ok {
		return nil
	}
	p.store = next
	if msg.err != nil {
		p.deps.Logger.Warn("loading weather failed",
			zap.String("location", msg.location),
			zap.String("kind", fetch.Kind(msg.err)), zap.Error(msg.err))
		return nil
	}

	db := p.deps.DB
	snap := msg.snap
	return func() tea.Msg {
		if db == nil {
			return nil
		}
		if err := cache.SaveValue(db, cache.KeyWeather, snap); err != nil {
			return errMsg{err: fmt.Errorf("caching weather: %w", err)}
		}
		return nil
	}
}

func (p *weatherPage) render(f frame) string {
	var parts []string
	parts = append(parts, " "+p.input.View())

	switch {
	case p.notFound():
		parts = append(parts, errorPanelStyle.Render(locationNotFound))
	case p.store.Phase == page.Error:
		parts = append(parts, errorPanelStyle.Render(
			fmt.Sprintf("Could not load weather: %s\nPress r to retry.", fetch.Message(p.store.Err))))
	}

	snap, ok := p.snapshot()
	switch {
	case p.store.Busy() && !ok:
		parts = append(parts, lipglossCenter(f.spin+" Loading weather...", f.width, f.height-4))
	case !ok:
		parts = append(parts, lipglossCenter("No weather data yet. Press / to pick a location.", f.width, f.height-4))
	default:
		parts = append(parts, renderSnapshot(snap, f.width))
	}
	return strings.Join(parts, "\n")
}

func renderSnapshot(s weather.Snapshot, width int) string {
	c := s.Current
	half := max(width/2-2, 30)

	current := []string{
		sectionTitleStyle.Render(fmt.Sprintf("%s · %s", c.Location, c.Main)),
		bodyStyle.Render(c.Description),
		fmt.Sprintf("%s  feels like %.1f°C", itemSelectedStyle.Render(fmt.Sprintf("%.1f°C", c.Temp)), c.FeelsLike),
		itemDimStyle.Render(fmt.Sprintf("min %.1f°C  max %.1f°C", c.TempMin, c.TempMax)),
		"",
		fmt.Sprintf("Humidity   %d%%", c.Humidity),
		fmt.Sprintf("Pressure   %d hPa", c.Pressure),
		fmt.Sprintf("Wind       %.1f m/s", c.WindSpeed),
		fmt.Sprintf("Rain (1h)  %.1f mm", c.Rain1h),
	}
	if !c.Sunrise.IsZero() {
		current = append(current, fmt.Sprintf("Sunrise    %s   Sunset %s",
			c.Sunrise.Local().Format("15:04"), c.Sunset.Local().Format("15:04")))
	}
	if !s.FetchedAt.IsZero() {
		current = append(current, "", itemDimStyle.Render("updated "+relativeTime(s.FetchedAt)))
	}

	a := advisory.Assess(c)
	level := levelStyles[a.Level.String()].Render(a.Level.String())
	adv := []string{
		sectionTitleStyle.Render("Agricultural risk"),
		level + " " + bodyStyle.Render(a.Reason),
		"",
	}
	for _, act := range a.Actions {
		adv = append(adv, "• "+act)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		paneActiveStyle.Width(half).Render(strings.Join(current, "\n")),
		paneStyle.Width(half).Render(strings.Join(adv, "\n")),
	)

	forecast := []string{sectionTitleStyle.Render("5-day forecast")}
	for _, d := range s.Forecast {
		forecast = append(forecast, fmt.Sprintf("%-11s %-10s %5.1f°C  %s  humidity %3d%%  rain %3.0f%%",
			d.Time.Local().Format("Mon 2 Jan"),
			truncateStr(d.Main, 10),
			d.Temp,
			itemDimStyle.Render(fmt.Sprintf("(%.0f°/%.0f°)", d.TempMin, d.TempMax)),
			d.Humidity,
			d.Pop*100,
		))
	}
	if len(s.Forecast) == 0 {
		forecast = append(forecast, itemDimStyle.Render("No forecast available"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, paneStyle.Width(width-4).Render(strings.Join(forecast, "\n")))
}

func (p *weatherPage) status(f frame) string {
	left := " " + connLabel(p.store.Conn)
	if p.store.Busy() {
		left += " " + f.spin + " fetching " + p.location
	}
	hints := "/ location  r refresh  ? help"
	if p.input.Focused() {
		hints = "enter fetch  esc cancel"
	}
	return renderBottomBar(left, hints, f.width)
}
