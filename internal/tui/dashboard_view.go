package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/dashboard"
	"github.com/Godzilla108108/agritech/internal/weather"
)

type dashboardPage struct {
	deps       *Deps
	overview   dashboard.Overview
	advisories []dashboard.Alert
	feedErrs   int
	reading    bool
	ticking    bool
	cursor     int
	now        func() time.Time
}

func newDashboardPage(deps *Deps) *dashboardPage {
	p := &dashboardPage{deps: deps, now: time.Now}
	p.regenerate()
	return p
}

func (p *dashboardPage) mount() tea.Cmd {
	p.regenerate()
	cmds := []tea.Cmd{p.readAdvisories()}
	if !p.ticking {
		p.ticking = true
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(dashboard.RefreshInterval, func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

func (p *dashboardPage) busy() bool { return p.reading }

func (p *dashboardPage) capturing() bool { return false }

// regenerate rebuilds the overview from the cached weather snapshot and the
// latest advisories.
func (p *dashboardPage) regenerate() {
	opts := dashboard.GenerateOpts{Now: p.now(), Advisories: p.advisories}
	if p.deps.DB != nil {
		if snap, ok := cache.LoadValue[weather.Snapshot](p.deps.DB, cache.KeyWeather); ok {
			opts.Weather = &snap
		}
	}
	p.overview = dashboard.Generate(opts)
	p.cursor = clampCursor(p.cursor, len(p.overview.Alerts))
}

func (p *dashboardPage) readAdvisories() tea.Cmd {
	if p.deps.Feeds == nil || len(p.deps.Advisories) == 0 || p.reading {
		return nil
	}
	p.reading = true
	reader := p.deps.Feeds
	feeds := p.deps.Advisories
	timeout := p.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return advisoriesMsg{result: reader.ReadAll(ctx, feeds)}
	}
}

func (p *dashboardPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardTickMsg:
		p.regenerate()
		return tea.Batch(tick(), p.readAdvisories())

	case advisoriesMsg:
		p.reading = false
		p.feedErrs = len(msg.result.Errors)
		for _, err := range msg.result.Errors {
			p.deps.Logger.Warn("reading advisory feed failed", zap.Error(err))
		}
		// Keep the previous advisories when every feed failed.
		if len(msg.result.Alerts) > 0 || len(msg.result.Errors) == 0 {
			p.advisories = msg.result.Alerts
		}
		p.regenerate()
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			p.regenerate()
			return p.readAdvisories()
		case "j", "down":
			if p.cursor < len(p.overview.Alerts)-1 {
				p.cursor++
			}
		case "k", "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "o", "enter":
			if p.cursor < len(p.overview.Alerts) && p.overview.Alerts[p.cursor].Link != "" {
				return openURLCmd(p.deps.Open, p.overview.Alerts[p.cursor].Link)
			}
		case "w":
			return navigate(RouteWeather)
		case "p":
			return navigate(RoutePrices)
		case "m":
			return navigate(RouteMarketplace)
		case "a":
			return navigate(RouteChat)
		}
	}
	return nil
}

func openURLCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (p *dashboardPage) render(f frame) string {
	o := p.overview
	third := max(f.width/3-2, 24)

	title := sectionTitleStyle.Render(o.Greeting+", farmer") + "  " +
		itemDimStyle.Render("updated "+o.GeneratedAt.Format("15:04"))

	w := o.Weather
	weatherLines := []string{
		sectionTitleStyle.Render("Weather · " + w.Location),
		fmt.Sprintf("%s  %s", itemSelectedStyle.Render(fmt.Sprintf("%.1f°C", w.Temperature)), w.Forecast),
		fmt.Sprintf("Humidity %d%%  Wind %.1f", w.Humidity, w.WindSpeed),
		fmt.Sprintf("Rainfall %.1f mm", w.RainfallMM),
		"Risk " + w.Risk,
	}
	if !w.Live {
		weatherLines = append(weatherLines, itemDimStyle.Render("sample data; open Weather to fetch"))
	}

	trendLines := []string{sectionTitleStyle.Render("Market trends")}
	for _, t := range o.Trends {
		change := fmt.Sprintf("%+.1f%%", t.Change)
		style := onlineStyle
		if t.Change < 0 {
			style = offlineStyle
		}
		trendLines = append(trendLines, fmt.Sprintf("%-9s ₹%-6d/%s %s", t.Crop, t.Price, t.Unit, style.Render(change)))
	}

	s := o.Soil
	soilLines := []string{
		sectionTitleStyle.Render("Soil"),
		fmt.Sprintf("Moisture    %d%%", s.Moisture),
		fmt.Sprintf("N / P / K   %d / %d / %d", s.Nitrogen, s.Phosphorus, s.Potassium),
		fmt.Sprintf("pH          %.1f", s.PH),
		itemDimStyle.Render("tested " + s.LastTested),
	}

	alertLines := []string{sectionTitleStyle.Render("Alerts")}
	for i, a := range o.Alerts {
		prefix := "  "
		if i == p.cursor {
			prefix = "> "
		}
		line := prefix + severityStyle(a.Severity).Render(strings.ToUpper(string(a.Severity))) + " " +
			truncateStr(a.Message, third-14)
		alertLines = append(alertLines, line)
	}
	if p.feedErrs > 0 {
		alertLines = append(alertLines, itemDimStyle.Render(fmt.Sprintf("%d advisory feed(s) unavailable", p.feedErrs)))
	}

	cropLines := []string{sectionTitleStyle.Render("Recommended crops")}
	for _, c := range o.Crops {
		bar := strings.Repeat("█", c.Suitability/10)
		cropLines = append(cropLines, fmt.Sprintf("%-8s %s %d%%", c.Name, itemMetaStyle.Render(bar), c.Suitability))
	}

	activityLines := []string{sectionTitleStyle.Render("Recent activity")}
	for _, a := range o.Activities {
		activityLines = append(activityLines, a.Action+" "+itemDimStyle.Render("· "+a.When))
	}

	box := func(lines []string) string {
		return paneStyle.Width(third).Render(strings.Join(lines, "\n"))
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, box(weatherLines), box(trendLines), box(soilLines))
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, box(alertLines), box(cropLines), box(activityLines))

	return lipgloss.JoinVertical(lipgloss.Left, " "+title, row1, row2)
}

func severityStyle(s dashboard.Severity) lipgloss.Style {
	switch s {
	case dashboard.Critical:
		return offlineStyle
	case dashboard.High:
		return itemSelectedStyle
	}
	return itemDimStyle
}

func (p *dashboardPage) status(f frame) string {
	left := fmt.Sprintf(" refreshes every %s", dashboard.RefreshInterval)
	if p.reading {
		left += " " + f.spin + " reading advisories"
	}
	return renderBottomBar(left, "w weather  p prices  m market  a assistant  o open alert  r refresh", f.width)
}
