package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/browser"
	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/dashboard"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/market"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/weather"
)

// Deps are the data sources and stores the pages draw on.
type Deps struct {
	Weather weather.Source
	Prices  prices.Source
	// Chat is nil when no conversational source is configured; the chat
	// page then answers every question with the fallback text.
	Chat chat.Source
	// Feeds reads dashboard advisories; nil disables them.
	Feeds      *dashboard.FeedReader
	Advisories []dashboard.Feed
	DB         *cache.Cache
	Logger     *zap.Logger
	Timeout    time.Duration
	Location   string
	// Open launches a URL outside the terminal.
	Open func(url string) error
}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Timeout <= 0 {
		d.Timeout = fetch.DefaultTimeout
	}
	if d.Location == "" {
		d.Location = weather.DefaultLocation
	}
	if d.Open == nil {
		d.Open = browser.Open
	}
}

// frame is what a page needs to draw itself.
type frame struct {
	width  int
	height int
	spin   string
}

// view is one routed page. Pages keep their state across navigations;
// mount runs every time the page becomes active.
type view interface {
	mount() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	render(f frame) string
	status(f frame) string
	// capturing reports whether a text input owns the keyboard.
	capturing() bool
	busy() bool
}

// session is the identity chosen on the login page.
type session struct {
	user  market.User
	email string
}

type App struct {
	deps  Deps
	sess  *session
	route Route
	pages map[Route]view

	width  int
	height int

	spinner  spinner.Model
	spinning bool
	help     bool

	currentDate string
	err         error

	dash *dashboardPage
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Deps  Deps
	Start Route
}

func NewApp(opts RunOpts) *App {
	deps := opts.Deps
	deps.defaults()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	start := opts.Start
	if start == "" {
		start = RouteHome
	}

	sess := &session{user: market.Login(market.Buyer)}
	a := &App{
		deps:        deps,
		sess:        sess,
		route:       start,
		spinner:     sp,
		currentDate: time.Now().Format("Mon, Jan 2"),
	}
	a.dash = newDashboardPage(&a.deps)
	a.pages = map[Route]view{
		RouteHome:        newHomePage(),
		RouteLogin:       newLoginPage(sess),
		RouteRegister:    newRegisterPage(sess),
		RouteDashboard:   a.dash,
		RouteWeather:     newWeatherPage(&a.deps),
		RouteMarketplace: newMarketPage(&a.deps, sess),
		RoutePrices:      newPricesPage(&a.deps),
		RouteChat:        newChatPage(&a.deps),
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return a.afterPage(a.pages[a.route].mount())
}

// Route is the active page.
func (a *App) Route() Route {
	return a.route
}

func (a *App) switchTo(r Route) tea.Cmd {
	if _, ok := a.pages[r]; !ok {
		return nil
	}
	a.route = r
	a.help = false
	return a.pages[r].mount()
}

// afterPage starts the spinner when the active page has work in flight.
func (a *App) afterPage(cmd tea.Cmd) tea.Cmd {
	if a.pages[a.route].busy() && !a.spinning {
		a.spinning = true
		return tea.Batch(cmd, a.spinner.Tick)
	}
	return cmd
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a, a.afterPage(a.handleKey(msg))

	case navigateMsg:
		return a, a.afterPage(a.switchTo(msg.route))

	case errMsg:
		a.err = msg.err
		a.deps.Logger.Warn("tui error", zap.Error(msg.err))
		return a, nil

	case pricesLoadedMsg:
		return a, a.pages[RoutePrices].update(msg)

	case weatherLoadedMsg:
		return a, a.pages[RouteWeather].update(msg)

	case chatReplyMsg:
		return a, a.pages[RouteChat].update(msg)

	case advisoriesMsg:
		return a, a.dash.update(msg)

	case dashboardTickMsg:
		// The refresh timer only runs while the dashboard is on screen.
		if a.route != RouteDashboard {
			a.dash.ticking = false
			return a, nil
		}
		return a, a.dash.update(msg)

	case spinner.TickMsg:
		if a.pages[a.route].busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		a.spinning = false
		return a, nil
	}

	return a, a.pages[a.route].update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Global keys
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	p := a.pages[a.route]
	if p.capturing() {
		return p.update(msg)
	}

	if a.help {
		switch msg.String() {
		case "?", "esc", "q":
			a.help = false
		}
		return nil
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		a.help = true
		return nil
	case "1", "2", "3", "4", "5", "6":
		idx := int(msg.String()[0] - '1')
		return a.switchTo(navRoutes[idx])
	}
	return p.update(msg)
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  agritech")
	}

	if a.help {
		return a.renderHelp()
	}

	header := a.renderHeader()
	f := frame{width: a.width, spin: a.spinner.View()}
	f.height = a.height - lipgloss.Height(header) - 1
	if f.height < 3 {
		f.height = 3
	}

	p := a.pages[a.route]
	body := p.render(f)
	status := p.status(f)

	// Error display
	if a.err != nil {
		status = statusBarStyle.Width(a.width).Render(
			lipgloss.NewStyle().Foreground(colorError).Render(a.err.Error()))
	}

	lines := strings.Split(body, "\n")
	for len(lines) < f.height {
		lines = append(lines, "")
	}
	if len(lines) > f.height {
		lines = lines[:f.height]
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n"), status)
}

func (a *App) renderHeader() string {
	var nav []string
	for i, r := range navRoutes {
		label := fmt.Sprintf("%d %s", i+1, r.Title())
		if r == a.route {
			nav = append(nav, navActiveStyle.Render(label))
		} else {
			nav = append(nav, navStyle.Render(label))
		}
	}

	left := headerStyle.Render("agritech") + "  " + strings.Join(nav, "  ")
	right := headerDateStyle.Render(a.sess.user.Name + " · " + a.currentDate + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("agritech")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Pages") + "\n" +
		"  1-6           Home, Dashboard, Weather, Marketplace, Prices, Assistant\n\n" +
		dim.Render("Lists") + "\n" +
		"  j/k, ↑/↓     Move selection\n" +
		"  tab, ←/→      Change category\n" +
		"  /             Search\n" +
		"  l, r          Load / refresh prices\n\n" +
		dim.Render("Weather") + "\n" +
		"  /             Edit location, enter to fetch\n\n" +
		dim.Render("Marketplace") + "\n" +
		"  f             Price and state filters\n" +
		"  s             Switch buyer/seller\n" +
		"  a, e, d       Add, edit, delete listing\n" +
		"  o             Open listing image\n\n" +
		dim.Render("Assistant") + "\n" +
		"  enter         Send, or send the selected quick action\n" +
		"  tab           Cycle quick actions\n" +
		"  esc           Leave the input\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	app.Close()
	return err
}

// Close cancels any request still in flight.
func (a *App) Close() {
	for _, p := range a.pages {
		if s, ok := p.(interface{ stop() }); ok {
			s.stop()
		}
	}
}
