package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var asciiLogo = []string{
	` █████╗  ██████╗ ██████╗ ██╗████████╗███████╗ ██████╗██╗  ██╗`,
	`██╔══██╗██╔════╝ ██╔══██╗██║╚══██╔══╝██╔════╝██╔════╝██║  ██║`,
	`███████║██║  ███╗██████╔╝██║   ██║   █████╗  ██║     ███████║`,
	`██╔══██║██║   ██║██╔══██╗██║   ██║   ██╔══╝  ██║     ██╔══██║`,
	`██║  ██║╚██████╔╝██║  ██║██║   ██║   ███████╗╚██████╗██║  ██║`,
	`╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝   ╚═╝   ╚══════╝ ╚═════╝╚═╝  ╚═╝`,
}

type homePage struct{}

func newHomePage() *homePage { return &homePage{} }

func (p *homePage) mount() tea.Cmd { return nil }

func (p *homePage) busy() bool { return false }

func (p *homePage) capturing() bool { return false }

func (p *homePage) update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "l":
		return navigate(RouteLogin)
	case "g":
		return navigate(RouteRegister)
	case "d", "enter":
		return navigate(RouteDashboard)
	}
	return nil
}

func (p *homePage) render(f frame) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string

	// ASCII logo
	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "")
	lines = append(lines, helpDimStyle.Render("Weather, mandi prices, a marketplace and farming advice in one place."))
	lines = append(lines, "")

	// Menu items
	lines = append(lines, "          "+keyStyle.Render("[l]")+"  "+labelStyle.Render("Login"))
	lines = append(lines, "          "+keyStyle.Render("[g]")+"  "+labelStyle.Render("Register"))
	lines = append(lines, "          "+keyStyle.Render("[d]")+"  "+labelStyle.Render("Go to dashboard"))
	lines = append(lines, "")
	lines = append(lines, "          "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (f.height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	// Center horizontally
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}

func (p *homePage) status(f frame) string {
	return renderBottomBar("", "l login  g register  d dashboard  1-6 pages  q quit", f.width)
}
