package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorText      = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E0E0E0"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFA726"}
	colorError     = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	colorTabActive = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#388E3C"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#23302A"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1B2420"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16261E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	navActiveStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	navStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	paneActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorActiveBdr).
			Padding(0, 1)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemMetaStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	itemDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorTabActive).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorSurface)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)

	levelStyles = map[string]lipgloss.Style{
		"Low":    lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		"Medium": lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		"High":   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
)
