package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Godzilla108108/agritech/internal/page"
)

func connLabel(c page.Conn) string {
	if c == page.Offline {
		return offlineStyle.Render("● offline")
	}
	return onlineStyle.Render("● online")
}

// renderStatusBar draws the list-page footer: record counts, the active
// category, connection state and key hints.
func renderStatusBar(visible, total int, category string, conn page.Conn, hints string, width int, busy bool) string {
	left := fmt.Sprintf(" %d of %d", visible, total)
	if category != "" && category != "All" {
		left += " · " + category
	}
	left += " · " + connLabel(conn)
	if busy {
		left += " (loading...)"
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(left, hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
