package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// categoryTabs is the single-select tab row above a list page. The first
// option is always "All".
type categoryTabs struct {
	options []string
	active  int
}

func newCategoryTabs(options []string) categoryTabs {
	return categoryTabs{options: options}
}

func (t *categoryTabs) next() {
	if len(t.options) > 0 {
		t.active = (t.active + 1) % len(t.options)
	}
}

func (t *categoryTabs) prev() {
	if len(t.options) > 0 {
		t.active = (t.active - 1 + len(t.options)) % len(t.options)
	}
}

func (t *categoryTabs) current() string {
	if len(t.options) == 0 {
		return ""
	}
	return t.options[t.active]
}

func (t *categoryTabs) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, opt := range t.options {
		style := tabInactiveStyle
		if i == t.active {
			style = tabActiveStyle
		}
		part := style.Render(opt)
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
