package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/page"
	"github.com/Godzilla108108/agritech/internal/prices"
	"github.com/Godzilla108108/agritech/internal/task"
)

var pricesEmpty = page.EmptyTexts{
	NeverLoaded: "No price data loaded",
	NoMatch:     "No matching prices found",
}

type pricesPage struct {
	deps    *Deps
	store   page.Store[prices.Price]
	tracker task.Tracker
	tabs    categoryTabs
	search  textinput.Model
	cursor  int
}

func newPricesPage(deps *Deps) *pricesPage {
	var cached []prices.Price
	if deps.DB != nil {
		cached = cache.Load[prices.Price](deps.DB, cache.KeyPrices)
	}
	return &pricesPage{
		deps:   deps,
		store:  page.New(prices.Spec, cached),
		tabs:   newCategoryTabs(prices.Categories),
		search: newSearchInput("Search commodity, market, district or state..."),
	}
}

func newSearchInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100
	return ti
}

func (p *pricesPage) mount() tea.Cmd { return nil }

func (p *pricesPage) busy() bool { return p.store.Busy() }

func (p *pricesPage) capturing() bool { return p.search.Focused() }

func (p *pricesPage) stop() { p.tracker.Stop() }

// load starts a fetch unless one is already running.
func (p *pricesPage) load() tea.Cmd {
	if p.store.Busy() {
		return nil
	}
	var seq uint64
	p.store, seq = p.store.Begin()
	ctx := p.tracker.Start(context.Background())
	src := p.deps.Prices
	timeout := p.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		records, err := src.Prices(ctx)
		return pricesLoadedMsg{seq: seq, records: records, err: err}
	}
}

func (p *pricesPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pricesLoadedMsg:
		return p.resolve(msg)
	case tea.KeyMsg:
		if p.search.Focused() {
			return p.handleSearchKey(msg)
		}
		return p.handleKey(msg)
	}
	if p.search.Focused() {
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		return cmd
	}
	return nil
}

func (p *pricesPage) resolve(msg pricesLoadedMsg) tea.Cmd {
	next, ok := p.store.Resolve(msg.seq, msg.records, msg.err)
	if !ok {
		return nil
	}
	p.store = next
	p.cursor = clampCursor(p.cursor, len(p.store.Visible))
	if msg.err != nil {
		p.deps.Logger.Warn("loading prices failed",
			zap.String("kind", fetch.Kind(msg.err)), zap.Error(msg.err))
		return nil
	}
	p.deps.Logger.Info("prices loaded", zap.Int("records", len(msg.records)))

	// Persist to cache asynchronously
	db := p.deps.DB
	records := msg.records
	return func() tea.Msg {
		if db == nil {
			return nil
		}
		if err := cache.Save(db, cache.KeyPrices, records); err != nil {
			return errMsg{err: fmt.Errorf("caching prices: %w", err)}
		}
		if err := db.SetLastRefresh(cache.KeyPrices); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (p *pricesPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "l", "r":
		return p.load()
	case "j", "down":
		if p.cursor < len(p.store.Visible)-1 {
			p.cursor++
		}
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "tab", "right":
		p.tabs.next()
		p.applyCategory()
	case "shift+tab", "left":
		p.tabs.prev()
		p.applyCategory()
	case "/":
		p.search.Focus()
		return textinput.Blink
	case "esc":
		if p.search.Value() != "" {
			p.search.SetValue("")
			p.store = p.store.SetSearch("")
			p.cursor = 0
		}
	}
	return nil
}

func (p *pricesPage) applyCategory() {
	p.store = p.store.SetCategory(p.tabs.current())
	p.cursor = 0
}

func (p *pricesPage) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.search.SetValue("")
		p.search.Blur()
		p.store = p.store.SetSearch("")
		p.cursor = 0
		return nil
	case "enter":
		p.search.Blur()
		return nil
	}

	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	// Only refilter on actual value changes, not cursor moves etc.
	if p.search.Value() != before {
		p.store = p.store.SetSearch(p.search.Value())
		p.cursor = 0
	}
	return cmd
}

func (p *pricesPage) render(f frame) string {
	tabs := p.tabs.render(f.width)
	search := p.search.View()
	if !p.search.Focused() && p.search.Value() == "" {
		search = helpDimStyle.Render("  / search   l load   r refresh")
	}

	height := f.height - 2
	var sections []string

	if p.store.Phase == page.Error {
		panel := errorPanelStyle.Width(f.width - 4).Render(
			fmt.Sprintf("Could not load prices: %s\nPress r to retry.", fetch.Message(p.store.Err)))
		sections = append(sections, panel)
		height -= lipgloss.Height(panel)
	}

	switch {
	case p.store.Busy() && !p.store.Loaded:
		sections = append(sections, lipglossCenter(f.spin+" Loading prices...", f.width, height))
	case page.EmptyMessage(p.store, pricesEmpty) != "":
		sections = append(sections, lipglossCenter(page.EmptyMessage(p.store, pricesEmpty), f.width, height))
	default:
		sections = append(sections, p.renderRows(f.width, height))
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabs, search, strings.Join(sections, "\n"))
}

func (p *pricesPage) renderRows(width, height int) string {
	rows := p.store.Visible
	return renderList(len(rows), p.cursor, height, 4, func(i int, selected bool) string {
		return renderPriceItem(rows[i], selected, width)
	})
}

func renderPriceItem(r prices.Price, selected bool, width int) string {
	name := r.Commodity
	if r.Variety != "" && !strings.EqualFold(r.Variety, r.Commodity) {
		name += " (" + r.Variety + ")"
	}
	modal := r.ModalPrice.Display()
	name = truncateStr(name, width-lipgloss.Width(modal)-6)

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + name)
	} else {
		title = itemTitleStyle.Render("  " + name)
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(modal) - 1
	if gap < 1 {
		gap = 1
	}
	title += strings.Repeat(" ", gap) + itemSelectedStyle.Render(modal)

	place := fmt.Sprintf("%s · %s, %s", r.Market, r.District, r.State)
	meta := "  " + itemMetaStyle.Render(truncateStr(place, width-20)) + " " +
		itemDimStyle.Render("· "+prices.FormatDate(r.ArrivalDate))
	rng := "  " + itemDimStyle.Render(fmt.Sprintf("min %s  max %s  per quintal",
		r.MinPrice.Display(), r.MaxPrice.Display()))

	return title + "\n" + meta + "\n" + rng + "\n"
}

func (p *pricesPage) status(f frame) string {
	hints := "/ search  tab category  r refresh  ? help"
	if p.search.Focused() {
		hints = "esc cancel  enter done"
	}
	return renderStatusBar(len(p.store.Visible), len(p.store.All), p.tabs.current(),
		p.store.Conn, hints, f.width, p.store.Busy())
}
