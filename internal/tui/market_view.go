package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/cache"
	"github.com/Godzilla108108/agritech/internal/market"
	"github.com/Godzilla108108/agritech/internal/page"
)

var marketEmpty = page.EmptyTexts{
	NeverLoaded: "No listings yet",
	NoMatch:     "No products match your filters",
}

type marketMode int

const (
	marketBrowse marketMode = iota
	marketSearch
	marketRefine
	marketEdit
	marketConfirmDelete
)

// Listing form fields, in order.
const (
	fieldName = iota
	fieldCategory
	fieldPrice
	fieldQuantity
	fieldDescription
	fieldState
	fieldContact
	fieldImage
)

type marketPage struct {
	deps    *Deps
	sess    *session
	catalog *market.Catalog
	store   page.Store[market.Product]
	tabs    categoryTabs
	search  textinput.Model
	refine  market.Refinement
	mode    marketMode
	cursor  int
	notice  string

	refineForm form
	listing    form
	editing    string
}

func newMarketPage(deps *Deps, sess *session) *marketPage {
	var products []market.Product
	if deps.DB != nil {
		products = cache.Load[market.Product](deps.DB, cache.KeyProducts)
	}
	if products == nil {
		products = market.Mock()
	}
	refine := market.DefaultRefinement()
	p := &marketPage{
		deps:       deps,
		sess:       sess,
		catalog:    market.NewCatalog(products),
		tabs:       newCategoryTabs(market.Categories),
		search:     newSearchInput("Search products..."),
		refine:     refine,
		refineForm: newForm("Min price", "Max price", "State"),
		listing: newForm("Name", "Category", "Price (₹)", "Quantity",
			"Description", "State", "Contact", "Image URL"),
	}
	p.store = page.New(market.Spec, p.catalog.Products()).WithPredicates(refine.Predicates()...)
	return p
}

func (p *marketPage) mount() tea.Cmd { return nil }

func (p *marketPage) busy() bool { return false }

func (p *marketPage) capturing() bool {
	return p.mode != marketBrowse
}

func (p *marketPage) selected() (market.Product, bool) {
	if p.cursor < len(p.store.Visible) {
		return p.store.Visible[p.cursor], true
	}
	return market.Product{}, false
}

func (p *marketPage) update(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyMsg)
	switch p.mode {
	case marketSearch:
		if isKey {
			return p.handleSearchKey(key)
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		return cmd
	case marketRefine:
		if isKey {
			return p.handleRefineKey(key)
		}
		return p.refineForm.update(msg)
	case marketEdit:
		if isKey {
			return p.handleEditKey(key)
		}
		return p.listing.update(msg)
	case marketConfirmDelete:
		if isKey {
			return p.handleConfirmKey(key)
		}
		return nil
	}
	if isKey {
		p.notice = ""
		return p.handleKey(key)
	}
	return nil
}

func (p *marketPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
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
		p.store = p.store.SetCategory(p.tabs.current())
		p.cursor = 0
	case "shift+tab", "left":
		p.tabs.prev()
		p.store = p.store.SetCategory(p.tabs.current())
		p.cursor = 0
	case "/":
		p.mode = marketSearch
		p.search.Focus()
		return textinput.Blink
	case "f":
		p.mode = marketRefine
		p.refineForm.set(0, formatPrice(p.refine.MinPrice))
		p.refineForm.set(1, formatPrice(p.refine.MaxPrice))
		p.refineForm.set(2, p.refine.State)
		return p.refineForm.start()
	case "s":
		if p.sess.user.IsSeller() {
			p.sess.user = market.Login(market.Buyer)
		} else {
			p.sess.user = market.Login(market.Seller)
		}
		p.notice = "Signed in as " + p.sess.user.Name
	case "a":
		if !p.sess.user.IsSeller() {
			p.notice = "Switch to a seller account (s) to post listings"
			return nil
		}
		p.editing = ""
		p.listing.reset()
		p.listing.set(fieldCategory, market.Vegetables)
		p.mode = marketEdit
		return p.listing.start()
	case "e":
		prod, ok := p.selected()
		if !ok {
			return nil
		}
		if !p.sess.user.Owns(prod) {
			p.notice = "You can only edit your own listings"
			return nil
		}
		p.editing = prod.ID
		p.fillListing(market.DraftOf(prod))
		p.mode = marketEdit
		return p.listing.start()
	case "d":
		prod, ok := p.selected()
		if !ok {
			return nil
		}
		if !p.sess.user.Owns(prod) {
			p.notice = "You can only delete your own listings"
			return nil
		}
		p.mode = marketConfirmDelete
	case "o", "enter":
		prod, ok := p.selected()
		if !ok {
			return nil
		}
		if prod.Image == "" {
			p.notice = "This listing has no image"
			return nil
		}
		return openURLCmd(p.deps.Open, prod.Image)
	case "esc":
		if p.search.Value() != "" {
			p.search.SetValue("")
			p.store = p.store.SetSearch("")
			p.cursor = 0
		}
	}
	return nil
}

func (p *marketPage) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.search.SetValue("")
		p.store = p.store.SetSearch("")
		fallthrough
	case "enter":
		p.search.Blur()
		p.mode = marketBrowse
		p.cursor = 0
		return nil
	}
	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if p.search.Value() != before {
		p.store = p.store.SetSearch(p.search.Value())
		p.cursor = 0
	}
	return cmd
}

func (p *marketPage) handleRefineKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.refineForm.blur()
		p.mode = marketBrowse
		return nil
	case "enter":
		r, err := parseRefinement(p.refineForm.value(0), p.refineForm.value(1), p.refineForm.value(2))
		if err != nil {
			p.notice = err.Error()
			return nil
		}
		p.refine = r
		p.store = p.store.WithPredicates(r.Predicates()...)
		p.cursor = 0
		p.refineForm.blur()
		p.mode = marketBrowse
		return nil
	}
	return p.refineForm.update(msg)
}

// parseRefinement reads the filter panel. Blank prices fall back to the
// default range.
func parseRefinement(minText, maxText, state string) (market.Refinement, error) {
	r := market.DefaultRefinement()
	r.State = state
	if minText != "" {
		v, err := strconv.ParseFloat(minText, 64)
		if err != nil {
			return r, fmt.Errorf("min price must be a number")
		}
		r.MinPrice = v
	}
	if maxText != "" {
		v, err := strconv.ParseFloat(maxText, 64)
		if err != nil {
			return r, fmt.Errorf("max price must be a number")
		}
		r.MaxPrice = v
	}
	if r.MinPrice > r.MaxPrice {
		return r, fmt.Errorf("min price is above max price")
	}
	return r, nil
}

func (p *marketPage) fillListing(d market.Draft) {
	p.listing.set(fieldName, d.Name)
	p.listing.set(fieldCategory, d.Category)
	p.listing.set(fieldPrice, formatPrice(d.Price))
	p.listing.set(fieldQuantity, d.Quantity)
	p.listing.set(fieldDescription, d.Description)
	p.listing.set(fieldState, d.State)
	p.listing.set(fieldContact, d.Contact)
	p.listing.set(fieldImage, d.Image)
}

func (p *marketPage) draft() (market.Draft, error) {
	d := market.Draft{
		Name:        p.listing.value(fieldName),
		Category:    strings.ToLower(p.listing.value(fieldCategory)),
		Quantity:    p.listing.value(fieldQuantity),
		Description: p.listing.value(fieldDescription),
		State:       p.listing.value(fieldState),
		Contact:     p.listing.value(fieldContact),
		Image:       p.listing.value(fieldImage),
	}
	if s := p.listing.value(fieldPrice); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return d, fmt.Errorf("price must be a number")
		}
		d.Price = v
	}
	return d, nil
}

func (p *marketPage) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.listing.blur()
		p.mode = marketBrowse
		return nil
	case "enter":
		if !p.listing.last() {
			p.listing.move(1)
			return nil
		}
		return p.submitListing()
	case "ctrl+s":
		return p.submitListing()
	}
	return p.listing.update(msg)
}

func (p *marketPage) submitListing() tea.Cmd {
	d, err := p.draft()
	if err != nil {
		p.notice = err.Error()
		return nil
	}
	var prod market.Product
	if p.editing == "" {
		prod, err = p.catalog.Add(p.sess.user, d)
	} else {
		prod, err = p.catalog.Update(p.sess.user, p.editing, d)
	}
	if err != nil {
		p.notice = err.Error()
		return nil
	}
	p.listing.blur()
	p.mode = marketBrowse
	p.notice = "Saved " + prod.Name
	return p.persist()
}

func (p *marketPage) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	p.mode = marketBrowse
	if msg.String() != "y" {
		return nil
	}
	prod, ok := p.selected()
	if !ok {
		return nil
	}
	if err := p.catalog.Delete(p.sess.user, prod.ID); err != nil {
		p.deps.Logger.Warn("deleting listing", zap.String("id", prod.ID), zap.Error(err))
		p.notice = err.Error()
		return nil
	}
	p.notice = "Deleted " + prod.Name
	return p.persist()
}

// persist refilters the catalog and saves it in the background.
func (p *marketPage) persist() tea.Cmd {
	products := p.catalog.Products()
	p.store = p.store.SetAll(products)
	p.cursor = clampCursor(p.cursor, len(p.store.Visible))
	db := p.deps.DB
	return func() tea.Msg {
		if db == nil {
			return nil
		}
		if err := cache.Save(db, cache.KeyProducts, products); err != nil {
			return errMsg{err: fmt.Errorf("saving listings: %w", err)}
		}
		return nil
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *marketPage) render(f frame) string {
	switch p.mode {
	case marketRefine:
		return paneActiveStyle.Width(f.width-4).Render(
			sectionTitleStyle.Render("Filter listings") + "\n" + p.refineForm.view(f.width-8))
	case marketEdit:
		title := "New listing"
		if p.editing != "" {
			title = "Edit listing"
		}
		return paneActiveStyle.Width(f.width-4).Render(
			sectionTitleStyle.Render(title) + "\n" + p.listing.view(f.width-8) + "\n\n" +
				helpDimStyle.Render("categories: "+strings.Join(market.Categories[1:], ", ")))
	}

	tabs := p.tabs.render(f.width)
	search := p.search.View()
	if p.mode != marketSearch && p.search.Value() == "" {
		search = helpDimStyle.Render(fmt.Sprintf("  / search   f filter (₹%s-₹%s%s)",
			formatPrice(p.refine.MinPrice), formatPrice(p.refine.MaxPrice), stateSuffix(p.refine.State)))
	}
	lines := []string{tabs, search}
	if p.notice != "" {
		lines = append(lines, " "+itemSelectedStyle.Render(p.notice))
	}
	if p.mode == marketConfirmDelete {
		if prod, ok := p.selected(); ok {
			lines = append(lines, errorPanelStyle.Render(fmt.Sprintf("Delete %q? y to confirm, any other key to cancel", prod.Name)))
		}
	}

	height := f.height - len(lines)
	if msg := page.EmptyMessage(p.store, marketEmpty); msg != "" {
		lines = append(lines, lipglossCenter(msg, f.width, height))
		return strings.Join(lines, "\n")
	}

	listW := f.width * 45 / 100
	rows := p.store.Visible
	list := renderList(len(rows), p.cursor, height-2, 3, func(i int, selected bool) string {
		return renderProductItem(rows[i], selected, listW-4)
	})
	detail := ""
	if prod, ok := p.selected(); ok {
		detail = p.renderDetail(prod, f.width-listW-6)
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		paneActiveStyle.Width(listW-2).Height(height-2).Render(list),
		paneStyle.Width(f.width-listW-4).Height(height-2).Render(detail),
	)
	lines = append(lines, content)
	return strings.Join(lines, "\n")
}

func stateSuffix(state string) string {
	if state == "" {
		return ""
	}
	return ", " + state
}

func renderProductItem(prod market.Product, selected bool, width int) string {
	price := fmt.Sprintf("₹%s", formatPrice(prod.Price))
	name := truncateStr(prod.Name, width-lipgloss.Width(price)-4)
	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + name)
	} else {
		title = itemTitleStyle.Render("  " + name)
	}
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(price), 1)
	title += strings.Repeat(" ", gap) + price
	meta := "  " + itemMetaStyle.Render(prod.Category) + " " + itemDimStyle.Render("· "+prod.State)
	return title + "\n" + meta + "\n"
}

func (p *marketPage) renderDetail(prod market.Product, width int) string {
	lines := []string{
		sectionTitleStyle.Render(prod.Name),
		itemMetaStyle.Render(prod.Category) + itemDimStyle.Render(" · posted "+prod.PostedOn),
		"",
		fmt.Sprintf("Price     ₹%s", formatPrice(prod.Price)),
		fmt.Sprintf("Quantity  %s", prod.Quantity),
		fmt.Sprintf("Seller    %s", prod.SellerName),
		fmt.Sprintf("State     %s", prod.State),
		fmt.Sprintf("Contact   %s", prod.Contact),
		"",
		bodyStyle.Render(wrapText(prod.Description, width)),
	}
	if prod.Image != "" {
		lines = append(lines, "", itemDimStyle.Render("o open image"))
	}
	if p.sess.user.Owns(prod) {
		lines = append(lines, itemDimStyle.Render("e edit  d delete"))
	}
	return strings.Join(lines, "\n")
}

func (p *marketPage) status(f frame) string {
	var hints string
	switch p.mode {
	case marketSearch:
		hints = "esc clear  enter done"
	case marketRefine:
		hints = "tab next field  enter apply  esc cancel"
	case marketEdit:
		hints = "tab next field  ctrl+s save  esc cancel"
	default:
		hints = "/ search  f filter  s role  a add  ? help"
	}
	return renderStatusBar(len(p.store.Visible), len(p.store.All), p.tabs.current(),
		p.store.Conn, hints, f.width, false)
}
