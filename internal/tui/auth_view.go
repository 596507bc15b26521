package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Godzilla108108/agritech/internal/market"
)

// The login and register pages collect details without checking them and
// move on, like the portal they replace.

type loginPage struct {
	sess *session
	form form
	role market.Role
}

func newLoginPage(sess *session) *loginPage {
	f := newForm("Email", "Password")
	f.secret(1)
	return &loginPage{sess: sess, form: f, role: market.Buyer}
}

func (p *loginPage) mount() tea.Cmd {
	if p.sess.email != "" && p.form.value(0) == "" {
		p.form.set(0, p.sess.email)
	}
	return p.form.start()
}

func (p *loginPage) busy() bool { return false }

func (p *loginPage) capturing() bool { return true }

func (p *loginPage) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.form.blur()
			return navigate(RouteHome)
		case "ctrl+r":
			if p.role == market.Buyer {
				p.role = market.Seller
			} else {
				p.role = market.Buyer
			}
			return nil
		case "ctrl+g":
			p.form.blur()
			return navigate(RouteRegister)
		case "enter":
			p.form.blur()
			p.sess.user = market.Login(p.role)
			p.sess.email = p.form.value(0)
			p.form.set(1, "")
			return navigate(RouteDashboard)
		}
	}
	return p.form.update(msg)
}

func (p *loginPage) render(f frame) string {
	w := min(f.width-4, 60)
	role := "Buyer"
	if p.role == market.Seller {
		role = "Seller"
	}
	body := sectionTitleStyle.Render("Sign in to agritech") + "\n" +
		p.form.view(w-6) + "\n\n" +
		"Account type  " + itemSelectedStyle.Render(role) + helpDimStyle.Render("  (ctrl+r to switch)")
	card := paneActiveStyle.Width(w).Render(body)
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, card)
}

func (p *loginPage) status(f frame) string {
	return renderBottomBar("", "enter sign in  tab next field  ctrl+g register  esc back", f.width)
}

type registerPage struct {
	sess *session
	form form
}

func newRegisterPage(sess *session) *registerPage {
	f := newForm("Full name", "Email", "Password", "Farm location")
	f.secret(2)
	return &registerPage{sess: sess, form: f}
}

func (p *registerPage) mount() tea.Cmd {
	return p.form.start()
}

func (p *registerPage) busy() bool { return false }

func (p *registerPage) capturing() bool { return true }

func (p *registerPage) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.form.blur()
			return navigate(RouteHome)
		case "enter":
			p.form.blur()
			p.sess.email = p.form.value(1)
			p.form.reset()
			return navigate(RouteLogin)
		}
	}
	return p.form.update(msg)
}

func (p *registerPage) render(f frame) string {
	w := min(f.width-4, 60)
	body := sectionTitleStyle.Render("Create your account") + "\n" + p.form.view(w-6)
	card := paneActiveStyle.Width(w).Render(body)
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, card)
}

func (p *registerPage) status(f frame) string {
	return renderBottomBar("", "enter register  tab next field  esc back", f.width)
}
