package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Godzilla108108/agritech/internal/chat"
	"github.com/Godzilla108108/agritech/internal/fetch"
	"github.com/Godzilla108108/agritech/internal/page"
)

var errChatUnconfigured = errors.New("assistant is not configured: set a chat API key or a proxy URL")

type chatPage struct {
	deps     *Deps
	messages []chat.Message
	input    textinput.Model
	viewport viewport.Model
	quick    int
	waiting  bool
	conn     page.Conn

	renderer *glamour.TermRenderer
	wrap     int
	rendered map[string]string
}

func newChatPage(deps *Deps) *chatPage {
	ti := textinput.New()
	ti.Placeholder = "Ask about crops, pests, irrigation..."
	ti.Prompt = searchPromptStyle.Render("> ")
	ti.CharLimit = 500

	return &chatPage{
		deps:     deps,
		messages: []chat.Message{chat.NewMessage(chat.Bot, chat.Welcome)},
		input:    ti,
		viewport: viewport.New(80, 20),
		quick:    -1,
		rendered: make(map[string]string),
	}
}

func (p *chatPage) mount() tea.Cmd {
	p.input.Focus()
	return textinput.Blink
}

func (p *chatPage) busy() bool { return p.waiting }

func (p *chatPage) capturing() bool { return p.input.Focused() }

// send posts input as the user's turn and asks for the reply.
func (p *chatPage) send(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if input == "" || p.waiting {
		return nil
	}
	p.messages = append(p.messages, chat.NewMessage(chat.User, input))
	p.input.SetValue("")
	p.quick = -1
	p.waiting = true

	src := p.deps.Chat
	timeout := p.deps.Timeout
	return func() tea.Msg {
		if src == nil {
			m := chat.NewMessage(chat.Bot, chat.Fallback)
			m.Formatted = false
			return chatReplyMsg{reply: m, err: errChatUnconfigured}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := chat.Answer(ctx, src, input)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (p *chatPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chatReplyMsg:
		p.waiting = false
		p.messages = append(p.messages, msg.reply)
		if msg.err != nil {
			p.conn = page.Offline
			p.deps.Logger.Warn("assistant request failed",
				zap.String("kind", fetch.Kind(msg.err)), zap.Error(msg.err))
		} else {
			p.conn = page.Online
		}
		p.viewport.GotoBottom()
		return nil

	case tea.KeyMsg:
		if !p.input.Focused() {
			switch msg.String() {
			case "i", "enter":
				p.input.Focus()
				return textinput.Blink
			case "j", "down":
				p.viewport.ScrollDown(1)
			case "k", "up":
				p.viewport.ScrollUp(1)
			}
			return nil
		}
		switch msg.String() {
		case "esc":
			p.input.Blur()
			return nil
		case "tab":
			p.quick = (p.quick + 1) % len(chat.QuickActions)
			return nil
		case "shift+tab":
			p.quick = (p.quick - 1 + len(chat.QuickActions)) % len(chat.QuickActions)
			return nil
		case "enter":
			if p.input.Value() == "" && p.quick >= 0 {
				return p.send(chat.QuickActions[p.quick].Prompt)
			}
			return p.send(p.input.Value())
		case "pgup", "up":
			p.viewport.ScrollUp(3)
			return nil
		case "pgdown", "down":
			p.viewport.ScrollDown(3)
			return nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// markdown renders bot text, caching the result per message. Rendering
// failures fall back to the plain text.
func (p *chatPage) markdown(m chat.Message, width int) string {
	if p.renderer == nil || p.wrap != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapText(m.Text, width)
		}
		p.renderer = r
		p.wrap = width
		p.rendered = make(map[string]string)
	}
	if out, ok := p.rendered[m.ID]; ok {
		return out
	}
	out, err := p.renderer.Render(m.Text)
	if err != nil {
		return wrapText(m.Text, width)
	}
	out = strings.Trim(out, "\n")
	p.rendered[m.ID] = out
	return out
}

func (p *chatPage) renderHistory(width int) string {
	var parts []string
	for _, m := range p.messages {
		at := itemDimStyle.Render(m.At.Format("15:04"))
		switch {
		case m.Role == chat.User:
			parts = append(parts, itemSelectedStyle.Render("You")+" "+at+"\n"+bodyStyle.Render(wrapText(m.Text, width)))
		case m.Formatted:
			parts = append(parts, itemTitleStyle.Render("Assistant")+" "+at+"\n"+p.markdown(m, width))
		default:
			parts = append(parts, itemTitleStyle.Render("Assistant")+" "+at+"\n"+bodyStyle.Render(wrapText(m.Text, width)))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p *chatPage) render(f frame) string {
	var quick []string
	for i, q := range chat.QuickActions {
		if i == p.quick {
			quick = append(quick, tabActiveStyle.Render(q.Label))
		} else {
			quick = append(quick, tabInactiveStyle.Render(q.Label))
		}
	}
	quickRow := " " + strings.Join(quick, " ")

	input := " " + p.input.View()
	if p.waiting {
		input = " " + f.spin + " Thinking..."
	}

	p.viewport.Width = f.width - 2
	p.viewport.Height = max(f.height-4, 3)
	atBottom := p.viewport.AtBottom()
	p.viewport.SetContent(p.renderHistory(f.width - 4))
	if atBottom {
		p.viewport.GotoBottom()
	}

	return lipgloss.JoinVertical(lipgloss.Left, p.viewport.View(), "", quickRow, input)
}

func (p *chatPage) status(f frame) string {
	left := " " + connLabel(p.conn)
	left += itemDimStyle.Render(fmt.Sprintf(" · %d messages", len(p.messages)))
	hints := "enter send  tab quick action  esc leave input"
	if !p.input.Focused() {
		hints = "i type  j/k scroll  ? help"
	}
	return renderBottomBar(left, hints, f.width)
}
