package chat

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Welcome  = "Welcome to AgriTech Assistant! 🌱 Ask about farming or say 'magic story' for a special tale."
	Fallback = "I'm having trouble connecting. Please check your internet and try again."
)

type Role string

const (
	User Role = "user"
	Bot  Role = "bot"
)

// Message is one entry in the conversation.
type Message struct {
	ID   string
	Role Role
	Text string
	// Formatted marks bot text that should be rendered as markdown.
	Formatted bool
	At        time.Time
}

func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Formatted: role == Bot,
		At:        time.Now(),
	}
}

// QuickAction is a canned question offered next to the input.
type QuickAction struct {
	Label  string
	Prompt string
}

var QuickActions = []QuickAction{
	{Label: "Crop Advice", Prompt: "What are the best drought-resistant crops?"},
	{Label: "Pest Control", Prompt: "Organic methods to control whiteflies"},
	{Label: "Irrigation", Prompt: "Smart irrigation techniques for small farms"},
	{Label: "Magic Story", Prompt: "Tell me a story about a magic tractor"},
}

const storyPrompt = `Write a 3-paragraph story about a magic agricultural tool.
Highlight key features in bold and include specific numbers where relevant.`

const expertPrompt = `As an agricultural expert, provide detailed advice about: %s
Format with paragraphs, bold important terms, and highlight measurements.`

// BuildPrompt wraps user input in the story or expert template.
func BuildPrompt(input string) string {
	if strings.Contains(strings.ToLower(input), "magic") {
		return storyPrompt
	}
	return strings.Replace(expertPrompt, "%s", strings.TrimSpace(input), 1)
}

// Answer runs one round: it builds the prompt, asks src and returns the bot
// message. On failure the message carries Fallback and err is non-nil.
func Answer(ctx context.Context, src Source, input string) (Message, error) {
	text, err := src.Ask(ctx, BuildPrompt(input))
	if err != nil {
		m := NewMessage(Bot, Fallback)
		m.Formatted = false
		return m, err
	}
	return NewMessage(Bot, Emphasize(text)), nil
}

var (
	keywordRe  = regexp.MustCompile(`(?i)\b(optimal|recommended|critical|important|warning)\b`)
	numberRe   = regexp.MustCompile(`\b\d+(?:\.\d+)?%?`)
	unitRe     = regexp.MustCompile(`(?i)\b(ml|liters|inches|cm|kg|acres|hectares)\b`)
	listItemRe = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*+])\s+`)
)

// Emphasize marks advisory keywords and numbers bold and units italic, in
// markdown. Text already inside ** spans is left alone, as are list markers.
func Emphasize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		prefix := listItemRe.FindString(line)
		lines[i] = prefix + emphasizeLine(line[len(prefix):])
	}
	return strings.Join(lines, "\n")
}

func emphasizeLine(line string) string {
	segments := strings.Split(line, "**")
	for i := 0; i < len(segments); i += 2 {
		s := segments[i]
		s = keywordRe.ReplaceAllString(s, "**$1**")
		s = numberRe.ReplaceAllString(s, "**$0**")
		s = unitRe.ReplaceAllString(s, "_${1}_")
		segments[i] = s
	}
	return strings.Join(segments, "**")
}
