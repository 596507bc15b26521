package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), fetch.New(), Options{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestAsk(t *testing.T) {
	var gotPrompt, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotPrompt = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Plant millets."}]}}]}`)
	})

	text, err := c.Ask(context.Background(), "drought crops?")
	require.NoError(t, err)
	assert.Equal(t, "Plant millets.", text)
	assert.Contains(t, gotPath, DefaultModel+":generateContent")
	assert.Contains(t, gotPrompt, "drought crops?")
}

func TestAskMissingCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := c.Ask(context.Background(), "hello")
	var malformed fetch.ErrMalformedResponse
	assert.True(t, errors.As(err, &malformed), "expected ErrMalformedResponse, got %v", err)
}

func TestAskHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	})

	_, err := c.Ask(context.Background(), "hello")
	var status fetch.ErrHTTPStatus
	require.True(t, errors.As(err, &status), "expected ErrHTTPStatus, got %v", err)
	assert.Equal(t, 503, status.Code)
}

func TestAskUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(context.Background(), fetch.New(), Options{APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	_, err = c.Ask(context.Background(), "hello")
	assert.Equal(t, "unreachable", fetch.Kind(err))
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), fetch.New(), Options{})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"ok", `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`, "hi", false},
		{"no candidates", `{}`, "", true},
		{"empty candidates", `{"candidates":[]}`, "", true},
		{"no parts", `{"candidates":[{"content":{}}]}`, "", true},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, "", true},
		{"not json", `<html>`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.body))
			if tt.wantErr {
				assert.Equal(t, "malformed_response", fetch.Kind(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestPrompt(t *testing.T) {
	assert.Equal(t, "rice", NewRequest("rice").Prompt())
	assert.Equal(t, "", Request{}.Prompt())
}

type stubSource struct {
	prompt string
	answer string
	err    error
}

func (s *stubSource) Ask(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, s.err
}

func TestAnswer(t *testing.T) {
	src := &stubSource{answer: "Use 20 kg per acre."}
	msg, err := Answer(context.Background(), src, "fertilizer for wheat")
	require.NoError(t, err)
	assert.Equal(t, Bot, msg.Role)
	assert.True(t, msg.Formatted)
	assert.Equal(t, "Use **20** _kg_ per acre.", msg.Text)
	assert.Contains(t, src.prompt, "As an agricultural expert")
	assert.Contains(t, src.prompt, "fertilizer for wheat")
	assert.NotEmpty(t, msg.ID)
}

func TestAnswerFallback(t *testing.T) {
	src := &stubSource{err: fetch.Malformed("chat: missing candidates")}
	msg, err := Answer(context.Background(), src, "hello")
	assert.Error(t, err)
	assert.Equal(t, Fallback, msg.Text)
	assert.False(t, msg.Formatted)
}

func TestBuildPrompt(t *testing.T) {
	assert.True(t, strings.HasPrefix(BuildPrompt("Tell me a MAGIC story"), "Write a 3-paragraph story"))
	assert.Contains(t, BuildPrompt("  pest control  "), "advice about: pest control\n")
}

func TestEmphasize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"This is important.", "This is **important**."},
		{"Keep moisture at 60%", "Keep moisture at **60%**"},
		{"Apply 2.5 liters", "Apply **2.5** _liters_"},
		{"1. Apply 5 kg\n2. Wait", "1. Apply **5** _kg_\n2. Wait"},
		{"**Optimal 30%** yield at 30%", "**Optimal 30%** yield at **30%**"},
		{"html and H2O", "html and H2O"},
	}
	for _, tt := range tests {
		if got := Emphasize(tt.in); got != tt.want {
			t.Errorf("Emphasize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
