package chat

import (
	"encoding/json"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

// Request is the generateContent request body.
type Request struct {
	Contents []Content `json:"contents"`
}

// Response is the generateContent response body.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content Content `json:"content"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// NewRequest wraps prompt as a single user turn.
func NewRequest(prompt string) Request {
	return Request{Contents: []Content{{Parts: []Part{{Text: prompt}}}}}
}

// Prompt returns the first text part, or "" if there is none.
func (r Request) Prompt() string {
	if len(r.Contents) == 0 || len(r.Contents[0].Parts) == 0 {
		return ""
	}
	return r.Contents[0].Parts[0].Text
}

// NewResponse wraps text as a single model candidate.
func NewResponse(text string) Response {
	return Response{Candidates: []Candidate{{Content: Content{Role: "model", Parts: []Part{{Text: text}}}}}}
}

// Text returns candidates[0].content.parts[0].text.
func (r Response) Text() (string, error) {
	if len(r.Candidates) == 0 {
		return "", fetch.Malformed("chat: missing candidates")
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", fetch.Malformed("chat: missing candidates[0].content.parts[0].text")
	}
	return parts[0].Text, nil
}

// Decode extracts the answer text from a raw response body.
func Decode(body []byte) (string, error) {
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fetch.ErrMalformedResponse{Err: err}
	}
	return r.Text()
}
