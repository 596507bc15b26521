// Package task tracks the single in-flight request a page is allowed to have.
package task

import (
	"context"
	"sync"
)

// Tracker hands out request contexts. Starting a new request cancels the
// previous one so a superseded fetch cannot finish its work.
type Tracker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// Start cancels any running request and returns a context for the next one.
func (t *Tracker) Start(parent context.Context) context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	return ctx
}

// Stop cancels the running request, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
