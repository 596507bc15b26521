// Package page holds the per-page view state as an immutable value. Every
// transition returns a new Store; the TUI keeps the latest one.
package page

import (
	"context"
	"errors"

	"github.com/Godzilla108108/agritech/internal/filter"
)

// Phase is the fetch lifecycle of one page.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Error
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "idle"
}

// Conn reflects the outcome of the most recent fetch.
type Conn int

const (
	Online Conn = iota
	Offline
)

func (c Conn) String() string {
	if c == Offline {
		return "offline"
	}
	return "online"
}

// Store is the state of a list page: the full record set, the visible
// subset, the active criteria and the fetch phase.
type Store[T any] struct {
	All      []T
	Visible  []T
	Criteria filter.Criteria
	Phase    Phase
	Err      error
	Conn     Conn
	// Loaded is true once any data, cached or fetched, has been present.
	Loaded bool

	seq   uint64
	spec  filter.Spec[T]
	extra []filter.Predicate[T]
}

// New builds a Store seeded from cached records. A nil cache leaves the
// page unloaded.
func New[T any](spec filter.Spec[T], cached []T) Store[T] {
	s := Store[T]{spec: spec}
	if cached != nil {
		s.All = cached
		s.Loaded = true
	}
	return s.refilter()
}

// Begin moves the page to Loading and returns the sequence number the
// matching Resolve must carry. Any earlier in-flight request becomes stale.
func (s Store[T]) Begin() (Store[T], uint64) {
	s.seq++
	s.Phase = Loading
	s.Err = nil
	return s, s.seq
}

// Busy reports whether a request is in flight.
func (s Store[T]) Busy() bool {
	return s.Phase == Loading
}

// Seq is the sequence number of the most recent Begin.
func (s Store[T]) Seq() uint64 {
	return s.seq
}

// Resolve applies the outcome of request seq. Results for any other
// sequence number are dropped and ok is false. A failure keeps the
// previous record set.
func (s Store[T]) Resolve(seq uint64, records []T, err error) (Store[T], bool) {
	if seq != s.seq || s.Phase != Loading {
		return s, false
	}
	switch {
	case errors.Is(err, context.Canceled):
		s.Phase = s.settled()
	case err != nil:
		s.Phase = Error
		s.Err = err
		s.Conn = Offline
	default:
		s.Phase = Ready
		s.Err = nil
		s.Conn = Online
		s.All = records
		s.Loaded = true
		s = s.refilter()
	}
	return s, true
}

// SetCriteria changes the search text or category and refilters.
func (s Store[T]) SetCriteria(c filter.Criteria) Store[T] {
	s.Criteria = c
	return s.refilter()
}

// SetSearch is SetCriteria for the search text alone.
func (s Store[T]) SetSearch(text string) Store[T] {
	s.Criteria.Search = text
	return s.refilter()
}

// SetCategory is SetCriteria for the category alone.
func (s Store[T]) SetCategory(category string) Store[T] {
	s.Criteria.Category = category
	return s.refilter()
}

// SetAll replaces the record set outside of a fetch, e.g. a local edit.
func (s Store[T]) SetAll(records []T) Store[T] {
	s.All = records
	s.Loaded = true
	return s.refilter()
}

// WithPredicates replaces the extra predicates ANDed into the filter.
func (s Store[T]) WithPredicates(extra ...filter.Predicate[T]) Store[T] {
	s.extra = extra
	return s.refilter()
}

func (s Store[T]) settled() Phase {
	if s.Loaded {
		return Ready
	}
	return Idle
}

func (s Store[T]) refilter() Store[T] {
	s.Visible = filter.Apply(s.All, s.Criteria, s.spec, s.extra...)
	return s
}

// EmptyTexts are a page's two empty-state messages.
type EmptyTexts struct {
	// NeverLoaded is shown when no data has been loaded yet.
	NeverLoaded string
	// NoMatch is shown when data exists but the filter hides all of it.
	NoMatch string
}

// EmptyMessage returns the empty-state text for s, or "" when something is visible.
func EmptyMessage[T any](s Store[T], t EmptyTexts) string {
	if len(s.Visible) > 0 {
		return ""
	}
	if !s.Loaded || len(s.All) == 0 {
		return t.NeverLoaded
	}
	return t.NoMatch
}
