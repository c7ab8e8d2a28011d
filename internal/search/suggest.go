package search

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ilanhub/internal/domain"
)

// DefaultDebounce is how long input must pause before a fetch fires.
const DefaultDebounce = 300 * time.Millisecond

// minQueryLen is the shortest query that triggers suggestions.
const minQueryLen = 2

// SuggestFetcher produces suggestions for a partial query.
type SuggestFetcher interface {
	Suggest(ctx context.Context, query string) ([]domain.SearchSuggestion, error)
}

// SuggestState is a point-in-time snapshot of the box.
type SuggestState struct {
	Query       string
	Open        bool
	Pending     bool
	Highlight   int // -1 = none highlighted
	Suggestions []domain.SearchSuggestion
}

// SuggestBox turns raw keystroke input into debounced suggestion
// queries and manages the selectable dropdown.
//
// Every keystroke supersedes any armed debounce timer; only the timer
// that runs to completion unsuperseded issues a fetch. Responses carry
// the generation they were issued for and are discarded when a newer
// keystroke has bumped the generation, so a slow response can never
// overwrite state produced by later input.
type SuggestBox struct {
	fetcher  SuggestFetcher
	onCommit func(query string)
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	query     string
	items     []domain.SearchSuggestion
	highlight int
	open      bool
	pending   bool
	torn      bool
}

// NewSuggestBox builds a box around a fetcher and a commit handler.
// A zero debounce means DefaultDebounce.
func NewSuggestBox(f SuggestFetcher, onCommit func(query string), debounce time.Duration) *SuggestBox {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SuggestBox{
		fetcher:   f,
		onCommit:  onCommit,
		debounce:  debounce,
		highlight: -1,
	}
}

// Input records a keystroke. It cancels any armed timer and, when the
// query is long enough, arms a fresh one. Queries shorter than two
// characters drop straight back to idle and invalidate anything still
// in flight.
func (b *SuggestBox) Input(ctx context.Context, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.torn {
		return
	}
	b.query = text
	b.gen++
	b.stopTimerLocked()

	if len([]rune(text)) < minQueryLen {
		b.pending = false
		b.open = false
		b.items = nil
		b.highlight = -1
		return
	}

	g := b.gen
	b.pending = true
	b.timer = time.AfterFunc(b.debounce, func() { b.fire(ctx, g, text) })
}

func (b *SuggestBox) fire(ctx context.Context, gen uint64, query string) {
	b.mu.Lock()
	if b.torn || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	items, err := b.fetcher.Suggest(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.torn || gen != b.gen {
		return // superseded while in flight
	}
	b.pending = false
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("suggestion fetch failed")
		b.open = false
		b.items = nil
		b.highlight = -1
		return
	}
	b.items = items
	b.highlight = -1
	b.open = len(items) > 0
}

// MoveDown moves the highlight toward the last suggestion, clamped.
func (b *SuggestBox) MoveDown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	if b.highlight < len(b.items)-1 {
		b.highlight++
	}
}

// MoveUp moves the highlight toward -1 (none), clamped. No wraparound.
func (b *SuggestBox) MoveUp() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	if b.highlight > -1 {
		b.highlight--
	}
}

// Enter commits the highlighted suggestion when one is highlighted,
// otherwise the raw current text.
func (b *SuggestBox) Enter() {
	b.mu.Lock()
	text := b.query
	if b.open && b.highlight >= 0 && b.highlight < len(b.items) {
		text = b.items[b.highlight].Text
	}
	cb := b.commitLocked(text)
	b.mu.Unlock()
	if cb != nil {
		cb(text)
	}
}

// Select commits the suggestion at index i (pointer selection).
func (b *SuggestBox) Select(i int) {
	b.mu.Lock()
	if !b.open || i < 0 || i >= len(b.items) {
		b.mu.Unlock()
		return
	}
	text := b.items[i].Text
	cb := b.commitLocked(text)
	b.mu.Unlock()
	if cb != nil {
		cb(text)
	}
}

// commitLocked sets the input to the committed text, closes the
// dropdown, and makes the interaction terminal: no further suggestions
// until the next keystroke.
func (b *SuggestBox) commitLocked(text string) func(string) {
	b.query = text
	b.open = false
	b.pending = false
	b.items = nil
	b.highlight = -1
	b.gen++
	b.stopTimerLocked()
	return b.onCommit
}

// Escape closes the dropdown and clears the highlight. The input text
// is left untouched.
func (b *SuggestBox) Escape() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.highlight = -1
}

// DismissOutside handles a pointer-down outside the widget: the
// dropdown closes, the current input text is preserved.
func (b *SuggestBox) DismissOutside() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.highlight = -1
}

// Close tears the box down: the pending timer is cancelled and any
// late response is dropped. In-flight requests are not interrupted,
// their results are simply never applied.
func (b *SuggestBox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.torn = true
	b.gen++
	b.stopTimerLocked()
	b.pending = false
	b.open = false
}

// Snapshot returns the current state. The suggestion slice is copied.
func (b *SuggestBox) Snapshot() SuggestState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := SuggestState{
		Query:     b.query,
		Open:      b.open,
		Pending:   b.pending,
		Highlight: b.highlight,
	}
	if len(b.items) > 0 {
		s.Suggestions = make([]domain.SearchSuggestion, len(b.items))
		copy(s.Suggestions, b.items)
	}
	return s
}

func (b *SuggestBox) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
