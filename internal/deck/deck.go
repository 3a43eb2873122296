// Package deck holds the shuffled, optionally filtered, card sequence.
package deck

import (
	"math/rand/v2"
	"strings"

	"CountrySwipe/internal/domain/models"
)

// Deck is not safe for concurrent use.
type Deck struct {
	rng      *rand.Rand
	source   []*models.NewsItem
	shuffled []*models.NewsItem
	view     []*models.NewsItem
	filter   string
	cursor   int
}

type Option func(*Deck)

// WithRand fixes the shuffle source, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(d *Deck) { d.rng = r }
}

func New(opts ...Option) *Deck {
	d := &Deck{}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Load replaces the source list, reshuffles it and rewinds the cursor.
// The active filter is kept.
func (d *Deck) Load(items []models.NewsItem) {
	d.source = make([]*models.NewsItem, len(items))
	for i := range items {
		item := items[i]
		d.source[i] = &item
	}
	d.shuffle()
}

// Reset reshuffles the loaded source, clears the filter and rewinds the cursor.
func (d *Deck) Reset() {
	d.filter = ""
	d.shuffle()
}

func (d *Deck) shuffle() {
	d.shuffled = make([]*models.NewsItem, len(d.source))
	copy(d.shuffled, d.source)
	d.rng.Shuffle(len(d.shuffled), func(i, j int) {
		d.shuffled[i], d.shuffled[j] = d.shuffled[j], d.shuffled[i]
	})
	d.rebuild()
}

// SetFilter narrows the view to items whose country equals label exactly.
// An empty label clears the filter. The cursor always rewinds.
func (d *Deck) SetFilter(label string) {
	d.filter = label
	d.rebuild()
}

// ToggleFilter selects label, or clears the filter when label is already active.
func (d *Deck) ToggleFilter(label string) {
	if label == d.filter {
		label = ""
	}
	d.SetFilter(label)
}

func (d *Deck) Filter() string {
	return d.filter
}

func (d *Deck) rebuild() {
	d.cursor = 0
	if d.filter == "" {
		d.view = d.shuffled
		return
	}
	view := make([]*models.NewsItem, 0, len(d.shuffled))
	for _, item := range d.shuffled {
		if item.Country == d.filter {
			view = append(view, item)
		}
	}
	d.view = view
}

// Current returns the item under the cursor. The pointer is stable until Advance.
func (d *Deck) Current() (*models.NewsItem, bool) {
	if d.cursor >= len(d.view) {
		return nil, false
	}
	return d.view[d.cursor], true
}

// Advance moves past the current item. It never wraps.
func (d *Deck) Advance() {
	if d.cursor < len(d.view) {
		d.cursor++
	}
}

func (d *Deck) Exhausted() bool {
	return d.cursor >= len(d.view)
}

// Position returns the cursor and the size of the filtered view.
func (d *Deck) Position() (cursor, total int) {
	return d.cursor, len(d.view)
}

// Countries lists distinct non-blank country labels in source order.
func (d *Deck) Countries() []string {
	seen := make(map[string]struct{}, len(d.source))
	out := make([]string, 0, len(d.source))
	for _, item := range d.source {
		if strings.TrimSpace(item.Country) == "" {
			continue
		}
		if _, ok := seen[item.Country]; ok {
			continue
		}
		seen[item.Country] = struct{}{}
		out = append(out, item.Country)
	}
	return out
}

// Len is the size of the loaded source.
func (d *Deck) Len() int {
	return len(d.source)
}
