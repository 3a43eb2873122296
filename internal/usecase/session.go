package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"CountrySwipe/internal/deck"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/service/ratelimit"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
)

// ErrNoCard is returned when an action needs a card but the deck is empty or exhausted.
var ErrNoCard = errors.New("no card to act on")

// DeckView is a read-only rendering of the deck and selector state.
type DeckView struct {
	Current   *models.NewsItem  `json:"current,omitempty"`
	Cursor    int               `json:"cursor"`
	Total     int               `json:"total"`
	Filter    string            `json:"filter,omitempty"`
	Countries []string          `json:"countries"`
	Exhausted bool              `json:"exhausted"`
	Amount    decimal.Decimal   `json:"amount"`
	Locked    bool              `json:"locked"`
	Drag      *gesture.Feedback `json:"drag,omitempty"`
}

// CommitResult describes a released or button-triggered intent.
type CommitResult struct {
	Intent  models.Intent        `json:"intent"`
	Card    *models.NewsItem     `json:"card,omitempty"`
	Trade   *models.TradeRequest `json:"trade,omitempty"`
	Error   string               `json:"error,omitempty"`
	Advance bool                 `json:"advanced"`
}

// Session is the single swipe session of the process.
type Session struct {
	id string

	mu      sync.Mutex
	deck    *deck.Deck
	deckGen uint64
	latest  []models.NewsItem

	mapper     *gesture.Mapper
	transition gesture.Transition
	amounts    *AmountSelector
	dispatcher *Dispatcher
	tracker    *txflow.Tracker
	news       repository.NewsSource
	bg         *Background

	throttle      *ratelimit.Limiter
	samplesPerSec float64

	events  emitter
	live    emitter
	metrics repository.Metrics
	log     *logger.Logger
}

type SessionOption func(*Session)

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// WithEventPublisher ships swipe, deck and tx events to pub.
func WithEventPublisher(pub repository.EventPublisher) SessionOption {
	return func(s *Session) { s.events.pub = pub }
}

// WithLivePublisher streams throttled drag feedback to pub.
func WithLivePublisher(pub repository.EventPublisher, limiter *ratelimit.Limiter, samplesPerSec float64) SessionOption {
	return func(s *Session) {
		s.live.pub = pub
		s.throttle = limiter
		s.samplesPerSec = samplesPerSec
	}
}

func WithDeck(d *deck.Deck) SessionOption {
	return func(s *Session) { s.deck = d }
}

func NewSession(
	news repository.NewsSource,
	mapper *gesture.Mapper,
	transition gesture.Transition,
	amounts *AmountSelector,
	dispatcher *Dispatcher,
	tracker *txflow.Tracker,
	bg *Background,
	metrics repository.Metrics,
	log *logger.Logger,
	opts ...SessionOption,
) *Session {
	s := &Session{
		id:         uuid.NewString(),
		mapper:     mapper,
		transition: transition,
		amounts:    amounts,
		dispatcher: dispatcher,
		tracker:    tracker,
		news:       news,
		bg:         bg,
		metrics:    metrics,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deck == nil {
		s.deck = deck.New()
	}
	if s.throttle == nil {
		s.throttle = ratelimit.New()
	}
	s.log = s.log.With(logger.String("session", s.id))
	s.events = emitter{sessionID: s.id, pub: s.events.pub, log: s.log, now: time.Now}
	s.live = emitter{sessionID: s.id, pub: s.live.pub, log: s.log, now: time.Now}

	tracker.Subscribe(func(st models.TxState) {
		s.events.emit(context.Background(), models.EventTx, st.Feedback())
		if st.Terminal() {
			s.log.Info("transaction resolved",
				logger.String("label", st.Label),
				logger.String("phase", string(st.Phase)),
				logger.String("reason", string(st.Reason)),
			)
		}
	})
	return s
}

func (s *Session) ID() string { return s.id }

// LoadFeed fetches news and replaces the deck contents.
func (s *Session) LoadFeed(ctx context.Context) (DeckView, error) {
	items, err := s.news.FetchNews(ctx)
	if err != nil {
		return DeckView{}, fmt.Errorf("load feed: %w", err)
	}

	s.mu.Lock()
	s.latest = items
	s.deck.Load(items)
	s.deckGen++
	view := s.viewLocked()
	s.mu.Unlock()

	s.log.Info("feed loaded", logger.Int("cards", len(items)))
	s.events.emit(ctx, models.EventDeck, view)
	return view, nil
}

// StoreFeed keeps a refreshed feed for the next Reset. The visible deck is not touched.
func (s *Session) StoreFeed(items []models.NewsItem) {
	s.mu.Lock()
	s.latest = items
	s.mu.Unlock()
}

// Reset rebuilds the deck from the latest fetched feed and clears the filter.
func (s *Session) Reset(ctx context.Context) DeckView {
	s.mu.Lock()
	s.deck.Load(s.latest)
	s.deck.SetFilter("")
	s.deckGen++
	s.mapper.Cancel()
	view := s.viewLocked()
	s.mu.Unlock()

	s.events.emit(ctx, models.EventDeck, view)
	return view
}

// SetFilter narrows the deck to one country label; an empty label clears it.
func (s *Session) SetFilter(ctx context.Context, label string) DeckView {
	return s.mutateDeck(ctx, func(d *deck.Deck) { d.SetFilter(label) })
}

// ToggleFilter selects label, or clears the filter when label is already active.
func (s *Session) ToggleFilter(ctx context.Context, label string) DeckView {
	return s.mutateDeck(ctx, func(d *deck.Deck) { d.ToggleFilter(label) })
}

func (s *Session) mutateDeck(ctx context.Context, fn func(*deck.Deck)) DeckView {
	s.mu.Lock()
	fn(s.deck)
	s.deckGen++
	view := s.viewLocked()
	s.mu.Unlock()

	s.events.emit(ctx, models.EventDeck, view)
	return view
}

// Current returns the top card.
func (s *Session) Current() (models.NewsItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.deck.Current()
	if !ok {
		return models.NewsItem{}, false
	}
	return *item, true
}

func (s *Session) Countries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Countries()
}

func (s *Session) View() DeckView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() DeckView {
	cursor, total := s.deck.Position()
	v := DeckView{
		Cursor:    cursor,
		Total:     total,
		Filter:    s.deck.Filter(),
		Countries: s.deck.Countries(),
		Exhausted: s.deck.Exhausted(),
		Amount:    s.amounts.Current(),
		Locked:    s.mapper.Locked(),
	}
	if item, ok := s.deck.Current(); ok {
		cp := *item
		v.Current = &cp
	}
	if fb, ok := s.mapper.Dragging(); ok {
		v.Drag = &fb
	}
	return v
}

// Press starts a drag on the top card.
func (s *Session) Press(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deck.Current(); !ok {
		return ErrNoCard
	}
	return s.mapper.Press(x, y)
}

// Move records a drag sample. Live feedback is streamed at most samplesPerSec times a second.
func (s *Session) Move(ctx context.Context, x, y float64) (gesture.Feedback, error) {
	fb, err := s.mapper.Move(x, y)
	if err != nil {
		return fb, err
	}
	if s.throttle.Allow(s.id, 1, s.samplesPerSec) {
		s.live.emit(ctx, models.EventDrag, fb)
	}
	return fb, nil
}

// Release ends the drag and, for committing intents, plays the exit transition,
// starts the trade and advances the deck.
func (s *Session) Release(ctx context.Context) (CommitResult, error) {
	s.mu.Lock()
	intent, err := s.mapper.Release()
	if err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	return s.commitLocked(ctx, intent)
}

// Act commits a button-triggered intent through the same path as a release.
func (s *Session) Act(ctx context.Context, intent models.Intent) (CommitResult, error) {
	s.mu.Lock()
	if _, ok := s.deck.Current(); !ok && intent.Commits() {
		s.mu.Unlock()
		return CommitResult{}, ErrNoCard
	}
	if err := s.mapper.Commit(intent); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	return s.commitLocked(ctx, intent)
}

// commitLocked is entered with s.mu held and the mapper committed for intent.
func (s *Session) commitLocked(ctx context.Context, intent models.Intent) (CommitResult, error) {
	res := CommitResult{Intent: intent}
	if !intent.Commits() {
		s.mu.Unlock()
		return res, nil
	}

	item, ok := s.deck.Current()
	if !ok {
		s.mapper.Unlock()
		s.mu.Unlock()
		return res, ErrNoCard
	}
	card := *item
	res.Card = &card

	dir, trades := intent.Direction()
	var (
		req         models.TradeRequest
		prepErr     error
		reservation *txflow.Reservation
	)
	if trades {
		r, err := s.tracker.Reserve()
		if err != nil {
			// snap back; the card stays on top
			s.mapper.Unlock()
			s.mu.Unlock()
			return CommitResult{Intent: models.IntentNone}, err
		}
		req, prepErr = s.dispatcher.Prepare(dir, card, s.amounts.Current())
		if prepErr == nil {
			res.Trade = &req
			reservation = r
		} else {
			res.Error = prepErr.Error()
			r.Release()
		}
	}
	gen := s.deckGen
	s.mu.Unlock()

	s.metrics.RecordSwipe(string(intent))
	s.events.emit(ctx, models.EventSwipe, res)

	if err := s.transition.Play(ctx, intent); err != nil {
		s.log.Debug("exit transition interrupted", logger.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if reservation != nil {
		s.bg.Go(func(ctx context.Context) {
			if _, err := s.dispatcher.ExecuteReserved(ctx, reservation, req); err != nil {
				s.log.Warn("trade not tracked", logger.String("news_id", req.NewsID), logger.Error(err))
			}
		})
	}
	if gen == s.deckGen {
		s.deck.Advance()
		s.deckGen++
		res.Advance = true
	}
	s.mapper.Unlock()
	return res, nil
}

// CycleAmount moves the stake selector to its next preset.
func (s *Session) CycleAmount() decimal.Decimal {
	return s.amounts.Cycle()
}

func (s *Session) Amount() decimal.Decimal {
	return s.amounts.Current()
}

// Feedback renders the current transaction state.
func (s *Session) Feedback() models.Feedback {
	return s.tracker.State().Feedback()
}

// DismissFeedback is the explicit user reset of the transaction feedback.
func (s *Session) DismissFeedback() {
	s.tracker.Reset()
}

// Wait blocks until every dispatched trade has resolved.
func (s *Session) Wait() {
	s.bg.Wait()
}
