// Package tui is the terminal swipe front-end. It drives a running server over
// its HTTP API and follows the /ws event stream for transaction feedback.
package tui

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/service/eventstream"
	"CountrySwipe/internal/usecase"
)

// Stream is the live event feed. It may be nil, in which case the model polls only.
type Stream interface {
	Read(ctx context.Context) (<-chan eventstream.Frame, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
}

type Option func(*Model)

func WithStream(s Stream) Option {
	return func(m *Model) { m.stream = s }
}

// WithRefresh sets how often the deck, feedback and stats are re-read.
func WithRefresh(d time.Duration) Option {
	return func(m *Model) { m.refresh = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the bubbletea model of the swipe screen.
type Model struct {
	api     API
	stream  Stream
	ctx     context.Context
	timeout time.Duration
	refresh time.Duration
	badges  *country.Resolver

	view     usecase.DeckView
	feedback models.Feedback
	stats    models.Snapshot[models.PortfolioStats]
	last     *usecase.CommitResult
	err      string
	acting   bool
	live     bool
	width    int

	frames <-chan eventstream.Frame
	errs   <-chan error
}

func New(api API, opts ...Option) Model {
	m := Model{
		api:      api,
		ctx:      context.Background(),
		timeout:  10 * time.Second,
		refresh:  2 * time.Second,
		badges:   country.NewResolver(country.DisplayRules),
		feedback: models.Feedback{Kind: models.FeedbackNone},
		stats:    models.Snapshot[models.PortfolioStats]{Status: models.SnapshotPending},
		width:    80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchDeck(), m.fetchTx(), m.fetchStats(), m.tick()}
	if m.stream != nil {
		cmds = append(cmds, m.openStream())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case deckMsg:
		m.view = msg.view
		return m, nil

	case commitMsg:
		m.acting = false
		res := msg.res
		m.last = &res
		m.err = res.Error
		return m, tea.Batch(m.fetchDeck(), m.fetchTx())

	case amountMsg:
		m.view.Amount = msg.amount
		return m, nil

	case feedbackMsg:
		m.feedback = msg.fb
		return m, nil

	case statsMsg:
		m.stats = msg.snap
		return m, nil

	case errMsg:
		m.acting = false
		m.err = msg.err.Error()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tick(), m.fetchStats()}
		if !m.live {
			cmds = append(cmds, m.fetchDeck(), m.fetchTx())
		}
		return m, tea.Batch(cmds...)

	case streamReadyMsg:
		m.frames, m.errs = msg.frames, msg.errs
		m.live = true
		return m, m.nextFrame()

	case frameMsg:
		m = m.applyFrame(msg.frame)
		return m, m.nextFrame()

	case streamClosedMsg:
		m.live = false
		m.frames, m.errs = nil, nil
		return m, tea.Tick(m.refresh, func(time.Time) tea.Msg { return reconnectMsg{} })

	case reconnectMsg:
		return m, m.reconnect()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.stream != nil {
			_ = m.stream.Close()
		}
		return m, tea.Quit
	case "left", "h":
		return m.act(models.IntentShort)
	case "right", "l":
		return m.act(models.IntentLong)
	case "up", "k":
		return m.act(models.IntentSkip)
	case " ", "a":
		return m, m.call(func(ctx context.Context) tea.Msg {
			amount, err := m.api.CycleAmount(ctx)
			if err != nil {
				return errMsg{err}
			}
			return amountMsg{amount}
		})
	case "r":
		m.err = ""
		return m, m.call(func(ctx context.Context) tea.Msg {
			view, err := m.api.Reset(ctx)
			if err != nil {
				return errMsg{err}
			}
			return deckMsg{view}
		})
	case "f":
		label := m.view.Filter
		if label == "" && m.view.Current != nil {
			label = m.view.Current.Country
		}
		if label == "" {
			return m, nil
		}
		return m, m.call(func(ctx context.Context) tea.Msg {
			view, err := m.api.ToggleFilter(ctx, label)
			if err != nil {
				return errMsg{err}
			}
			return deckMsg{view}
		})
	case "d":
		m.err = ""
		return m, m.call(func(ctx context.Context) tea.Msg {
			fb, err := m.api.Dismiss(ctx)
			if err != nil {
				return errMsg{err}
			}
			return feedbackMsg{fb}
		})
	}
	return m, nil
}

// act sends one commit at a time; keys pressed while a card is leaving are dropped.
func (m Model) act(intent models.Intent) (tea.Model, tea.Cmd) {
	if m.acting || m.view.Current == nil {
		return m, nil
	}
	m.acting = true
	m.err = ""
	return m, m.call(func(ctx context.Context) tea.Msg {
		res, err := m.api.Act(ctx, intent)
		if err != nil {
			return errMsg{err}
		}
		return commitMsg{res}
	})
}

func (m Model) applyFrame(f eventstream.Frame) Model {
	switch f.Type {
	case models.EventTx:
		var fb models.Feedback
		if f.Decode(&fb) == nil {
			m.feedback = fb
		}
	case models.EventDeck:
		var view usecase.DeckView
		if f.Decode(&view) == nil {
			m.view = view
		}
	case models.EventPortfolio:
		var update struct {
			Query    string          `json:"query"`
			Snapshot json.RawMessage `json:"snapshot"`
		}
		if f.Decode(&update) != nil || update.Query != "stats" {
			return m
		}
		var snap models.Snapshot[models.PortfolioStats]
		if json.Unmarshal(update.Snapshot, &snap) == nil {
			m.stats = snap
		}
	}
	return m
}

func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	parent, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) fetchDeck() tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		view, err := m.api.Deck(ctx)
		if err != nil {
			return errMsg{err}
		}
		return deckMsg{view}
	})
}

func (m Model) fetchTx() tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		fb, err := m.api.Tx(ctx)
		if err != nil {
			return errMsg{err}
		}
		return feedbackMsg{fb}
	})
}

// fetchStats ignores errors; the header shows the last snapshot status instead.
func (m Model) fetchStats() tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		snap, err := m.api.Portfolio(ctx)
		if err != nil {
			return nil
		}
		return statsMsg{snap}
	})
}

func (m Model) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) openStream() tea.Cmd {
	stream, ctx := m.stream, m.ctx
	return func() tea.Msg {
		frames, errs := stream.Read(ctx)
		return streamReadyMsg{frames: frames, errs: errs}
	}
}

func (m Model) nextFrame() tea.Cmd {
	frames, errs := m.frames, m.errs
	return func() tea.Msg {
		select {
		case f, ok := <-frames:
			if !ok {
				return streamClosedMsg{err: <-errs}
			}
			return frameMsg{f}
		case err, ok := <-errs:
			if !ok {
				return streamClosedMsg{}
			}
			return streamClosedMsg{err: err}
		}
	}
}

func (m Model) reconnect() tea.Cmd {
	if m.stream == nil {
		return nil
	}
	stream, ctx := m.stream, m.ctx
	return func() tea.Msg {
		if err := stream.Reconnect(ctx); err != nil {
			return streamClosedMsg{err: err}
		}
		frames, errs := stream.Read(ctx)
		return streamReadyMsg{frames: frames, errs: errs}
	}
}
