package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/units"
)

var (
	ErrInvalidAmount          = errors.New("invalid trade amount")
	ErrUnresolvedCountry      = errors.New("news country does not map to a tradable index")
	ErrInsufficientCollateral = errors.New("stake exceeds protocol collateral")
)

// StatsSource returns the latest portfolio stats snapshot.
type StatsSource func() models.Snapshot[models.PortfolioStats]

// Dispatcher turns a committed Long/Short on a news card into an open-position transaction.
type Dispatcher struct {
	resolver *country.Resolver
	gateway  repository.TradeGateway
	tracker  *txflow.Tracker
	metrics  repository.Metrics
	log      *logger.Logger
	events   emitter

	prevalidate bool
	stats       StatsSource
	maxAge      time.Duration
	now         func() time.Time
}

type DispatcherOption func(*Dispatcher)

// WithPrevalidation rejects stakes above the protocol collateral in a snapshot
// no older than maxAge. Stale or missing snapshots skip the check.
func WithPrevalidation(stats StatsSource, maxAge time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.prevalidate = stats != nil
		d.stats = stats
		d.maxAge = maxAge
	}
}

// WithEvents publishes trade.submitted events for sessionID.
func WithEvents(pub repository.EventPublisher, sessionID string) DispatcherOption {
	return func(d *Dispatcher) {
		d.events.pub = pub
		d.events.sessionID = sessionID
	}
}

func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(
	resolver *country.Resolver,
	gateway repository.TradeGateway,
	tracker *txflow.Tracker,
	metrics repository.Metrics,
	log *logger.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		gateway:  gateway,
		tracker:  tracker,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.events.log = log
	d.events.now = d.now
	return d
}

// Prepare validates the stake, resolves the card's country and checks collateral.
// It performs no external call.
func (d *Dispatcher) Prepare(dir models.Direction, item models.NewsItem, stake decimal.Decimal) (models.TradeRequest, error) {
	if !stake.IsPositive() {
		d.metrics.RecordDispatch(string(dir), "invalid_amount")
		return models.TradeRequest{}, fmt.Errorf("%w: %s", ErrInvalidAmount, stake)
	}
	if _, err := units.ToBase(stake); err != nil {
		d.metrics.RecordDispatch(string(dir), "invalid_amount")
		return models.TradeRequest{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	m, ok := d.resolver.Match(item.Country)
	if !ok {
		d.metrics.RecordUnresolvedCountry(item.Country)
		d.metrics.RecordDispatch(string(dir), "unresolved")
		d.log.Warn("country not tradable, trade skipped",
			logger.String("news_id", item.ID),
			logger.String("country", item.Country),
		)
		return models.TradeRequest{}, fmt.Errorf("%w: %q", ErrUnresolvedCountry, item.Country)
	}
	if m.Weak {
		d.log.Debug("country matched by short keyword",
			logger.String("country", item.Country),
			logger.String("keyword", m.Keyword),
			logger.String("code", string(m.Code)),
		)
	}

	if d.prevalidate {
		snap := d.stats()
		if snap.Fresh(d.now(), d.maxAge) && stake.GreaterThan(snap.Value.ProtocolCollateral) {
			d.metrics.RecordDispatch(string(dir), "insufficient_collateral")
			return models.TradeRequest{}, fmt.Errorf("%w: stake %s, collateral %s",
				ErrInsufficientCollateral, stake, snap.Value.ProtocolCollateral)
		}
	}

	return models.TradeRequest{
		Direction: dir,
		Code:      m.Code,
		Stake:     stake,
		NewsID:    item.ID,
		Country:   item.Country,
	}, nil
}

type trackFunc func(ctx context.Context, label string, sign txflow.SignFunc) (models.TxState, error)

// Execute signs and tracks the open-position transaction until it resolves.
func (d *Dispatcher) Execute(ctx context.Context, req models.TradeRequest) (models.TxState, error) {
	return d.execute(ctx, req, d.tracker.Track)
}

// ExecuteReserved is Execute on a tracker reservation taken when the intent was committed.
// The reservation is released if the trade never reaches signing.
func (d *Dispatcher) ExecuteReserved(ctx context.Context, r *txflow.Reservation, req models.TradeRequest) (models.TxState, error) {
	defer r.Release()
	return d.execute(ctx, req, r.Track)
}

func (d *Dispatcher) execute(ctx context.Context, req models.TradeRequest, track trackFunc) (models.TxState, error) {
	amount, err := units.ToBase(req.Stake)
	if err != nil {
		return models.TxState{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	start := d.now()
	label := fmt.Sprintf("Opening %s %s...", req.Direction, req.Code)
	state, err := track(ctx, label, func(ctx context.Context, _ func(string)) (models.TxRef, error) {
		ref, err := d.gateway.OpenPosition(ctx, req.Direction, req.Code, amount)
		if err == nil {
			d.events.emit(ctx, models.EventTradeQueued, struct {
				models.TradeRequest
				TxRef models.TxRef `json:"tx_ref"`
			}{req, ref})
		}
		return ref, err
	})
	if err != nil {
		d.metrics.RecordDispatch(string(req.Direction), outcomeOf(err))
		return state, err
	}

	d.metrics.RecordDispatch(string(req.Direction), string(state.Phase))
	d.metrics.RecordTxOutcome("open_"+string(req.Direction), string(state.Phase), string(state.Reason))
	d.metrics.RecordLatency("dispatch", d.now().Sub(start).Seconds())
	return state, nil
}

// Submit is Prepare followed by Execute.
func (d *Dispatcher) Submit(ctx context.Context, dir models.Direction, item models.NewsItem, stake decimal.Decimal) (models.TxState, error) {
	req, err := d.Prepare(dir, item, stake)
	if err != nil {
		return models.TxState{}, err
	}
	return d.Execute(ctx, req)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, txflow.ErrBusy):
		return "busy"
	case errors.Is(err, txflow.ErrStale):
		return "superseded"
	}
	return "error"
}
