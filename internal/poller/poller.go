// Package poller refreshes read models on independent tickers.
package poller

import (
	"context"
	"sync"
	"time"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/logger"
)

// FetchFunc performs one full read.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller owns one query: its ticker, its cancel func and its latest snapshot.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	enabled  func() bool
	metrics  repository.Metrics
	log      *logger.Logger
	now      func() time.Time
	onUpdate []func(models.Snapshot[T])

	mu      sync.Mutex
	latest  models.Snapshot[T]
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

type Option[T any] func(*Poller[T])

// WithEnabled gates every tick. Disabled ticks skip the fetch and clear the snapshot.
func WithEnabled[T any](fn func() bool) Option[T] {
	return func(p *Poller[T]) { p.enabled = fn }
}

func WithMetrics[T any](m repository.Metrics) Option[T] {
	return func(p *Poller[T]) { p.metrics = m }
}

func WithLogger[T any](l *logger.Logger) Option[T] {
	return func(p *Poller[T]) { p.log = l }
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(p *Poller[T]) { p.now = now }
}

// OnUpdate registers fn for every new snapshot.
func OnUpdate[T any](fn func(models.Snapshot[T])) Option[T] {
	return func(p *Poller[T]) { p.onUpdate = append(p.onUpdate, fn) }
}

func New[T any](name string, interval time.Duration, fetch FetchFunc[T], opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		enabled:  func() bool { return true },
		log:      logger.Nop(),
		now:      time.Now,
		latest:   models.Snapshot[T]{Status: models.SnapshotPending},
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.String("query", name))
	return p
}

func (p *Poller[T]) Name() string { return p.name }

// Latest returns the most recent snapshot.
func (p *Poller[T]) Latest() models.Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Start polls immediately and then on every tick until Stop or ctx ends.
// Calling Start on a running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.loop(ctx, done)
}

// Stop cancels the loop and waits for an in-flight fetch to return.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger requests an out-of-band poll. It never blocks.
func (p *Poller[T]) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Refresh runs one poll synchronously and returns the resulting snapshot.
func (p *Poller[T]) Refresh(ctx context.Context) models.Snapshot[T] {
	if !p.enabled() {
		return p.clear()
	}

	start := p.now()
	v, err := p.fetch(ctx)
	if p.metrics != nil {
		p.metrics.RecordLatency("poll_"+p.name, p.now().Sub(start).Seconds())
	}

	if err != nil && ctx.Err() != nil {
		// stopped mid-fetch; leave the snapshot as it was
		p.log.Debug("poll canceled", logger.Error(err))
		return p.Latest()
	}

	p.mu.Lock()
	if err != nil {
		// keep the last good value; the status marks it as failed
		p.latest.Status = models.SnapshotFailure
		p.latest.Error = err.Error()
	} else {
		p.latest = models.Snapshot[T]{Value: v, Status: models.SnapshotSuccess, FetchedAt: p.now()}
	}
	snap := p.latest
	p.mu.Unlock()

	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordPollError(p.name)
		}
		p.log.Warn("poll failed", logger.Error(err))
	}
	p.publish(snap)
	return snap
}

func (p *Poller[T]) clear() models.Snapshot[T] {
	p.mu.Lock()
	changed := p.latest.Status != models.SnapshotPending
	p.latest = models.Snapshot[T]{Status: models.SnapshotPending}
	snap := p.latest
	p.mu.Unlock()

	if changed {
		p.publish(snap)
	}
	return snap
}

// Subscribe registers fn for every new snapshot after construction.
func (p *Poller[T]) Subscribe(fn func(models.Snapshot[T])) {
	p.mu.Lock()
	p.onUpdate = append(p.onUpdate, fn)
	p.mu.Unlock()
}

func (p *Poller[T]) publish(s models.Snapshot[T]) {
	p.mu.Lock()
	listeners := p.onUpdate
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (p *Poller[T]) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.trigger:
		}
		p.Refresh(ctx)
	}
}

// Runner starts and stops a set of pollers together.
type Runner interface {
	Start(ctx context.Context)
	Stop()
	Trigger()
	Name() string
}

// Group is a set of independently ticking pollers.
type Group []Runner

func (g Group) Start(ctx context.Context) {
	for _, r := range g {
		r.Start(ctx)
	}
}

func (g Group) Stop() {
	for _, r := range g {
		r.Stop()
	}
}

// Trigger requests an immediate poll from every member.
func (g Group) Trigger() {
	for _, r := range g {
		r.Trigger()
	}
}
