// Package txflow tracks one user-initiated transaction at a time from signing to confirmation.
package txflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/logger"
)

var (
	// ErrBusy is returned when an action is started while another is still in flight.
	ErrBusy = errors.New("txflow: another transaction is in flight")
	// ErrStale is returned when the action was superseded by a reset before it resolved.
	ErrStale = errors.New("txflow: action superseded")
)

// SignFunc asks the wallet to sign and broadcast, returning the submitted transaction.
// Multi-step actions may call note to update the loading label between steps.
type SignFunc func(ctx context.Context, note func(label string)) (models.TxRef, error)

// Listener observes every applied transition.
type Listener func(models.TxState)

type Tracker struct {
	mu        sync.Mutex
	state     models.TxState
	gen       uint64
	reserved  bool
	listeners []Listener

	confirmer      repository.Confirmer
	signTimeout    time.Duration
	confirmTimeout time.Duration
	log            *logger.Logger
	now            func() time.Time
}

type Option func(*Tracker)

func WithTimeouts(sign, confirm time.Duration) Option {
	return func(t *Tracker) {
		t.signTimeout = sign
		t.confirmTimeout = confirm
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(confirmer repository.Confirmer, opts ...Option) *Tracker {
	t := &Tracker{
		confirmer:      confirmer,
		signTimeout:    2 * time.Minute,
		confirmTimeout: 3 * time.Minute,
		log:            logger.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state = models.TxState{Phase: models.TxIdle, UpdatedAt: t.now()}
	return t
}

// Subscribe registers l for all future transitions.
func (t *Tracker) Subscribe(l Listener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, l)
	t.mu.Unlock()
}

func (t *Tracker) State() models.TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Busy reports whether an action is reserved, signing or awaiting confirmation.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busyLocked()
}

func (t *Tracker) busyLocked() bool {
	return t.reserved || t.state.InFlight()
}

// Reservation holds the tracker for one action that has not started signing yet.
// Exactly one of Track or Release must be called on it.
type Reservation struct {
	t    *Tracker
	done bool
}

// Reserve claims the tracker so no other action can start until the reservation
// is tracked or released.
func (t *Tracker) Reserve() (*Reservation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busyLocked() {
		return nil, ErrBusy
	}
	t.reserved = true
	return &Reservation{t: t}, nil
}

// Track runs the reserved action. See Tracker.Track.
func (r *Reservation) Track(ctx context.Context, label string, sign SignFunc) (models.TxState, error) {
	t := r.t
	t.mu.Lock()
	if r.done {
		t.mu.Unlock()
		return models.TxState{}, ErrBusy
	}
	r.done = true
	t.reserved = false
	return t.startLocked(ctx, label, sign)
}

// Release gives the tracker back without running an action. It is a no-op after Track.
func (r *Reservation) Release() {
	if r == nil {
		return
	}
	r.t.mu.Lock()
	if !r.done {
		r.done = true
		r.t.reserved = false
	}
	r.t.mu.Unlock()
}

// Reset is the explicit user dismissal. Any in-flight result is discarded when it arrives.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.gen++
	changed := t.state.Phase != models.TxIdle
	t.state = models.TxState{Phase: models.TxIdle, UpdatedAt: t.now()}
	state, listeners := t.state, t.listeners
	t.mu.Unlock()

	if changed {
		notify(listeners, state)
	}
}

// Track runs one action through Signing, Submitted and Confirmed or Failed.
// It blocks until the action resolves and returns the final state. A failed
// action is reported in the state, not as an error; errors are reserved for
// ErrBusy and ErrStale.
func (t *Tracker) Track(ctx context.Context, label string, sign SignFunc) (models.TxState, error) {
	t.mu.Lock()
	if t.busyLocked() {
		t.mu.Unlock()
		return models.TxState{}, ErrBusy
	}
	return t.startLocked(ctx, label, sign)
}

// startLocked is entered with t.mu held and releases it.
func (t *Tracker) startLocked(ctx context.Context, label string, sign SignFunc) (models.TxState, error) {
	if t.state.InFlight() {
		t.mu.Unlock()
		return models.TxState{}, ErrBusy
	}
	t.gen++
	ticket := t.gen
	prev := t.state.Phase
	t.state = models.TxState{Phase: models.TxSigning, Label: label, UpdatedAt: t.now()}
	signing, listeners := t.state, t.listeners
	t.mu.Unlock()

	if prev != models.TxIdle {
		notify(listeners, models.TxState{Phase: models.TxIdle, UpdatedAt: signing.UpdatedAt})
	}
	notify(listeners, signing)

	signCtx, cancel := context.WithTimeout(ctx, t.signTimeout)
	ref, err := sign(signCtx, func(l string) { t.note(ticket, l) })
	cancel()
	if err != nil {
		return t.fail(ticket, label, err)
	}

	if !t.apply(ticket, models.TxState{Phase: models.TxSubmitted, Label: label, TxRef: ref}) {
		return t.stale(ref)
	}
	t.log.Info("transaction submitted", logger.String("label", label), logger.String("tx", string(ref)))

	return t.await(ctx, ticket, label, ref)
}

// await waits for ref under the confirmation timeout and applies the outcome.
func (t *Tracker) await(ctx context.Context, ticket uint64, label string, ref models.TxRef) (models.TxState, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, t.confirmTimeout)
	err := t.confirmer.WaitConfirmed(confirmCtx, ref)
	cancel()
	if err != nil {
		return t.fail(ticket, label, fmt.Errorf("confirm %s: %w", ref, err))
	}

	if !t.apply(ticket, models.TxState{Phase: models.TxConfirmed, Label: label, TxRef: ref, Message: "Transaction confirmed."}) {
		return t.stale(ref)
	}
	return t.State(), nil
}

// note updates the loading label of an in-flight action, e.g. between approve and deposit.
func (t *Tracker) note(ticket uint64, label string) {
	t.mu.Lock()
	if ticket != t.gen || !t.state.InFlight() {
		t.mu.Unlock()
		return
	}
	t.state.Label = label
	t.state.UpdatedAt = t.now()
	state, listeners := t.state, t.listeners
	t.mu.Unlock()

	notify(listeners, state)
}

func (t *Tracker) fail(ticket uint64, label string, err error) (models.TxState, error) {
	reason, msg := Classify(err)
	if !t.apply(ticket, models.TxState{Phase: models.TxFailed, Label: label, Reason: reason, Message: msg}) {
		return t.stale("")
	}
	t.log.Warn("transaction failed",
		logger.String("label", label),
		logger.String("reason", string(reason)),
		logger.Error(err),
	)
	return t.State(), nil
}

func (t *Tracker) stale(ref models.TxRef) (models.TxState, error) {
	t.log.Debug("discarding superseded transaction result", logger.String("tx", string(ref)))
	return models.TxState{}, ErrStale
}

// apply installs next if ticket is still current. Returns false when superseded.
func (t *Tracker) apply(ticket uint64, next models.TxState) bool {
	t.mu.Lock()
	if ticket != t.gen {
		t.mu.Unlock()
		return false
	}
	next.UpdatedAt = t.now()
	t.state = next
	listeners := t.listeners
	t.mu.Unlock()

	notify(listeners, next)
	return true
}

func notify(listeners []Listener, s models.TxState) {
	for _, l := range listeners {
		l(s)
	}
}
