package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
)

type openCall struct {
	dir    models.Direction
	code   models.CountryCode
	amount *big.Int
}

type fakeChain struct {
	mu         sync.Mutex
	opened     []openCall
	openErr    error
	block      chan struct{}
	allowance  *big.Int
	approvals  int
	deposits   []*big.Int
	withdraws  []*big.Int
	confirmed  []models.TxRef
	confirmErr error
	nonce      int
}

func (f *fakeChain) ref() models.TxRef {
	f.nonce++
	return models.TxRef(fmt.Sprintf("0x%064x", f.nonce))
}

func (f *fakeChain) OpenPosition(ctx context.Context, dir models.Direction, code models.CountryCode, amount *big.Int) (models.TxRef, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return "", f.openErr
	}
	f.opened = append(f.opened, openCall{dir, code, amount})
	return f.ref(), nil
}

func (f *fakeChain) Allowance(context.Context, common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allowance == nil {
		return big.NewInt(0), nil
	}
	return f.allowance, nil
}

func (f *fakeChain) ApproveMax(context.Context) (models.TxRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvals++
	return f.ref(), nil
}

func (f *fakeChain) Deposit(_ context.Context, amount *big.Int) (models.TxRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, amount)
	return f.ref(), nil
}

func (f *fakeChain) Withdraw(_ context.Context, amount *big.Int) (models.TxRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdraws = append(f.withdraws, amount)
	return f.ref(), nil
}

func (f *fakeChain) WaitConfirmed(_ context.Context, ref models.TxRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, ref)
	return f.confirmErr
}

func (f *fakeChain) openCalls() []openCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openCall(nil), f.opened...)
}

type fakeNews struct {
	items []models.NewsItem
	err   error
}

func (f *fakeNews) FetchNews(context.Context) ([]models.NewsItem, error) {
	return f.items, f.err
}

type fakeAccount struct {
	addr common.Address
	ok   bool
}

func (a fakeAccount) Address() (common.Address, bool) { return a.addr, a.ok }

var testOwner = common.HexToAddress("0x00000000000000000000000000000000000000aa")

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e *models.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var errRejected = errors.New("User rejected the request.")

// gatedTransition holds each exit transition until the test sends on finish.
type gatedTransition struct {
	started chan models.Intent
	finish  chan struct{}
}

func newGatedTransition() *gatedTransition {
	return &gatedTransition{started: make(chan models.Intent, 4), finish: make(chan struct{})}
}

func (g *gatedTransition) Play(ctx context.Context, intent models.Intent) error {
	g.started <- intent
	select {
	case <-g.finish:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type harness struct {
	chain   *fakeChain
	news    *fakeNews
	tracker *txflow.Tracker
	bg      *Background
	pub     *recordingPublisher
	session *Session
	actions *PortfolioActions
}

func newHarness(items []models.NewsItem, opts ...DispatcherOption) *harness {
	instant := gesture.TransitionFunc(func(context.Context, models.Intent) error { return nil })
	return newHarnessWithTransition(items, instant, opts...)
}

func newHarnessWithTransition(items []models.NewsItem, transition gesture.Transition, opts ...DispatcherOption) *harness {
	h := &harness{
		chain: &fakeChain{},
		news:  &fakeNews{items: items},
		bg:    NewBackground(),
		pub:   &recordingPublisher{},
	}
	log := logger.Nop()
	h.tracker = txflow.NewTracker(h.chain)
	amounts, err := NewAmountSelector([]string{"1", "5", "10"}, 1)
	if err != nil {
		panic(err)
	}
	d := NewDispatcher(country.NewResolver(nil), h.chain, h.tracker, metrics.Nop{}, log, opts...)
	h.session = NewSession(h.news, gesture.NewMapper(gesture.DefaultConfig()), transition, amounts, d, h.tracker, h.bg,
		metrics.Nop{}, log, WithEventPublisher(h.pub), WithSessionID("test-session"))
	h.actions = NewPortfolioActions(h.chain, h.chain, fakeAccount{addr: testOwner, ok: true}, h.tracker, h.bg, metrics.Nop{}, log)
	return h
}

func cards(country string, n int) []models.NewsItem {
	out := make([]models.NewsItem, n)
	for i := range out {
		out[i] = models.NewsItem{ID: fmt.Sprint(i), Title: "t", Country: country}
	}
	return out
}
