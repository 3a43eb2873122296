package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/internal/usecase"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
)

type stubChain struct {
	mu     sync.Mutex
	opened int
}

func (s *stubChain) OpenPosition(context.Context, models.Direction, models.CountryCode, *big.Int) (models.TxRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return "0x01", nil
}

func (s *stubChain) Allowance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (s *stubChain) ApproveMax(context.Context) (models.TxRef, error)          { return "0x02", nil }
func (s *stubChain) Deposit(context.Context, *big.Int) (models.TxRef, error)   { return "0x03", nil }
func (s *stubChain) Withdraw(context.Context, *big.Int) (models.TxRef, error)  { return "0x04", nil }
func (s *stubChain) WaitConfirmed(context.Context, models.TxRef) error         { return nil }

type stubNews struct{ items []models.NewsItem }

func (s stubNews) FetchNews(context.Context) ([]models.NewsItem, error) { return s.items, nil }

type stubWallet struct {
	connected bool
	err       error
}

func (w *stubWallet) Connect() (common.Address, error) {
	if w.err != nil {
		return common.Address{}, w.err
	}
	w.connected = true
	return common.HexToAddress("0x00000000000000000000000000000000000000aa"), nil
}
func (w *stubWallet) Disconnect() { w.connected = false }
func (w *stubWallet) Address() (common.Address, bool) {
	return common.HexToAddress("0x00000000000000000000000000000000000000aa"), w.connected
}
func (w *stubWallet) ChainID() *big.Int { return big.NewInt(84532) }

type env struct {
	e       *echo.Echo
	chain   *stubChain
	wallet  *stubWallet
	session *usecase.Session
	changes int
}

func newEnv(t *testing.T, items []models.NewsItem) *env {
	t.Helper()
	log := logger.Nop()
	chain := &stubChain{}
	tracker := txflow.NewTracker(chain)
	bg := usecase.NewBackground()
	t.Cleanup(bg.Close)

	amounts, err := usecase.NewAmountSelector([]string{"1", "5", "10"}, 1)
	require.NoError(t, err)
	d := usecase.NewDispatcher(country.NewResolver(nil), chain, tracker, metrics.Nop{}, log)
	instant := gesture.TransitionFunc(func(context.Context, models.Intent) error { return nil })
	session := usecase.NewSession(stubNews{items}, gesture.NewMapper(gesture.DefaultConfig()), instant, amounts, d, tracker, bg, metrics.Nop{}, log)

	ev := &env{e: echo.New(), chain: chain, wallet: &stubWallet{}, session: session}
	actions := usecase.NewPortfolioActions(chain, chain, ev.wallet, tracker, bg, metrics.Nop{}, log)
	reads := ReadModels{
		Stats: func() models.Snapshot[models.PortfolioStats] {
			return models.Snapshot[models.PortfolioStats]{
				Status: models.SnapshotSuccess,
				Value:  models.PortfolioStats{WalletBalance: decimal.NewFromInt(7)},
			}
		},
		Positions: func() models.Snapshot[[]models.Position] {
			return models.Snapshot[[]models.Position]{Status: models.SnapshotSuccess, Value: []models.Position{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
		},
		Markets: func() models.Snapshot[[]models.Market] {
			return models.Snapshot[[]models.Market]{Status: models.SnapshotPending}
		},
	}

	NewSessionHandler(log, session).RegisterRoutes(ev.e)
	NewPortfolioHandler(log, actions, reads).RegisterRoutes(ev.e)
	NewWalletHandler(log, ev.wallet, func() { ev.changes++ }).RegisterRoutes(ev.e)
	return ev
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ev *env) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ev.e.ServeHTTP(rec, req)

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func japanCards(n int) []models.NewsItem {
	out := make([]models.NewsItem, n)
	for i := range out {
		out[i] = models.NewsItem{ID: string(rune('a' + i)), Country: "Japan"}
	}
	return out
}

func TestSwipeFlowOverHTTP(t *testing.T) {
	ev := newEnv(t, japanCards(3))

	code, _ := ev.do(t, http.MethodPost, "/api/deck/load", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = ev.do(t, http.MethodPost, "/api/swipe/press", `{"x":0,"y":0}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = ev.do(t, http.MethodPost, "/api/swipe/move", `{"x":-180,"y":5}`)
	require.Equal(t, http.StatusOK, code)

	code, body := ev.do(t, http.MethodPost, "/api/swipe/release", "")
	require.Equal(t, http.StatusOK, code)
	var res usecase.CommitResult
	require.NoError(t, json.Unmarshal(body.Data, &res))
	require.Equal(t, models.IntentShort, res.Intent)
	require.True(t, res.Advance)

	ev.session.Wait()
	code, body = ev.do(t, http.MethodGet, "/api/tx", "")
	require.Equal(t, http.StatusOK, code)
	var fb models.Feedback
	require.NoError(t, json.Unmarshal(body.Data, &fb))
	require.Equal(t, models.FeedbackSuccess, fb.Kind)

	code, body = ev.do(t, http.MethodGet, "/api/deck", "")
	require.Equal(t, http.StatusOK, code)
	var view usecase.DeckView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.Equal(t, 1, view.Cursor)
}

func TestReleaseWithoutPressConflicts(t *testing.T) {
	ev := newEnv(t, japanCards(1))
	ev.do(t, http.MethodPost, "/api/deck/load", "")

	code, body := ev.do(t, http.MethodPost, "/api/swipe/release", "")
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, string(body.Data), "ERR_NO_DRAG")
}

func TestActValidatesIntent(t *testing.T) {
	ev := newEnv(t, japanCards(1))

	code, body := ev.do(t, http.MethodPost, "/api/swipe/act", `{"intent":"sideways"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(body.Data), "intent")
}

func TestCycleAmount(t *testing.T) {
	ev := newEnv(t, nil)
	code, body := ev.do(t, http.MethodPost, "/api/amount/cycle", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"amount":"10"}`, string(body.Data))
}

func TestDepositNeedsWallet(t *testing.T) {
	ev := newEnv(t, nil)

	code, body := ev.do(t, http.MethodPost, "/api/portfolio/deposit", `{"amount":"5"}`)
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, string(body.Data), "ERR_NOT_CONNECTED")

	code, _ = ev.do(t, http.MethodPost, "/api/wallet/connect", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, ev.changes)

	code, _ = ev.do(t, http.MethodPost, "/api/portfolio/deposit", `{"amount":"5"}`)
	require.Equal(t, http.StatusAccepted, code)

	code, _ = ev.do(t, http.MethodPost, "/api/portfolio/withdraw", `{"amount":"abc"}`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestWalletConnectFailure(t *testing.T) {
	ev := newEnv(t, nil)
	ev.wallet.err = errors.New("boom")

	code, _ := ev.do(t, http.MethodPost, "/api/wallet/connect", "")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Zero(t, ev.changes)
}

func TestPositionsLimit(t *testing.T) {
	ev := newEnv(t, nil)

	code, body := ev.do(t, http.MethodGet, "/api/positions?limit=2", "")
	require.Equal(t, http.StatusOK, code)
	var snap models.Snapshot[[]models.Position]
	require.NoError(t, json.Unmarshal(body.Data, &snap))
	require.Len(t, snap.Value, 2)

	code, _ = ev.do(t, http.MethodGet, "/api/positions?limit=0", "")
	require.Equal(t, http.StatusOK, code)
}

func TestFilterToggle(t *testing.T) {
	ev := newEnv(t, append(japanCards(2), models.NewsItem{ID: "z", Country: "China"}))
	ev.do(t, http.MethodPost, "/api/deck/load", "")

	code, body := ev.do(t, http.MethodPost, "/api/deck/filter/toggle", `{"country":"China"}`)
	require.Equal(t, http.StatusOK, code)
	var view usecase.DeckView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.Equal(t, "China", view.Filter)
	require.Equal(t, 1, view.Total)
}
