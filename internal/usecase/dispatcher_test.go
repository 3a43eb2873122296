package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/country"
	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
)

func newDispatcher(chain *fakeChain, opts ...DispatcherOption) *Dispatcher {
	return NewDispatcher(country.NewResolver(nil), chain, txflow.NewTracker(chain), metrics.Nop{}, logger.Nop(), opts...)
}

func TestPrepareRejectsNonPositiveStake(t *testing.T) {
	d := newDispatcher(&fakeChain{})
	item := models.NewsItem{ID: "1", Country: "Japan"}

	_, err := d.Prepare(models.Long, item, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = d.Prepare(models.Long, item, decimal.RequireFromString("-1"))
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = d.Prepare(models.Long, item, decimal.RequireFromString("0.0000000000000000001"))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPrepareRejectsBlankCountry(t *testing.T) {
	d := newDispatcher(&fakeChain{})
	_, err := d.Prepare(models.Short, models.NewsItem{ID: "1", Country: "  "}, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrUnresolvedCountry)
}

func TestPrevalidationUsesFreshSnapshot(t *testing.T) {
	now := time.Unix(1000, 0)
	snap := models.Snapshot[models.PortfolioStats]{
		Value:     models.PortfolioStats{ProtocolCollateral: decimal.NewFromInt(3)},
		Status:    models.SnapshotSuccess,
		FetchedAt: now,
	}
	chain := &fakeChain{}
	d := newDispatcher(chain,
		WithPrevalidation(func() models.Snapshot[models.PortfolioStats] { return snap }, 15*time.Second),
		WithDispatcherClock(func() time.Time { return now }),
	)
	item := models.NewsItem{ID: "1", Country: "China"}

	_, err := d.Prepare(models.Long, item, decimal.NewFromInt(5))
	require.ErrorIs(t, err, ErrInsufficientCollateral)

	req, err := d.Prepare(models.Long, item, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Equal(t, models.CodeCN, req.Code)

	// stale snapshots do not block
	now = now.Add(time.Minute)
	_, err = d.Prepare(models.Long, item, decimal.NewFromInt(5))
	require.NoError(t, err)
}

func TestSubmitConfirms(t *testing.T) {
	chain := &fakeChain{}
	d := newDispatcher(chain)

	st, err := d.Submit(context.Background(), models.Short, models.NewsItem{ID: "9", Country: "Indonesia"}, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.Equal(t, models.TxConfirmed, st.Phase)
	require.Len(t, chain.openCalls(), 1)
	require.Equal(t, models.CodeID, chain.openCalls()[0].code)
	require.Equal(t, []models.TxRef{st.TxRef}, chain.confirmed)
}
