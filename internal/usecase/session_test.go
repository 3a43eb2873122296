package usecase

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/txflow"
)

func fiveTokens() *big.Int {
	return new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestSwipeRightOpensLong(t *testing.T) {
	h := newHarness(cards("Japan", 3))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	require.NoError(t, h.session.Press(10, 10))
	fb, err := h.session.Move(ctx, 160, 20)
	require.NoError(t, err)
	require.Equal(t, gesture.SignRight, fb.Sign)

	res, err := h.session.Release(ctx)
	require.NoError(t, err)
	require.Equal(t, models.IntentLong, res.Intent)
	require.True(t, res.Advance)
	require.NotNil(t, res.Trade)
	require.Equal(t, models.CodeJP, res.Trade.Code)

	h.session.Wait()
	calls := h.chain.openCalls()
	require.Len(t, calls, 1)
	require.Equal(t, models.Long, calls[0].dir)
	require.Equal(t, models.CodeJP, calls[0].code)
	require.Equal(t, 0, fiveTokens().Cmp(calls[0].amount))

	require.Equal(t, models.FeedbackSuccess, h.session.Feedback().Kind)
	require.Equal(t, 1, h.session.View().Cursor)
	require.False(t, h.session.View().Locked)
	require.Contains(t, h.pub.types(), models.EventTradeQueued)
}

func TestReleaseBelowThresholdSnapsBack(t *testing.T) {
	h := newHarness(cards("Japan", 2))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	require.NoError(t, h.session.Press(0, 0))
	_, err = h.session.Move(ctx, 99, -99)
	require.NoError(t, err)
	res, err := h.session.Release(ctx)
	require.NoError(t, err)
	require.Equal(t, models.IntentNone, res.Intent)
	require.Equal(t, 0, h.session.View().Cursor)
	require.Empty(t, h.chain.openCalls())
}

func TestUnresolvedCountryAdvancesWithoutTrade(t *testing.T) {
	h := newHarness(cards("Mars", 2))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	res, err := h.session.Act(ctx, models.IntentShort)
	require.NoError(t, err)
	require.True(t, res.Advance)
	require.Nil(t, res.Trade)
	require.Contains(t, res.Error, "does not map")

	h.session.Wait()
	require.Empty(t, h.chain.openCalls())
	require.Equal(t, models.FeedbackNone, h.session.Feedback().Kind)
}

func TestSkipAdvancesWithoutTrade(t *testing.T) {
	h := newHarness(cards("Japan", 2))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	require.NoError(t, h.session.Press(0, 0))
	_, err = h.session.Move(ctx, 20, -150)
	require.NoError(t, err)
	res, err := h.session.Release(ctx)
	require.NoError(t, err)
	require.Equal(t, models.IntentSkip, res.Intent)
	require.Equal(t, 1, h.session.View().Cursor)
	require.Empty(t, h.chain.openCalls())
}

func TestBusyTrackerBlocksSecondLong(t *testing.T) {
	h := newHarness(cards("Indonesia", 3))
	h.chain.block = make(chan struct{})
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	_, err = h.session.Act(ctx, models.IntentLong)
	require.NoError(t, err)
	require.Eventually(t, h.tracker.Busy, time.Second, time.Millisecond)

	res, err := h.session.Act(ctx, models.IntentLong)
	require.ErrorIs(t, err, txflow.ErrBusy)
	require.Equal(t, models.IntentNone, res.Intent)
	require.Equal(t, 1, h.session.View().Cursor)
	require.False(t, h.session.View().Locked)

	// skip is not a trade and still works
	_, err = h.session.Act(ctx, models.IntentSkip)
	require.NoError(t, err)
	require.Equal(t, 2, h.session.View().Cursor)

	close(h.chain.block)
	h.session.Wait()
	require.Len(t, h.chain.openCalls(), 1)
}

func TestRejectedSignatureReportsFeedback(t *testing.T) {
	h := newHarness(cards("United States", 1))
	h.chain.openErr = errRejected
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	_, err = h.session.Act(ctx, models.IntentLong)
	require.NoError(t, err)
	h.session.Wait()

	fb := h.session.Feedback()
	require.Equal(t, models.FeedbackError, fb.Kind)
	require.Equal(t, "Transaction rejected by user.", fb.Message)
	require.True(t, h.session.View().Exhausted)

	h.session.DismissFeedback()
	require.Equal(t, models.FeedbackNone, h.session.Feedback().Kind)
}

func TestCycleAmountWraps(t *testing.T) {
	h := newHarness(nil)
	require.True(t, decimal.NewFromInt(5).Equal(h.session.Amount()))
	require.True(t, decimal.NewFromInt(10).Equal(h.session.CycleAmount()))
	require.True(t, decimal.NewFromInt(1).Equal(h.session.CycleAmount()))
	require.True(t, decimal.NewFromInt(5).Equal(h.session.CycleAmount()))
}

func TestStoredFeedAppliesOnlyOnReset(t *testing.T) {
	h := newHarness(cards("Japan", 2))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)
	h.session.SetFilter(ctx, "Japan")

	h.session.StoreFeed(cards("China", 5))
	require.Equal(t, 2, h.session.View().Total)

	view := h.session.Reset(ctx)
	require.Equal(t, 5, view.Total)
	require.Empty(t, view.Filter)
	require.Equal(t, []string{"China"}, view.Countries)
}

func TestToggleFilter(t *testing.T) {
	items := append(cards("Japan", 2), cards("China", 3)...)
	h := newHarness(items)
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	view := h.session.ToggleFilter(ctx, "China")
	require.Equal(t, "China", view.Filter)
	require.Equal(t, 3, view.Total)
	require.Equal(t, "China", view.Current.Country)

	view = h.session.ToggleFilter(ctx, "China")
	require.Empty(t, view.Filter)
	require.Equal(t, 5, view.Total)
}

func TestActOnEmptyDeck(t *testing.T) {
	h := newHarness(nil)
	_, err := h.session.Act(context.Background(), models.IntentLong)
	require.ErrorIs(t, err, ErrNoCard)
	require.ErrorIs(t, h.session.Press(0, 0), ErrNoCard)
}

func TestLoadFeedError(t *testing.T) {
	h := newHarness(nil)
	h.news.err = context.DeadlineExceeded
	_, err := h.session.LoadFeed(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type actResult struct {
	res CommitResult
	err error
}

func actAsync(s *Session, intent models.Intent) <-chan actResult {
	out := make(chan actResult, 1)
	go func() {
		res, err := s.Act(context.Background(), intent)
		out <- actResult{res, err}
	}()
	return out
}

func TestCommittedLongHoldsTrackerThroughTransition(t *testing.T) {
	gate := newGatedTransition()
	h := newHarnessWithTransition(cards("Japan", 3), gate)
	_, err := h.session.LoadFeed(context.Background())
	require.NoError(t, err)

	done := actAsync(h.session, models.IntentLong)
	require.Equal(t, models.IntentLong, <-gate.started)

	require.True(t, h.tracker.Busy())
	require.ErrorIs(t, h.actions.StartDeposit("1"), txflow.ErrBusy)

	gate.finish <- struct{}{}
	out := <-done
	require.NoError(t, out.err)
	require.True(t, out.res.Advance)
	require.NotNil(t, out.res.Trade)

	h.session.Wait()
	require.Len(t, h.chain.openCalls(), 1)
	require.Empty(t, h.chain.deposits)
	require.Equal(t, models.FeedbackSuccess, h.session.Feedback().Kind)
}

func TestCardLockedUntilTransitionCompletes(t *testing.T) {
	gate := newGatedTransition()
	h := newHarnessWithTransition(cards("Japan", 3), gate)
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	done := actAsync(h.session, models.IntentSkip)
	<-gate.started

	view := h.session.View()
	require.True(t, view.Locked)
	require.Equal(t, 0, view.Cursor)
	require.ErrorIs(t, h.session.Press(0, 0), gesture.ErrLocked)
	_, err = h.session.Act(ctx, models.IntentShort)
	require.ErrorIs(t, err, gesture.ErrLocked)

	gate.finish <- struct{}{}
	out := <-done
	require.NoError(t, out.err)
	require.True(t, out.res.Advance)

	view = h.session.View()
	require.False(t, view.Locked)
	require.Equal(t, 1, view.Cursor)
	require.Empty(t, h.chain.openCalls())
}

func TestDeckReplacedDuringTransitionIsNotAdvanced(t *testing.T) {
	gate := newGatedTransition()
	items := append(cards("Japan", 2), cards("China", 2)...)
	h := newHarnessWithTransition(items, gate)
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	done := actAsync(h.session, models.IntentSkip)
	<-gate.started
	h.session.SetFilter(ctx, "China")

	gate.finish <- struct{}{}
	out := <-done
	require.NoError(t, out.err)
	require.False(t, out.res.Advance)

	view := h.session.View()
	require.Equal(t, 0, view.Cursor)
	require.Equal(t, 2, view.Total)
	require.Equal(t, "China", view.Current.Country)

	done = actAsync(h.session, models.IntentSkip)
	<-gate.started
	h.session.Reset(ctx)
	gate.finish <- struct{}{}
	out = <-done
	require.False(t, out.res.Advance)
	require.Equal(t, 0, h.session.View().Cursor)
	require.Equal(t, 4, h.session.View().Total)
}

func TestLongSkipShortExhaustsDeck(t *testing.T) {
	h := newHarness(cards("Japan", 3))
	ctx := context.Background()
	_, err := h.session.LoadFeed(ctx)
	require.NoError(t, err)

	for _, intent := range []models.Intent{models.IntentLong, models.IntentSkip, models.IntentShort} {
		res, err := h.session.Act(ctx, intent)
		require.NoError(t, err)
		require.True(t, res.Advance)
		h.session.Wait()
	}

	_, ok := h.session.Current()
	require.False(t, ok)
	require.True(t, h.session.View().Exhausted)

	calls := h.chain.openCalls()
	require.Len(t, calls, 2)
	require.Equal(t, models.Long, calls[0].dir)
	require.Equal(t, models.Short, calls[1].dir)

	// deck changes leave the feedback alone
	require.Equal(t, models.FeedbackSuccess, h.session.Feedback().Kind)
	h.session.Reset(ctx)
	require.Equal(t, models.FeedbackSuccess, h.session.Feedback().Kind)
	_, ok = h.session.Current()
	require.True(t, ok)
}
