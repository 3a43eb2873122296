package usecase

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/metrics"
)

func newActions(chain *fakeChain, account fakeAccount) *PortfolioActions {
	return NewPortfolioActions(chain, chain, account, txflow.NewTracker(chain), NewBackground(), metrics.Nop{}, logger.Nop())
}

func TestDepositApprovesWhenAllowanceShort(t *testing.T) {
	chain := &fakeChain{}
	a := newActions(chain, fakeAccount{addr: testOwner, ok: true})
	refreshed := 0
	a.OnConfirmed(func() { refreshed++ })

	st, err := a.Deposit(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, models.TxConfirmed, st.Phase)
	require.Equal(t, 1, chain.approvals)
	require.Len(t, chain.deposits, 1)
	require.Equal(t, 0, fiveTokens().Cmp(chain.deposits[0]))
	// approval and deposit both waited on
	require.Len(t, chain.confirmed, 2)
	require.Equal(t, 1, refreshed)
}

func TestDepositSkipsApprovalWhenAllowanceSuffices(t *testing.T) {
	chain := &fakeChain{allowance: new(big.Int).Mul(fiveTokens(), big.NewInt(2))}
	a := newActions(chain, fakeAccount{addr: testOwner, ok: true})

	_, err := a.Deposit(context.Background(), "5")
	require.NoError(t, err)
	require.Zero(t, chain.approvals)
	require.Len(t, chain.deposits, 1)
}

func TestWithdrawValidatesAmount(t *testing.T) {
	chain := &fakeChain{}
	a := newActions(chain, fakeAccount{addr: testOwner, ok: true})

	_, err := a.Withdraw(context.Background(), "0")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = a.Withdraw(context.Background(), "abc")
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.Empty(t, chain.withdraws)

	st, err := a.Withdraw(context.Background(), "1.5")
	require.NoError(t, err)
	require.Equal(t, models.TxConfirmed, st.Phase)
	require.Len(t, chain.withdraws, 1)
}

func TestActionsRequireWallet(t *testing.T) {
	a := newActions(&fakeChain{}, fakeAccount{})
	require.ErrorIs(t, a.StartDeposit("1"), ErrNoWallet)
}

func TestStartDepositRunsInBackground(t *testing.T) {
	chain := &fakeChain{}
	a := newActions(chain, fakeAccount{addr: testOwner, ok: true})

	require.NoError(t, a.StartDeposit("1"))
	a.bg.Wait()
	require.Len(t, chain.deposits, 1)
}
