package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/units"
)

// ErrNoWallet is returned for account-bound actions while no wallet is connected.
var ErrNoWallet = errors.New("wallet not connected")

const (
	labelApproving   = "Approving collateral..."
	labelDepositing  = "Depositing collateral..."
	labelWithdrawing = "Withdrawing collateral..."
)

// PortfolioActions moves collateral between the wallet and the trading contract.
type PortfolioActions struct {
	gateway   repository.CollateralGateway
	confirmer repository.Confirmer
	account   repository.AccountSource
	tracker   *txflow.Tracker
	bg        *Background
	metrics   repository.Metrics
	log       *logger.Logger

	onConfirmed []func()
}

func NewPortfolioActions(
	gateway repository.CollateralGateway,
	confirmer repository.Confirmer,
	account repository.AccountSource,
	tracker *txflow.Tracker,
	bg *Background,
	metrics repository.Metrics,
	log *logger.Logger,
) *PortfolioActions {
	return &PortfolioActions{
		gateway:   gateway,
		confirmer: confirmer,
		account:   account,
		tracker:   tracker,
		bg:        bg,
		metrics:   metrics,
		log:       log,
	}
}

// OnConfirmed registers fn to run after every confirmed deposit or withdrawal.
func (a *PortfolioActions) OnConfirmed(fn func()) {
	a.onConfirmed = append(a.onConfirmed, fn)
}

// Deposit approves the trading contract when the allowance is short, waits for the
// approval to be mined, then deposits amount. It blocks until the deposit resolves.
func (a *PortfolioActions) Deposit(ctx context.Context, amount string) (models.TxState, error) {
	return a.deposit(ctx, amount, a.tracker.Track)
}

func (a *PortfolioActions) deposit(ctx context.Context, amount string, track trackFunc) (models.TxState, error) {
	owner, wei, err := a.prepare(amount)
	if err != nil {
		return models.TxState{}, err
	}

	return a.run(ctx, "deposit", labelDepositing, track, func(ctx context.Context, note func(string)) (models.TxRef, error) {
		allowance, err := a.gateway.Allowance(ctx, owner)
		if err != nil {
			return "", fmt.Errorf("read allowance: %w", err)
		}
		if allowance.Cmp(wei) < 0 {
			note(labelApproving)
			ref, err := a.gateway.ApproveMax(ctx)
			if err != nil {
				return "", fmt.Errorf("approve: %w", err)
			}
			a.log.Info("approval submitted", logger.String("tx", string(ref)))
			if err := a.confirmer.WaitConfirmed(ctx, ref); err != nil {
				return "", fmt.Errorf("approve %s: %w", ref, err)
			}
			note(labelDepositing)
		}
		return a.gateway.Deposit(ctx, wei)
	})
}

// Withdraw moves amount of collateral back to the wallet.
func (a *PortfolioActions) Withdraw(ctx context.Context, amount string) (models.TxState, error) {
	return a.withdraw(ctx, amount, a.tracker.Track)
}

func (a *PortfolioActions) withdraw(ctx context.Context, amount string, track trackFunc) (models.TxState, error) {
	_, wei, err := a.prepare(amount)
	if err != nil {
		return models.TxState{}, err
	}
	return a.run(ctx, "withdraw", labelWithdrawing, track, func(ctx context.Context, _ func(string)) (models.TxRef, error) {
		return a.gateway.Withdraw(ctx, wei)
	})
}

// StartDeposit validates synchronously and runs Deposit in the background.
func (a *PortfolioActions) StartDeposit(amount string) error {
	return a.start(amount, a.deposit)
}

// StartWithdraw validates synchronously and runs Withdraw in the background.
func (a *PortfolioActions) StartWithdraw(amount string) error {
	return a.start(amount, a.withdraw)
}

// start reserves the tracker before returning, so a swipe committed meanwhile
// cannot claim it.
func (a *PortfolioActions) start(amount string, fn func(context.Context, string, trackFunc) (models.TxState, error)) error {
	if _, _, err := a.prepare(amount); err != nil {
		return err
	}
	r, err := a.tracker.Reserve()
	if err != nil {
		return err
	}
	a.bg.Go(func(ctx context.Context) {
		defer r.Release()
		if _, err := fn(ctx, amount, r.Track); err != nil {
			a.log.Warn("portfolio action not tracked", logger.Error(err))
		}
	})
	return nil
}

func (a *PortfolioActions) prepare(amount string) (common.Address, *big.Int, error) {
	d, err := parseStake(amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	wei, err := units.ToBase(d)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	owner, ok := a.account.Address()
	if !ok {
		return common.Address{}, nil, ErrNoWallet
	}
	return owner, wei, nil
}

func (a *PortfolioActions) run(ctx context.Context, op, label string, track trackFunc, sign txflow.SignFunc) (models.TxState, error) {
	state, err := track(ctx, label, sign)
	if err != nil {
		return state, err
	}
	a.metrics.RecordTxOutcome(op, string(state.Phase), string(state.Reason))
	if state.Phase == models.TxConfirmed {
		for _, fn := range a.onConfirmed {
			fn()
		}
	}
	return state, nil
}

func parseStake(amount string) (decimal.Decimal, error) {
	d, err := units.ParseAmount(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}
