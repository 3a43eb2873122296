package chainobs

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/tracing"
)

// observableChain wraps a Chain with tracing and logging.
type observableChain struct {
	next repository.Chain
	log  *logger.Logger
}

var _ repository.Chain = (*observableChain)(nil)

// Wrap decorates next with spans around every contract call.
func Wrap(next repository.Chain, log *logger.Logger) repository.Chain {
	return &observableChain{next: next, log: log}
}

func (o *observableChain) OpenPosition(ctx context.Context, dir models.Direction, code models.CountryCode, amount *big.Int) (ref models.TxRef, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.OpenPosition",
		attribute.String("direction", string(dir)),
		attribute.String("code", string(code)),
		attribute.String("amount", amount.String()),
	)
	defer func() { tracing.End(span, err) }()

	o.log.Info("opening position",
		logger.String("direction", string(dir)),
		logger.String("code", string(code)),
		logger.Stringer("amount", amount),
	)
	ref, err = o.next.OpenPosition(ctx, dir, code, amount)
	if err != nil {
		o.log.Warn("open position failed", logger.String("code", string(code)), logger.Error(err))
		return "", err
	}
	span.SetAttributes(attribute.String("tx", string(ref)))
	return ref, nil
}

func (o *observableChain) ApproveMax(ctx context.Context) (ref models.TxRef, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.ApproveMax")
	defer func() { tracing.End(span, err) }()

	ref, err = o.next.ApproveMax(ctx)
	if err != nil {
		o.log.Warn("approve failed", logger.Error(err))
	}
	return ref, err
}

func (o *observableChain) Deposit(ctx context.Context, amount *big.Int) (ref models.TxRef, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.Deposit", attribute.String("amount", amount.String()))
	defer func() { tracing.End(span, err) }()

	ref, err = o.next.Deposit(ctx, amount)
	if err != nil {
		o.log.Warn("deposit failed", logger.Stringer("amount", amount), logger.Error(err))
	}
	return ref, err
}

func (o *observableChain) Withdraw(ctx context.Context, amount *big.Int) (ref models.TxRef, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.Withdraw", attribute.String("amount", amount.String()))
	defer func() { tracing.End(span, err) }()

	ref, err = o.next.Withdraw(ctx, amount)
	if err != nil {
		o.log.Warn("withdraw failed", logger.Stringer("amount", amount), logger.Error(err))
	}
	return ref, err
}

func (o *observableChain) WaitConfirmed(ctx context.Context, ref models.TxRef) (err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.WaitConfirmed", attribute.String("tx", string(ref)))
	defer func() { tracing.End(span, err) }()

	return o.next.WaitConfirmed(ctx, ref)
}

func (o *observableChain) Allowance(ctx context.Context, owner common.Address) (v *big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.Allowance")
	defer func() { tracing.End(span, err) }()

	return o.next.Allowance(ctx, owner)
}

func (o *observableChain) TokenBalance(ctx context.Context, owner common.Address) (v *big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.TokenBalance")
	defer func() { tracing.End(span, err) }()

	return o.next.TokenBalance(ctx, owner)
}

func (o *observableChain) CollateralBalance(ctx context.Context, owner common.Address) (v *big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.CollateralBalance")
	defer func() { tracing.End(span, err) }()

	return o.next.CollateralBalance(ctx, owner)
}

func (o *observableChain) UserPositions(ctx context.Context, owner common.Address) (ids []*big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.UserPositions")
	defer func() { tracing.End(span, err) }()

	ids, err = o.next.UserPositions(ctx, owner)
	span.SetAttributes(attribute.Int("count", len(ids)))
	return ids, err
}

func (o *observableChain) Position(ctx context.Context, owner common.Address, id *big.Int) (p models.ChainPosition, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.Position", attribute.String("id", id.String()))
	defer func() { tracing.End(span, err) }()

	return o.next.Position(ctx, owner, id)
}

func (o *observableChain) PositionPnL(ctx context.Context, owner common.Address, id *big.Int) (pnl, price *big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.PositionPnL", attribute.String("id", id.String()))
	defer func() { tracing.End(span, err) }()

	return o.next.PositionPnL(ctx, owner, id)
}

func (o *observableChain) AllCountries(ctx context.Context) (cs []models.ChainCountry, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.AllCountries")
	defer func() { tracing.End(span, err) }()

	return o.next.AllCountries(ctx)
}

func (o *observableChain) CountryPrice(ctx context.Context, code [32]byte) (price, ts *big.Int, err error) {
	ctx, span := tracing.StartSpan(ctx, "chain.CountryPrice")
	defer func() { tracing.End(span, err) }()

	return o.next.CountryPrice(ctx, code)
}
