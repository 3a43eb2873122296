package repository

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"CountrySwipe/internal/domain/models"
)

// NewsSource is the read-only news backend.
type NewsSource interface {
	FetchNews(ctx context.Context) ([]models.NewsItem, error)
}

// TradeGateway opens positions on the trading contract. Each call triggers a wallet signature.
type TradeGateway interface {
	OpenPosition(ctx context.Context, dir models.Direction, code models.CountryCode, amount *big.Int) (models.TxRef, error)
}

// CollateralGateway moves collateral between the wallet and the trading contract.
type CollateralGateway interface {
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)
	ApproveMax(ctx context.Context) (models.TxRef, error)
	Deposit(ctx context.Context, amount *big.Int) (models.TxRef, error)
	Withdraw(ctx context.Context, amount *big.Int) (models.TxRef, error)
}

// Confirmer waits until a submitted transaction is mined successfully.
type Confirmer interface {
	WaitConfirmed(ctx context.Context, ref models.TxRef) error
}

// PortfolioReader covers the per-account contract reads.
type PortfolioReader interface {
	TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	CollateralBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	UserPositions(ctx context.Context, owner common.Address) ([]*big.Int, error)
	Position(ctx context.Context, owner common.Address, id *big.Int) (models.ChainPosition, error)
	PositionPnL(ctx context.Context, owner common.Address, id *big.Int) (pnl, price *big.Int, err error)
}

// MarketReader covers registry reads.
type MarketReader interface {
	AllCountries(ctx context.Context) ([]models.ChainCountry, error)
	CountryPrice(ctx context.Context, code [32]byte) (price, timestamp *big.Int, err error)
}

// Chain is everything the client needs from the contracts.
type Chain interface {
	TradeGateway
	CollateralGateway
	Confirmer
	PortfolioReader
	MarketReader
}

// AccountSource exposes the connected wallet address.
type AccountSource interface {
	Address() (common.Address, bool)
}

// EventPublisher ships session events to the event bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e *models.Event) error
	Close() error
}

type Metrics interface {
	RecordSwipe(intent string)
	RecordDispatch(direction, outcome string)
	RecordTxOutcome(label, phase, reason string)
	RecordUnresolvedCountry(country string)
	RecordPollError(query string)
	RecordLatency(op string, seconds float64)
}
