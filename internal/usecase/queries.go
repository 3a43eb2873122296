package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/internal/service/chain"
	"CountrySwipe/pkg/logger"
	"CountrySwipe/pkg/units"
)

var marketSymbols = map[string]string{
	"United States": "USA",
	"Indonesia":     "IDN",
	"Singapore":     "SG",
	"Japan":         "JPN",
	"China":         "CN",
}

// MarketSymbol returns the ticker shown for a registry country name.
func MarketSymbol(name string) string {
	if s, ok := marketSymbols[name]; ok {
		return s
	}
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// Queries builds the read models served to the front-end.
type Queries struct {
	portfolio repository.PortfolioReader
	markets   repository.MarketReader
	account   repository.AccountSource
	log       *logger.Logger
}

func NewQueries(portfolio repository.PortfolioReader, markets repository.MarketReader, account repository.AccountSource, log *logger.Logger) *Queries {
	return &Queries{portfolio: portfolio, markets: markets, account: account, log: log}
}

// AccountKnown gates the account-bound pollers.
func (q *Queries) AccountKnown() bool {
	_, ok := q.account.Address()
	return ok
}

// Stats reads the wallet token balance and the protocol collateral.
func (q *Queries) Stats(ctx context.Context) (models.PortfolioStats, error) {
	owner, ok := q.account.Address()
	if !ok {
		return models.PortfolioStats{}, ErrNoWallet
	}

	wallet, err := q.portfolio.TokenBalance(ctx, owner)
	if err != nil {
		return models.PortfolioStats{}, fmt.Errorf("wallet balance: %w", err)
	}
	collateral, err := q.portfolio.CollateralBalance(ctx, owner)
	if err != nil {
		return models.PortfolioStats{}, fmt.Errorf("protocol collateral: %w", err)
	}
	return models.PortfolioStats{
		WalletBalance:      units.FromBase(wallet),
		ProtocolCollateral: units.FromBase(collateral),
	}, nil
}

// Positions lists open positions. A position whose details cannot be read is
// skipped; a failed PnL read reports zero PnL and price.
func (q *Queries) Positions(ctx context.Context) ([]models.Position, error) {
	owner, ok := q.account.Address()
	if !ok {
		return nil, ErrNoWallet
	}

	ids, err := q.portfolio.UserPositions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("user positions: %w", err)
	}

	out := make([]models.Position, 0, len(ids))
	for _, id := range ids {
		p, err := q.portfolio.Position(ctx, owner, id)
		if err != nil {
			q.log.Debug("position read failed", logger.String("id", id.String()), logger.Error(err))
			continue
		}

		pos := models.Position{
			ID:          id.String(),
			CountryCode: chain.DecodeCode(p.CountryCode),
			IsLong:      p.IsLong,
			Collateral:  units.FromBase(p.CollateralAmount),
			Size:        units.FromBase(p.PositionSize),
			EntryPrice:  units.FromBase(p.EntryPrice),
		}
		if p.EntryTimestamp != nil {
			pos.EntryTime = time.Unix(p.EntryTimestamp.Int64(), 0).UTC()
		}
		if pnl, price, err := q.portfolio.PositionPnL(ctx, owner, id); err == nil {
			pos.PnL = units.FromBase(pnl)
			pos.CurrentPrice = units.FromBase(price)
		}
		out = append(out, pos)
	}
	return out, nil
}

// Markets lists registry countries with their latest oracle price.
func (q *Queries) Markets(ctx context.Context) ([]models.Market, error) {
	countries, err := q.markets.AllCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry countries: %w", err)
	}

	out := make([]models.Market, 0, len(countries))
	for _, c := range countries {
		m := models.Market{
			ID:       hexutil.Encode(c.CountryCode[:]),
			Name:     c.Name,
			Symbol:   MarketSymbol(c.Name),
			IsActive: c.IsActive,
		}
		if price, ts, err := q.markets.CountryPrice(ctx, c.CountryCode); err == nil {
			m.Price = units.FromBase(price)
			if ts != nil && ts.Sign() > 0 {
				m.PriceAt = time.Unix(ts.Int64(), 0).UTC()
			}
		}
		out = append(out, m)
	}
	return out, nil
}
