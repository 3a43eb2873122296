package usecase

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/service/chain"
	"CountrySwipe/pkg/logger"
)

func wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type fakeReader struct {
	positions map[int64]models.ChainPosition
	pnlErr    error
	countries []models.ChainCountry
}

func (f *fakeReader) TokenBalance(context.Context, common.Address) (*big.Int, error) {
	return wei(7), nil
}

func (f *fakeReader) CollateralBalance(context.Context, common.Address) (*big.Int, error) {
	return wei(2), nil
}

func (f *fakeReader) UserPositions(context.Context, common.Address) ([]*big.Int, error) {
	return []*big.Int{big.NewInt(1), big.NewInt(2)}, nil
}

func (f *fakeReader) Position(_ context.Context, _ common.Address, id *big.Int) (models.ChainPosition, error) {
	p, ok := f.positions[id.Int64()]
	if !ok {
		return models.ChainPosition{}, errors.New("missing")
	}
	return p, nil
}

func (f *fakeReader) PositionPnL(context.Context, common.Address, *big.Int) (*big.Int, *big.Int, error) {
	if f.pnlErr != nil {
		return nil, nil, f.pnlErr
	}
	return wei(1), wei(101), nil
}

func (f *fakeReader) AllCountries(context.Context) ([]models.ChainCountry, error) {
	return f.countries, nil
}

func (f *fakeReader) CountryPrice(context.Context, [32]byte) (*big.Int, *big.Int, error) {
	return wei(42), big.NewInt(1700000000), nil
}

func TestStatsFormatsBalances(t *testing.T) {
	r := &fakeReader{}
	q := NewQueries(r, r, fakeAccount{addr: testOwner, ok: true}, logger.Nop())

	st, err := q.Stats(context.Background())
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(7).Equal(st.WalletBalance))
	require.True(t, decimal.NewFromInt(2).Equal(st.ProtocolCollateral))

	_, err = NewQueries(r, r, fakeAccount{}, logger.Nop()).Stats(context.Background())
	require.ErrorIs(t, err, ErrNoWallet)
}

func TestPositionsSkipUnreadableAndDecodeCodes(t *testing.T) {
	r := &fakeReader{positions: map[int64]models.ChainPosition{
		2: {
			CountryCode:      chain.CodeHash(models.CodeJP),
			IsLong:           true,
			CollateralAmount: wei(5),
			PositionSize:     wei(10),
			EntryPrice:       wei(100),
			EntryTimestamp:   big.NewInt(1700000000),
		},
	}}
	q := NewQueries(r, r, fakeAccount{addr: testOwner, ok: true}, logger.Nop())

	ps, err := q.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, "2", ps[0].ID)
	require.Equal(t, "JP", ps[0].CountryCode)
	require.True(t, decimal.NewFromInt(1).Equal(ps[0].PnL))
	require.Equal(t, int64(1700000000), ps[0].EntryTime.Unix())

	r.pnlErr = errors.New("oracle stale")
	ps, err = q.Positions(context.Background())
	require.NoError(t, err)
	require.True(t, ps[0].PnL.IsZero())
	require.True(t, ps[0].CurrentPrice.IsZero())
}

func TestMarketsMapSymbols(t *testing.T) {
	r := &fakeReader{countries: []models.ChainCountry{
		{CountryCode: chain.CodeHash(models.CodeUS), Name: "United States", IsActive: true},
		{CountryCode: chain.CodeHash(models.CodeGB), Name: "Britain"},
	}}
	q := NewQueries(r, r, fakeAccount{}, logger.Nop())

	ms, err := q.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, ms, 2)
	require.Equal(t, "USA", ms[0].Symbol)
	require.Equal(t, "BRI", ms[1].Symbol)
	require.True(t, decimal.NewFromInt(42).Equal(ms[0].Price))
	require.Len(t, ms[0].ID, 66)
}

func TestMarketSymbol(t *testing.T) {
	require.Equal(t, "SG", MarketSymbol("Singapore"))
	require.Equal(t, "GE", MarketSymbol("ge"))
	require.Equal(t, "", MarketSymbol(""))
}
