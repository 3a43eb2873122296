// Package chain talks to the trading, collateral token and registry contracts over JSON-RPC.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/logger"
)

var (
	// ErrReverted is returned for mined transactions whose receipt reports failure.
	ErrReverted = errors.New("execution reverted")
	// ErrNotConfigured is returned when a contract address is missing from configuration.
	ErrNotConfigured = errors.New("chain: contract address not configured")
)

// MaxUint256 is the unlimited approval amount.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Backend is the subset of ethclient.Client the gateway uses.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Signer provides per-call signing options and the expected network.
type Signer interface {
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
	EnsureNetwork(actual *big.Int) error
}

type Addresses struct {
	Trading  common.Address
	Token    common.Address
	Registry common.Address
}

type Gateway struct {
	backend Backend
	signer  Signer
	addrs   Addresses
	log     *logger.Logger

	trading  *bind.BoundContract
	token    *bind.BoundContract
	registry *bind.BoundContract

	receiptPoll time.Duration

	netMu sync.Mutex
	netOK bool
}

var _ repository.Chain = (*Gateway)(nil)

type Option func(*Gateway)

func WithReceiptPoll(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.receiptPoll = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// Dial connects to rpcURL and binds the contracts.
func Dial(ctx context.Context, rpcURL string, signer Signer, addrs Addresses, opts ...Option) (*Gateway, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rpc: %w", err)
	}
	g, err := New(client, signer, addrs, opts...)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return g, client, nil
}

func New(backend Backend, signer Signer, addrs Addresses, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		backend:     backend,
		signer:      signer,
		addrs:       addrs,
		log:         logger.Nop(),
		receiptPoll: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	var err error
	if g.trading, err = bindContract(addrs.Trading, tradingABI, backend); err != nil {
		return nil, fmt.Errorf("bind trading: %w", err)
	}
	if g.token, err = bindContract(addrs.Token, erc20ABI, backend); err != nil {
		return nil, fmt.Errorf("bind token: %w", err)
	}
	if g.registry, err = bindContract(addrs.Registry, registryABI, backend); err != nil {
		return nil, fmt.Errorf("bind registry: %w", err)
	}
	return g, nil
}

func bindContract(addr common.Address, raw string, backend bind.ContractBackend) (*bind.BoundContract, error) {
	if addr == (common.Address{}) {
		return nil, nil
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(addr, parsed, backend, backend, backend), nil
}

// --- writes ---

func (g *Gateway) OpenPosition(ctx context.Context, dir models.Direction, code models.CountryCode, amount *big.Int) (models.TxRef, error) {
	method := "openLongPosition"
	if dir == models.Short {
		method = "openShortPosition"
	}
	return g.transact(ctx, g.trading, method, CodeHash(code), amount)
}

func (g *Gateway) ApproveMax(ctx context.Context) (models.TxRef, error) {
	return g.transact(ctx, g.token, "approve", g.addrs.Trading, MaxUint256)
}

func (g *Gateway) Deposit(ctx context.Context, amount *big.Int) (models.TxRef, error) {
	return g.transact(ctx, g.trading, "deposit", amount)
}

func (g *Gateway) Withdraw(ctx context.Context, amount *big.Int) (models.TxRef, error) {
	return g.transact(ctx, g.trading, "withdraw", amount)
}

func (g *Gateway) transact(ctx context.Context, c *bind.BoundContract, method string, args ...interface{}) (models.TxRef, error) {
	if c == nil {
		return "", fmt.Errorf("%s: %w", method, ErrNotConfigured)
	}
	if err := g.ensureNetwork(ctx); err != nil {
		return "", err
	}
	opts, err := g.signer.Transactor(ctx)
	if err != nil {
		return "", err
	}

	tx, err := c.Transact(opts, method, args...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}

	ref := models.TxRef(tx.Hash().Hex())
	g.log.Debug("transaction sent", logger.String("method", method), logger.String("tx", string(ref)))
	return ref, nil
}

// ensureNetwork checks the node's chain id once per successful match.
func (g *Gateway) ensureNetwork(ctx context.Context) error {
	g.netMu.Lock()
	defer g.netMu.Unlock()
	if g.netOK {
		return nil
	}
	id, err := g.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	if err := g.signer.EnsureNetwork(id); err != nil {
		return err
	}
	g.netOK = true
	return nil
}

// WaitConfirmed polls for the receipt of ref until it is mined or ctx ends.
func (g *Gateway) WaitConfirmed(ctx context.Context, ref models.TxRef) error {
	hash := common.HexToHash(string(ref))
	ticker := time.NewTicker(g.receiptPoll)
	defer ticker.Stop()

	for {
		receipt, err := g.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("tx %s: %w", ref, ErrReverted)
			}
			return nil
		case !errors.Is(err, ethereum.NotFound):
			g.log.Debug("receipt lookup failed", logger.String("tx", string(ref)), logger.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// --- reads ---

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (g *Gateway) call(ctx context.Context, c *bind.BoundContract, method string, args ...interface{}) ([]interface{}, error) {
	if c == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrNotConfigured)
	}
	var out []interface{}
	if err := c.Call(callOpts(ctx), &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out, nil
}

func (g *Gateway) callBig(ctx context.Context, c *bind.BoundContract, method string, args ...interface{}) (*big.Int, error) {
	out, err := g.call(ctx, c, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (g *Gateway) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return g.callBig(ctx, g.token, "allowance", owner, g.addrs.Trading)
}

func (g *Gateway) TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return g.callBig(ctx, g.token, "balanceOf", owner)
}

func (g *Gateway) CollateralBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return g.callBig(ctx, g.trading, "getCollateralBalance", owner)
}

func (g *Gateway) UserPositions(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	out, err := g.call(ctx, g.trading, "getUserPositions", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

func (g *Gateway) Position(ctx context.Context, owner common.Address, id *big.Int) (models.ChainPosition, error) {
	out, err := g.call(ctx, g.trading, "getPosition", owner, id)
	if err != nil {
		return models.ChainPosition{}, err
	}
	return *abi.ConvertType(out[0], new(models.ChainPosition)).(*models.ChainPosition), nil
}

func (g *Gateway) PositionPnL(ctx context.Context, owner common.Address, id *big.Int) (*big.Int, *big.Int, error) {
	out, err := g.call(ctx, g.trading, "getPositionPnL", owner, id)
	if err != nil {
		return nil, nil, err
	}
	pnl := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	price := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	return pnl, price, nil
}

func (g *Gateway) AllCountries(ctx context.Context) ([]models.ChainCountry, error) {
	out, err := g.call(ctx, g.registry, "getAllCountries")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]models.ChainCountry)).(*[]models.ChainCountry), nil
}

func (g *Gateway) CountryPrice(ctx context.Context, code [32]byte) (*big.Int, *big.Int, error) {
	out, err := g.call(ctx, g.registry, "getCountryPrice", code)
	if err != nil {
		return nil, nil, err
	}
	price := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	ts := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	return price, ts, nil
}
