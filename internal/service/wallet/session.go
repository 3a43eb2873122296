// Package wallet holds the process-wide signing session.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrNotConnected = errors.New("wallet: not connected")
	ErrNoKey        = errors.New("wallet: no signing key configured")
	// ErrWrongNetwork stands in for the network switch prompt of a browser wallet.
	ErrWrongNetwork = errors.New("wallet: connected to the wrong network")
)

// Session is initialized once at start and shared by every component that signs or reads per-account data.
type Session struct {
	mu      sync.RWMutex
	keyHex  string
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

func NewSession(privateKeyHex string, chainID int64) *Session {
	return &Session{
		keyHex:  strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"),
		chainID: big.NewInt(chainID),
	}
}

// Connect unlocks the configured key and derives the account address.
func (s *Session) Connect() (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.address, nil
	}
	if s.keyHex == "" {
		return common.Address{}, ErrNoKey
	}
	key, err := crypto.HexToECDSA(s.keyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("wallet: parse key: %w", err)
	}
	s.key = key
	s.address = crypto.PubkeyToAddress(key.PublicKey)
	return s.address, nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	s.key = nil
	s.address = common.Address{}
	s.mu.Unlock()
}

// Address returns the connected account, false when disconnected.
func (s *Session) Address() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.key != nil
}

func (s *Session) Connected() bool {
	_, ok := s.Address()
	return ok
}

func (s *Session) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// EnsureNetwork compares the node's chain id with the expected one.
func (s *Session) EnsureNetwork(actual *big.Int) error {
	if actual == nil || actual.Cmp(s.chainID) != 0 {
		return fmt.Errorf("%w: want chain %s, got %v", ErrWrongNetwork, s.chainID, actual)
	}
	return nil
}

// Transactor returns signing options bound to ctx.
func (s *Session) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()

	if key == nil {
		return nil, ErrNotConnected
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("wallet: transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
