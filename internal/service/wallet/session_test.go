package wallet

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestConnectDerivesAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyHex := hex.EncodeToString(crypto.FromECDSA(key))

	s := NewSession("0x"+keyHex, 84532)
	_, ok := s.Address()
	require.False(t, ok)

	addr, err := s.Connect()
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)
	require.True(t, s.Connected())

	opts, err := s.Transactor(context.Background())
	require.NoError(t, err)
	require.Equal(t, addr, opts.From)

	s.Disconnect()
	require.False(t, s.Connected())
	_, err = s.Transactor(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectWithoutKey(t *testing.T) {
	_, err := NewSession("", 1).Connect()
	require.ErrorIs(t, err, ErrNoKey)
}

func TestEnsureNetwork(t *testing.T) {
	s := NewSession("", 84532)
	require.NoError(t, s.EnsureNetwork(big.NewInt(84532)))
	require.ErrorIs(t, s.EnsureNetwork(big.NewInt(1)), ErrWrongNetwork)
	require.ErrorIs(t, s.EnsureNetwork(nil), ErrWrongNetwork)
}
