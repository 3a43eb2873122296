package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ChainPosition mirrors the position tuple returned by the trading contract.
type ChainPosition struct {
	CountryCode          [32]byte
	IsLong               bool
	CollateralAmount     *big.Int
	PositionSize         *big.Int
	EntryPrice           *big.Int
	EntryTimestamp       *big.Int
	LastFundingTimestamp *big.Int
}

// ChainCountry mirrors a registry entry.
type ChainCountry struct {
	CountryCode [32]byte
	Name        string
	PriceFeed   common.Address
	IsActive    bool
}
