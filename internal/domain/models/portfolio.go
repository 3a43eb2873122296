package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioStats struct {
	WalletBalance      decimal.Decimal `json:"wallet_balance"`
	ProtocolCollateral decimal.Decimal `json:"protocol_collateral"`
}

type Position struct {
	ID           string          `json:"id"`
	CountryCode  string          `json:"country_code"`
	IsLong       bool            `json:"is_long"`
	Collateral   decimal.Decimal `json:"collateral"`
	Size         decimal.Decimal `json:"size"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	PnL          decimal.Decimal `json:"pnl"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	EntryTime    time.Time       `json:"entry_time"`
}

type Market struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	PriceAt  time.Time       `json:"price_at,omitempty"`
	IsActive bool            `json:"is_active"`
}

type SnapshotStatus string

const (
	SnapshotPending SnapshotStatus = "pending"
	SnapshotSuccess SnapshotStatus = "success"
	SnapshotFailure SnapshotStatus = "failure"
)

// Snapshot is the latest full read of a polled query.
type Snapshot[T any] struct {
	Value     T              `json:"value"`
	Status    SnapshotStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	FetchedAt time.Time      `json:"fetched_at,omitempty"`
}

// Fresh reports a successful snapshot no older than maxAge.
func (s Snapshot[T]) Fresh(now time.Time, maxAge time.Duration) bool {
	return s.Status == SnapshotSuccess && now.Sub(s.FetchedAt) <= maxAge
}
