package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Intent is the outcome of a released gesture or a button action.
type Intent string

const (
	IntentNone  Intent = "none"
	IntentLong  Intent = "long"
	IntentShort Intent = "short"
	IntentSkip  Intent = "skip"
)

func ParseIntent(s string) (Intent, error) {
	switch i := Intent(s); i {
	case IntentNone, IntentLong, IntentShort, IntentSkip:
		return i, nil
	}
	return IntentNone, fmt.Errorf("unknown intent %q", s)
}

// Commits reports whether the intent advances the deck.
func (i Intent) Commits() bool {
	return i == IntentLong || i == IntentShort || i == IntentSkip
}

// Direction returns the trade direction for Long/Short, false otherwise.
func (i Intent) Direction() (Direction, bool) {
	switch i {
	case IntentLong:
		return Long, true
	case IntentShort:
		return Short, true
	}
	return "", false
}

type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// CountryCode is the closed set of tradable country indices.
type CountryCode string

const (
	CodeUS CountryCode = "US"
	CodeGB CountryCode = "GB"
	CodeEU CountryCode = "EU"
	CodeJP CountryCode = "JP"
	CodeCN CountryCode = "CN"
	CodeID CountryCode = "ID"
	CodeIN CountryCode = "IN"
	CodeSG CountryCode = "SG"
)

// AllCountryCodes lists every tradable code.
var AllCountryCodes = []CountryCode{CodeUS, CodeGB, CodeEU, CodeJP, CodeCN, CodeID, CodeIN, CodeSG}

// TxRef identifies a submitted transaction (a 0x-prefixed hash).
type TxRef string

// TradeRequest is built transiently per dispatch and never persisted.
type TradeRequest struct {
	Direction Direction       `json:"direction"`
	Code      CountryCode     `json:"code"`
	Stake     decimal.Decimal `json:"stake"`
	NewsID    string          `json:"news_id"`
	Country   string          `json:"country"`
}
