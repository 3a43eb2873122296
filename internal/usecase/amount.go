package usecase

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"CountrySwipe/pkg/units"
)

// AmountSelector cycles through the preset stake amounts.
type AmountSelector struct {
	mu      sync.Mutex
	amounts []decimal.Decimal
	idx     int
}

func NewAmountSelector(amounts []string, defaultIdx int) (*AmountSelector, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("amount selector: no amounts")
	}
	if defaultIdx < 0 || defaultIdx >= len(amounts) {
		return nil, fmt.Errorf("amount selector: default index %d out of range", defaultIdx)
	}

	parsed := make([]decimal.Decimal, len(amounts))
	for i, a := range amounts {
		d, err := units.ParseAmount(a)
		if err != nil {
			return nil, fmt.Errorf("amount selector: %w", err)
		}
		parsed[i] = d
	}
	return &AmountSelector{amounts: parsed, idx: defaultIdx}, nil
}

func (a *AmountSelector) Current() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.amounts[a.idx]
}

// Cycle moves to the next amount, wrapping after the last one.
func (a *AmountSelector) Cycle() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.idx = (a.idx + 1) % len(a.amounts)
	return a.amounts[a.idx]
}

func (a *AmountSelector) Options() []decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]decimal.Decimal(nil), a.amounts...)
}
