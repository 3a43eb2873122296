package country

import (
	"testing"

	"github.com/stretchr/testify/require"

	"CountrySwipe/internal/domain/models"
)

func TestResolveKnownLabels(t *testing.T) {
	r := NewResolver(nil)

	cases := map[string]models.CountryCode{
		"United States":            models.CodeUS,
		"United States of America": models.CodeUS,
		"  JAPAN ":                 models.CodeJP,
		"United Kingdom":           models.CodeGB,
		"Great Britain":            models.CodeGB,
		"Eurozone":                 models.CodeEU,
		"China":                    models.CodeCN,
		"Indonesia":                models.CodeID,
		"India":                    models.CodeIN,
		"sg":                       models.CodeSG,
	}
	for label, want := range cases {
		got, ok := r.Resolve(label)
		require.True(t, ok, label)
		require.Equal(t, want, got, label)
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := NewResolver(nil)

	for _, label := range []string{"", "   ", "Nowhereland"} {
		_, ok := r.Resolve(label)
		require.False(t, ok, label)
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	r := NewResolver(nil)

	// "russia" contains "us", which is checked before anything else.
	m, ok := r.Match("Russia")
	require.True(t, ok)
	require.Equal(t, models.CodeUS, m.Code)
	require.True(t, m.Weak)

	m, ok = r.Match("Japan")
	require.True(t, ok)
	require.False(t, m.Weak)
}

func TestResolveSubstringCollision(t *testing.T) {
	// "singapore" contains "in", and IN is ordered before SG.
	m, ok := NewResolver(TradeRules).Match("Singapore")
	require.True(t, ok)
	require.Equal(t, models.CodeIN, m.Code)
	require.True(t, m.Weak)

	code, ok := NewResolver(DisplayRules).Resolve("Singapore")
	require.True(t, ok)
	require.Equal(t, models.CodeSG, code)
}

func TestResolveIdempotent(t *testing.T) {
	r := NewResolver(nil)

	a, okA := r.Resolve("Indonesia")
	b, okB := r.Resolve("Indonesia")
	require.Equal(t, okA, okB)
	require.Equal(t, a, b)
}

func TestDisplayRulesIndiaKeyword(t *testing.T) {
	trade := NewResolver(TradeRules)
	display := NewResolver(DisplayRules)

	// "Argentina" has no "in " but does contain "in".
	code, ok := trade.Resolve("Argentina")
	require.True(t, ok)
	require.Equal(t, models.CodeIN, code)

	_, ok = display.Resolve("Argentina")
	require.False(t, ok)

	code, ok = display.Resolve("India")
	require.True(t, ok)
	require.Equal(t, models.CodeIN, code)
}
