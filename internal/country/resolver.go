// Package country maps free-text country labels onto tradable index codes.
package country

import (
	"strings"

	"CountrySwipe/internal/domain/models"
)

// Rule maps any of its keywords onto Code. Keywords are matched as lower-case substrings.
type Rule struct {
	Code     models.CountryCode
	Keywords []string
}

// TradeRules is the resolution table used for dispatch. Order matters: first match wins.
var TradeRules = []Rule{
	{models.CodeUS, []string{"us", "usa", "united states"}},
	{models.CodeGB, []string{"uk", "gb", "britain", "united kingdom"}},
	{models.CodeEU, []string{"eu", "euro"}},
	{models.CodeJP, []string{"japan", "jp"}},
	{models.CodeCN, []string{"china", "cn"}},
	{models.CodeID, []string{"indonesia", "id"}},
	{models.CodeIN, []string{"india", "in"}},
	{models.CodeSG, []string{"singapore", "sg"}},
}

// DisplayRules is the card badge variant; it only accepts "in " with a trailing space for India.
var DisplayRules = withKeywords(TradeRules, models.CodeIN, []string{"india", "in "})

// weakKeywordLen is the longest keyword still considered ambiguous as a substring.
const weakKeywordLen = 3

// Match is a resolution result.
type Match struct {
	Code    models.CountryCode
	Keyword string
	// Weak is set when the label matched only through a short keyword,
	// e.g. "Russia" resolving to US via "us".
	Weak bool
}

type Resolver struct {
	rules []Rule
}

func NewResolver(rules []Rule) *Resolver {
	if len(rules) == 0 {
		rules = TradeRules
	}
	return &Resolver{rules: rules}
}

// Resolve returns the first code whose keywords occur in the label.
func (r *Resolver) Resolve(label string) (models.CountryCode, bool) {
	m, ok := r.Match(label)
	return m.Code, ok
}

// Match is Resolve with the matching keyword attached.
func (r *Resolver) Match(label string) (Match, bool) {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return Match{}, false
	}

	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return Match{
					Code:    rule.Code,
					Keyword: kw,
					Weak:    len(strings.TrimSpace(kw)) <= weakKeywordLen && lower != strings.TrimSpace(kw),
				}, true
			}
		}
	}
	return Match{}, false
}

func withKeywords(rules []Rule, code models.CountryCode, keywords []string) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r
		if r.Code == code {
			out[i].Keywords = keywords
		}
	}
	return out
}
