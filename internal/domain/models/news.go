package models

import "strings"

// NewsItem is one swipeable card. Immutable once fetched.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Country     string `json:"country,omitempty"`
	Symbol      string `json:"symbol"`
}

var newsSymbols = map[string]string{
	"Indonesia":     "IDN Index",
	"Japan":         "JPN Index",
	"United States": "USA Index",
	"Singapore":     "SGP Index",
}

// NewsSymbol derives the display symbol shown on a card for a country label.
func NewsSymbol(country string) string {
	if s, ok := newsSymbols[country]; ok {
		return s
	}
	if strings.TrimSpace(country) != "" {
		return country
	}
	return "Global Index"
}
