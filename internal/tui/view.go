package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"CountrySwipe/internal/domain/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	badgeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	symbolStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	amountStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	longStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	shortStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const maxCardWidth = 72

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.card())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	if line := m.feedbackLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render("! " + m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("← short  → long  ↑ skip  space stake  f filter  r reset  d dismiss  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) header() string {
	stats := "wallet: --"
	switch m.stats.Status {
	case models.SnapshotSuccess:
		stats = fmt.Sprintf("wallet %s USDT · collateral %s USDT",
			m.stats.Value.WalletBalance.StringFixed(2),
			m.stats.Value.ProtocolCollateral.StringFixed(2))
	case models.SnapshotFailure:
		stats = "wallet: unavailable"
	}
	live := dimStyle.Render("polling")
	if m.live {
		live = successStyle.Render("live")
	}
	return headerStyle.Render("CountrySwipe") + "  " + stats + "  " + live
}

func (m Model) cardWidth() int {
	w := m.width - 4
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) card() string {
	item := m.view.Current
	if item == nil {
		msg := "Loading news..."
		if m.view.Exhausted {
			msg = "No more cards. Press r to shuffle the feed again."
		}
		return cardStyle.Width(m.cardWidth()).Render(dimStyle.Render(msg))
	}

	var lines []string
	lines = append(lines, m.badge(item.Country)+"  "+symbolStyle.Render(item.Symbol))
	lines = append(lines, "", titleStyle.Render(item.Title))
	if item.Description != "" {
		lines = append(lines, "", item.Description)
	}
	return cardStyle.Width(m.cardWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) badge(label string) string {
	if label == "" {
		return badgeStyle.Render("GLOBAL")
	}
	if code, ok := m.badges.Resolve(label); ok {
		return badgeStyle.Render(string(code)) + " " + dimStyle.Render(label)
	}
	return badgeStyle.Render(label)
}

func (m Model) status() string {
	parts := []string{
		fmt.Sprintf("card %d/%d", min(m.view.Cursor+1, m.view.Total), m.view.Total),
		"stake " + amountStyle.Render(m.view.Amount.String()+" USDT"),
	}
	if m.view.Filter != "" {
		parts = append(parts, "filter "+m.view.Filter)
	}
	if m.last != nil && m.last.Card != nil {
		parts = append(parts, "last "+intentLabel(m.last.Intent)+" "+m.last.Card.Country)
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

func intentLabel(i models.Intent) string {
	switch i {
	case models.IntentLong:
		return longStyle.Render("LONG")
	case models.IntentShort:
		return shortStyle.Render("SHORT")
	case models.IntentSkip:
		return dimStyle.Render("SKIP")
	}
	return string(i)
}

func (m Model) feedbackLine() string {
	fb := m.feedback
	switch fb.Kind {
	case models.FeedbackLoading:
		return loadingStyle.Render("… " + fb.Message)
	case models.FeedbackSuccess:
		line := "✓ " + fb.Message
		if fb.TxRef != "" {
			line += " " + dimStyle.Render(shortRef(fb.TxRef))
		}
		return successStyle.Render(line)
	case models.FeedbackError:
		return errorStyle.Render("✗ " + fb.Message)
	}
	return ""
}

func shortRef(ref models.TxRef) string {
	s := string(ref)
	if len(s) <= 14 {
		return s
	}
	return s[:8] + "…" + s[len(s)-4:]
}
