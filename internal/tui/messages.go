package tui

import (
	"github.com/shopspring/decimal"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/service/eventstream"
	"CountrySwipe/internal/usecase"
)

type deckMsg struct {
	view usecase.DeckView
}

type commitMsg struct {
	res usecase.CommitResult
}

type amountMsg struct {
	amount decimal.Decimal
}

type feedbackMsg struct {
	fb models.Feedback
}

type statsMsg struct {
	snap models.Snapshot[models.PortfolioStats]
}

type errMsg struct {
	err error
}

type frameMsg struct {
	frame eventstream.Frame
}

type streamClosedMsg struct {
	err error
}

type streamReadyMsg struct {
	frames <-chan eventstream.Frame
	errs   <-chan error
}

type reconnectMsg struct{}

type tickMsg struct{}
