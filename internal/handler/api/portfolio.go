package api

import (
	"github.com/labstack/echo/v4"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/usecase"
	xhttp "CountrySwipe/pkg/http"
	xlogger "CountrySwipe/pkg/logger"
)

// ReadModels exposes the latest polled snapshots.
type ReadModels struct {
	Stats     func() models.Snapshot[models.PortfolioStats]
	Positions func() models.Snapshot[[]models.Position]
	Markets   func() models.Snapshot[[]models.Market]
}

type PortfolioHandler struct {
	logger  *xlogger.Logger
	actions *usecase.PortfolioActions
	reads   ReadModels
}

func NewPortfolioHandler(logger *xlogger.Logger, actions *usecase.PortfolioActions, reads ReadModels) *PortfolioHandler {
	return &PortfolioHandler{logger: logger, actions: actions, reads: reads}
}

func (h *PortfolioHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/portfolio/deposit", h.Deposit)
	g.POST("/portfolio/withdraw", h.Withdraw)
	g.GET("/portfolio", h.Stats)
	g.GET("/positions", h.Positions)
	g.GET("/markets", h.Markets)
}

// Deposit starts an approve-then-deposit flow. Progress is reported through /api/tx and /ws.
func (h *PortfolioHandler) Deposit(c echo.Context) error {
	req := &models.AmountRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.actions.StartDeposit(req.Amount); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.AcceptedResponse(c, map[string]string{"amount": req.Amount})
}

func (h *PortfolioHandler) Withdraw(c echo.Context) error {
	req := &models.AmountRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.actions.StartWithdraw(req.Amount); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.AcceptedResponse(c, map[string]string{"amount": req.Amount})
}

func (h *PortfolioHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reads.Stats())
}

func (h *PortfolioHandler) Positions(c echo.Context) error {
	req := &models.PositionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap := h.reads.Positions()
	if len(snap.Value) > req.Limit {
		snap.Value = snap.Value[:req.Limit]
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *PortfolioHandler) Markets(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reads.Markets())
}
