package api

import (
	"github.com/labstack/echo/v4"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/usecase"
	xhttp "CountrySwipe/pkg/http"
	xlogger "CountrySwipe/pkg/logger"
)

// SessionHandler exposes the swipe session: deck, gestures, stake and feedback.
type SessionHandler struct {
	logger  *xlogger.Logger
	session *usecase.Session
}

func NewSessionHandler(logger *xlogger.Logger, session *usecase.Session) *SessionHandler {
	return &SessionHandler{logger: logger, session: session}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/deck", h.Deck)
	g.POST("/deck/load", h.Load)
	g.POST("/deck/reset", h.Reset)
	g.POST("/deck/filter", h.Filter)
	g.POST("/deck/filter/toggle", h.ToggleFilter)

	g.POST("/swipe/press", h.Press)
	g.POST("/swipe/move", h.Move)
	g.POST("/swipe/release", h.Release)
	g.POST("/swipe/act", h.Act)

	g.POST("/amount/cycle", h.CycleAmount)

	g.GET("/tx", h.Tx)
	g.POST("/tx/dismiss", h.Dismiss)
}

func (h *SessionHandler) Deck(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.View())
}

func (h *SessionHandler) Load(c echo.Context) error {
	view, err := h.session.LoadFeed(c.Request().Context())
	if err != nil {
		h.logger.Error("load feed failed", xlogger.Error(err))
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *SessionHandler) Reset(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.Reset(c.Request().Context()))
}

func (h *SessionHandler) Filter(c echo.Context) error {
	req := &models.FilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.session.SetFilter(c.Request().Context(), req.Country))
}

func (h *SessionHandler) ToggleFilter(c echo.Context) error {
	req := &models.FilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.session.ToggleFilter(c.Request().Context(), req.Country))
}

func (h *SessionHandler) Press(c echo.Context) error {
	req := &models.PointRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.session.Press(req.X, req.Y); err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, h.session.View())
}

func (h *SessionHandler) Move(c echo.Context) error {
	req := &models.PointRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	fb, err := h.session.Move(c.Request().Context(), req.X, req.Y)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, fb)
}

func (h *SessionHandler) Release(c echo.Context) error {
	res, err := h.session.Release(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SessionHandler) Act(c echo.Context) error {
	req := &models.ActRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	intent, err := models.ParseIntent(req.Intent)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	res, err := h.session.Act(c.Request().Context(), intent)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SessionHandler) CycleAmount(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{"amount": h.session.CycleAmount()})
}

func (h *SessionHandler) Tx(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.Feedback())
}

func (h *SessionHandler) Dismiss(c echo.Context) error {
	h.session.DismissFeedback()
	return xhttp.SuccessResponse(c, h.session.Feedback())
}

func (h *SessionHandler) fail(c echo.Context, err error) error {
	return xhttp.AppErrorResponse(c, appError(err))
}
