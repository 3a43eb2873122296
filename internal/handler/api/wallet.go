package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	xhttp "CountrySwipe/pkg/http"
	xlogger "CountrySwipe/pkg/logger"
)

// Wallet is the session provider seen by the HTTP layer.
type Wallet interface {
	Connect() (common.Address, error)
	Disconnect()
	Address() (common.Address, bool)
	ChainID() *big.Int
}

type walletView struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	ChainID   string `json:"chain_id"`
}

type WalletHandler struct {
	logger   *xlogger.Logger
	wallet   Wallet
	onChange func()
}

// NewWalletHandler calls onChange after every connect or disconnect.
func NewWalletHandler(logger *xlogger.Logger, wallet Wallet, onChange func()) *WalletHandler {
	if onChange == nil {
		onChange = func() {}
	}
	return &WalletHandler{logger: logger, wallet: wallet, onChange: onChange}
}

func (h *WalletHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/wallet")
	g.GET("", h.Get)
	g.POST("/connect", h.Connect)
	g.POST("/disconnect", h.Disconnect)
}

func (h *WalletHandler) Get(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.view())
}

func (h *WalletHandler) Connect(c echo.Context) error {
	addr, err := h.wallet.Connect()
	if err != nil {
		h.logger.Warn("wallet connect failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	h.logger.Info("wallet connected", xlogger.String("address", addr.Hex()))
	h.onChange()
	return xhttp.SuccessResponse(c, h.view())
}

func (h *WalletHandler) Disconnect(c echo.Context) error {
	h.wallet.Disconnect()
	h.onChange()
	return xhttp.SuccessResponse(c, h.view())
}

func (h *WalletHandler) view() walletView {
	v := walletView{ChainID: h.wallet.ChainID().String()}
	if addr, ok := h.wallet.Address(); ok {
		v.Connected = true
		v.Address = addr.Hex()
	}
	return v
}
