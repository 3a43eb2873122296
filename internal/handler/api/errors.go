package api

import (
	"errors"

	"CountrySwipe/internal/gesture"
	"CountrySwipe/internal/service/newsfeed"
	"CountrySwipe/internal/service/wallet"
	"CountrySwipe/internal/txflow"
	"CountrySwipe/internal/usecase"
	xhttp "CountrySwipe/pkg/http"
)

// appError maps domain errors onto response envelopes. Unknown errors stay 500.
func appError(err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, txflow.ErrBusy):
		return xhttp.ConflictError("ERR_BUSY", "Another transaction is still in progress.").WithError(err)
	case errors.Is(err, gesture.ErrLocked):
		return xhttp.ConflictError("ERR_LOCKED", "The card is still leaving the screen.").WithError(err)
	case errors.Is(err, gesture.ErrNoSession):
		return xhttp.ConflictError("ERR_NO_DRAG", "No drag in progress.").WithError(err)
	case errors.Is(err, usecase.ErrNoCard):
		return xhttp.ConflictError("ERR_NO_CARD", "No card to act on.").WithError(err)
	case errors.Is(err, usecase.ErrNoWallet), errors.Is(err, wallet.ErrNotConnected):
		return xhttp.ConflictError("ERR_NOT_CONNECTED", "Connect a wallet first.").WithError(err)
	case errors.Is(err, wallet.ErrWrongNetwork):
		return xhttp.ConflictError("ERR_WRONG_NETWORK", "Switch to the configured network.").WithError(err)
	case errors.Is(err, usecase.ErrInvalidAmount):
		return xhttp.UnprocessableError("ERR_INVALID_AMOUNT", "Amount must be a positive number.").WithError(err)
	case errors.Is(err, usecase.ErrUnresolvedCountry):
		return xhttp.UnprocessableError("ERR_UNRESOLVED_COUNTRY", "This news country is not tradable.").WithError(err)
	case errors.Is(err, usecase.ErrInsufficientCollateral):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_COLLATERAL", "Stake exceeds your protocol collateral.").WithError(err)
	case errors.Is(err, wallet.ErrNoKey):
		return xhttp.ServiceUnavailableError("No wallet key configured.").WithError(err)
	case errors.Is(err, newsfeed.ErrNoBaseURL):
		return xhttp.ServiceUnavailableError("News backend is not configured.").WithError(err)
	}
	return xhttp.InternalError("Something went wrong").WithError(err)
}
