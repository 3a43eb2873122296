package txflow

import (
	"context"
	"errors"
	"strings"

	"CountrySwipe/internal/domain/models"
)

const (
	msgRejected     = "Transaction rejected by user."
	msgInsufficient = "Insufficient wallet balance (ETH/USDT)."
	msgTimeout      = "Transaction timed out."
	msgFailed       = "Transaction failed. Please try again."
)

// revertMarkers prefix contract revert reasons, most specific first. Lower case.
var revertMarkers = []string{"countrytrading:", "execution reverted:"}

// Classify maps a signer, RPC or confirmation error onto a failure reason and a user message.
func Classify(err error) (models.FailureReason, string) {
	if err == nil {
		return models.FailUnknown, msgFailed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.FailTimeout, msgTimeout
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "user rejected"), strings.Contains(lower, "user denied"):
		return models.FailUserRejected, msgRejected
	case strings.Contains(lower, "insufficient funds"), strings.Contains(lower, "exceeds balance"):
		return models.FailInsufficientFunds, msgInsufficient
	}

	for _, marker := range revertMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			src := msg
			if len(lower) != len(msg) {
				// lowering changed byte offsets
				src = lower
			}
			reason := src[idx+len(marker):]
			if nl := strings.IndexByte(reason, '\n'); nl >= 0 {
				reason = reason[:nl]
			}
			reason = strings.TrimSpace(reason)
			if reason == "" {
				reason = msgFailed
			}
			return models.FailContractRevert, reason
		}
	}
	if strings.Contains(lower, "execution reverted") {
		return models.FailContractRevert, msgFailed
	}

	return models.FailUnknown, msgFailed
}
