package models

import "time"

// TxPhase is a state of the transaction feedback machine.
type TxPhase string

const (
	TxIdle      TxPhase = "idle"
	TxSigning   TxPhase = "signing"
	TxSubmitted TxPhase = "submitted"
	TxConfirmed TxPhase = "confirmed"
	TxFailed    TxPhase = "failed"
)

// FailureReason classifies a failed action.
type FailureReason string

const (
	FailUserRejected      FailureReason = "user_rejected"
	FailInsufficientFunds FailureReason = "insufficient_funds"
	FailContractRevert    FailureReason = "contract_revert"
	FailTimeout           FailureReason = "timeout"
	FailUnknown           FailureReason = "unknown"
)

type TxState struct {
	Phase     TxPhase       `json:"phase"`
	Label     string        `json:"label,omitempty"`
	TxRef     TxRef         `json:"tx_ref,omitempty"`
	Reason    FailureReason `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InFlight reports whether the action is still awaiting its outcome.
func (s TxState) InFlight() bool {
	return s.Phase == TxSigning || s.Phase == TxSubmitted
}

// Terminal reports whether the action has resolved.
func (s TxState) Terminal() bool {
	return s.Phase == TxConfirmed || s.Phase == TxFailed
}

type FeedbackKind string

const (
	FeedbackNone    FeedbackKind = "none"
	FeedbackLoading FeedbackKind = "loading"
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback is the user-facing rendering of a TxState.
type Feedback struct {
	Kind    FeedbackKind `json:"kind"`
	Message string       `json:"message,omitempty"`
	TxRef   TxRef        `json:"tx_ref,omitempty"`
}

func (s TxState) Feedback() Feedback {
	switch s.Phase {
	case TxSigning:
		return Feedback{Kind: FeedbackLoading, Message: s.Label}
	case TxSubmitted:
		return Feedback{Kind: FeedbackLoading, Message: "Waiting for confirmation...", TxRef: s.TxRef}
	case TxConfirmed:
		return Feedback{Kind: FeedbackSuccess, Message: s.Message, TxRef: s.TxRef}
	case TxFailed:
		return Feedback{Kind: FeedbackError, Message: s.Message}
	}
	return Feedback{Kind: FeedbackNone}
}
