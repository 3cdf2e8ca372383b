package cliq

import "qirsh/internal/models"

// Outcome is the bank confirmation result reported by the external
// collaborator.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// StatusPendingBankConfirmation is the client-facing status of a
// freshly initiated request: the session stays in processing until the
// bank confirms or the request expires.
const StatusPendingBankConfirmation = "pending_bank_confirmation"

// InitiateInput carries everything needed to issue one transfer
// request.
type InitiateInput struct {
	SessionID     uint
	BankID        uint
	Amount        float64
	Currency      string
	SenderAlias   string
	ReceiverAlias string
}

// Links are the three payment URLs handed to the client. DeepLink is
// nil when the chosen bank has no registered app scheme.
type Links struct {
	DeepLink      *string `json:"deep_link"`
	UniversalLink string  `json:"universal_link"`
	FallbackURL   string  `json:"fallback_url"`
}

// InitiateResult is the client payload for a new transfer request.
type InitiateResult struct {
	Request *models.CliqPaymentRequest `json:"request"`
	Links   Links                      `json:"links"`
	Status  string                     `json:"status"`
}
