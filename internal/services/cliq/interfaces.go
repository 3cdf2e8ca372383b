package cliq

import (
	"context"

	"qirsh/internal/models"
)

// Store persists CliQ payment requests.
type Store interface {
	Create(ctx context.Context, req *models.CliqPaymentRequest) error
	FindByRequestID(ctx context.Context, requestID string) (*models.CliqPaymentRequest, error)
	SupersedePending(ctx context.Context, sessionID uint) error
	ResolveFrom(ctx context.Context, id uint, toStatus string) (bool, error)
}

// BankResolver looks up the chosen sender bank for deep-link mapping.
type BankResolver interface {
	FindByID(ctx context.Context, id uint) (*models.Bank, error)
}

// Service issues and resolves bank-transfer settlement requests. The
// session-side consequences of a resolution belong to the payment
// orchestrator; this service only owns the request rows and links.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	Resolve(ctx context.Context, requestID string, outcome Outcome) (*models.CliqPaymentRequest, error)
}
