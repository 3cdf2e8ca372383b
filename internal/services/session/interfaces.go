package session

import (
	"context"

	"qirsh/internal/models"
)

// Store is the persistence contract the lifecycle manager needs. Every
// status write is a conditional update: TransitionFrom must only write
// when the row's current status is one of fromStatuses and must report
// whether it did.
type Store interface {
	Create(ctx context.Context, session *models.QrPaymentSession) error
	FindByCode(ctx context.Context, code string) (*models.QrPaymentSession, error)
	FindByID(ctx context.Context, id uint) (*models.QrPaymentSession, error)
	TransitionFrom(ctx context.Context, id uint, fromStatuses []string, updates map[string]interface{}) (bool, error)
}

// Cache drops stale poll entries after a transition.
type Cache interface {
	InvalidateSession(ctx context.Context, code string) error
}

// Service is the session state machine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.QrPaymentSession, error)
	Get(ctx context.Context, code string) (*models.QrPaymentSession, error)
	GetByID(ctx context.Context, id uint) (*models.QrPaymentSession, error)
	Scan(ctx context.Context, code string, customerID uint) (*models.QrPaymentSession, error)
	BeginProcessing(ctx context.Context, session *models.QrPaymentSession, lock ProcessingLock) (*models.QrPaymentSession, error)
	Complete(ctx context.Context, session *models.QrPaymentSession, paymentID uint, transactionID string) (*models.QrPaymentSession, error)
	ReleaseToScanned(ctx context.Context, session *models.QrPaymentSession) error
	Cancel(ctx context.Context, session *models.QrPaymentSession, actorID uint) (*models.QrPaymentSession, error)
	Expire(ctx context.Context, session *models.QrPaymentSession) (*models.QrPaymentSession, error)
}
