package payment

import (
	"context"

	"qirsh/internal/models"
	"qirsh/internal/services/cliq"
	"qirsh/internal/services/discount"
	"qirsh/internal/services/session"
)

// SessionManager is the slice of the lifecycle manager the
// orchestrator drives.
type SessionManager interface {
	Create(ctx context.Context, input session.CreateInput) (*models.QrPaymentSession, error)
	Get(ctx context.Context, code string) (*models.QrPaymentSession, error)
	GetByID(ctx context.Context, id uint) (*models.QrPaymentSession, error)
	Scan(ctx context.Context, code string, customerID uint) (*models.QrPaymentSession, error)
	BeginProcessing(ctx context.Context, sess *models.QrPaymentSession, lock session.ProcessingLock) (*models.QrPaymentSession, error)
	Complete(ctx context.Context, sess *models.QrPaymentSession, paymentID uint, transactionID string) (*models.QrPaymentSession, error)
	ReleaseToScanned(ctx context.Context, sess *models.QrPaymentSession) error
	Cancel(ctx context.Context, sess *models.QrPaymentSession, actorID uint) (*models.QrPaymentSession, error)
}

// DiscountEngine quotes and records redemptions.
type DiscountEngine interface {
	Quote(ctx context.Context, input discount.QuoteInput) (*discount.Result, error)
	RecordRedemption(ctx context.Context, input discount.RedemptionInput) error
}

// CliqManager issues and resolves bank-transfer requests.
type CliqManager interface {
	Initiate(ctx context.Context, input cliq.InitiateInput) (*cliq.InitiateResult, error)
	Resolve(ctx context.Context, requestID string, outcome cliq.Outcome) (*models.CliqPaymentRequest, error)
}

// CardGateway is the synchronous card processor: token charges and the
// new-card 3DS handoff. Implementations must honor the context
// deadline.
type CardGateway interface {
	ChargeToken(ctx context.Context, token string, amount float64, currency, description string) (*GatewayResult, error)
	CreateCheckout(ctx context.Context, amount float64, currency, description string) (*CheckoutIntent, error)
}

// WalletGateway performs the Apple/Google Pay authorize-then-capture
// in one call. Captured and authorized amounts are both reported; this
// design always captures in full.
type WalletGateway interface {
	AuthorizeAndCapture(ctx context.Context, walletToken string, amount float64, currency string) (*GatewayResult, error)
}

// Store covers the payment rows, method flags and retailer reads.
type Store interface {
	Create(ctx context.Context, payment *models.Payment) error
	IsMethodEnabled(ctx context.Context, method string) (bool, error)
	FindRetailer(ctx context.Context, id uint) (*models.Retailer, error)
}

// CardStore reads stored card tokens.
type CardStore interface {
	FindForCustomer(ctx context.Context, cardID, customerID uint) (*models.TokenizedCard, error)
}

// Service is the payment orchestrator.
type Service interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*models.QrPaymentSession, error)
	QuoteDiscount(ctx context.Context, code string, customerID uint, input QuoteRequest) (*discount.Result, error)
	PayWithNewCard(ctx context.Context, code string, customerID uint, input NewCardRequest) (*CheckoutResult, error)
	PayWithSavedCard(ctx context.Context, code string, customerID uint, cardID uint) (*models.QrPaymentSession, error)
	PayWithWallet(ctx context.Context, code string, customerID uint, input WalletRequest) (*models.QrPaymentSession, error)
	PayWithCliq(ctx context.Context, code string, customerID uint, input CliqRequest) (*cliq.InitiateResult, error)
	ResolveCliq(ctx context.Context, requestID string, outcome cliq.Outcome) (*models.QrPaymentSession, error)
}
