package discount

import (
	"context"

	"qirsh/internal/models"
)

// OfferStore reads offers and owns the guarded claim increment.
type OfferStore interface {
	ActiveOffersForBank(ctx context.Context, bankID uint) ([]models.BankOffer, error)
	FindByID(ctx context.Context, id uint) (*models.BankOffer, error)
	RecordRedemption(ctx context.Context, redemption *models.OfferRedemption) error
}

// BankResolver turns a card BIN or an explicit bank id into a bank.
type BankResolver interface {
	FindByID(ctx context.Context, id uint) (*models.Bank, error)
	ResolveBankByBin(ctx context.Context, bin string) (*models.Bank, error)
}

// Service is the discount engine: pure quoting plus redemption
// recording.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Result, error)
	RecordRedemption(ctx context.Context, input RedemptionInput) error
}
