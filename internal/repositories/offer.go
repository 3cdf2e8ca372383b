package repositories

import (
	"context"
	"errors"

	"qirsh/internal/models"

	"gorm.io/gorm"
)

// ErrClaimCapReached is returned when the guarded claim increment
// finds no headroom left on the offer.
var ErrClaimCapReached = errors.New("offer claim cap reached")

// OfferRepository reads bank offers and owns the one mutation this
// core performs on them: the claim counter.
type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// ActiveOffersForBank loads the offers currently inside their window
// for a bank. Branch participation, minimum purchase and cap headroom
// are filtered by the discount engine, which needs the rows anyway to
// compute candidate discounts.
func (r *OfferRepository) ActiveOffersForBank(ctx context.Context, bankID uint) ([]models.BankOffer, error) {
	var offers []models.BankOffer
	err := r.db.WithContext(ctx).
		Where("bank_id = ? AND active = ?", bankID, true).
		Order("created_at ASC, id ASC").
		Find(&offers).Error
	return offers, err
}

func (r *OfferRepository) FindByID(ctx context.Context, id uint) (*models.BankOffer, error) {
	var offer models.BankOffer
	err := r.db.WithContext(ctx).First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// RecordRedemption consumes one claim against an offer and writes the
// redemption row in a single transaction. The increment carries the
// cap guard in its WHERE clause, so quote-time cap checks losing a
// race here fail loudly instead of over-claiming.
func (r *OfferRepository) RecordRedemption(ctx context.Context, redemption *models.OfferRedemption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BankOffer{}).
			Where("id = ? AND (max_claims IS NULL OR total_claims < max_claims)", redemption.BankOfferID).
			Update("total_claims", gorm.Expr("total_claims + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClaimCapReached
		}
		return tx.Create(redemption).Error
	})
}
