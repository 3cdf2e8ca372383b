package repositories

import (
	"context"
	"errors"

	"qirsh/internal/models"

	"gorm.io/gorm"
)

// CardRepository reads stored card tokens. Card lifecycle is owned by
// the card management surface.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// FindForCustomer loads an active card only when it belongs to the
// given customer.
func (r *CardRepository) FindForCustomer(ctx context.Context, cardID, customerID uint) (*models.TokenizedCard, error) {
	var card models.TokenizedCard
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ? AND status = ?", cardID, customerID, "active").
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) ListForCustomer(ctx context.Context, customerID uint) ([]models.TokenizedCard, error) {
	var cards []models.TokenizedCard
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, "active").
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}
