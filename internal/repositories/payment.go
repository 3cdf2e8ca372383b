package repositories

import (
	"context"
	"errors"

	"qirsh/internal/models"
	"qirsh/internal/repositories/cache"

	"gorm.io/gorm"
)

// PaymentRepository writes settled-payment records and reads the
// method-enablement flags and retailer rows the orchestrator guards on.
type PaymentRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewPaymentRepository(db *gorm.DB, cacheSvc *cache.CacheService) *PaymentRepository {
	return &PaymentRepository{db: db, cache: cacheSvc}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// IsMethodEnabled reads a method flag, via cache when available. An
// unknown method is treated as disabled.
func (r *PaymentRepository) IsMethodEnabled(ctx context.Context, method string) (bool, error) {
	if r.cache != nil {
		var enabled bool
		if ok, err := r.cache.Get(ctx, cache.MethodFlagKey(method), &enabled); err == nil && ok {
			return enabled, nil
		}
	}

	var setting models.PaymentMethodSetting
	err := r.db.WithContext(ctx).Where("method = ?", method).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, cache.MethodFlagKey(method), setting.Enabled)
	}
	return setting.Enabled, nil
}

func (r *PaymentRepository) FindRetailer(ctx context.Context, id uint) (*models.Retailer, error) {
	var retailer models.Retailer
	err := r.db.WithContext(ctx).First(&retailer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &retailer, nil
}
