package repositories

import (
	"context"
	"errors"
	"strings"

	"qirsh/internal/models"
	"qirsh/internal/repositories/cache"

	"gorm.io/gorm"
)

// BankRepository reads banks and the BIN prefix tables. Both change
// rarely, so list reads go through the cache.
type BankRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewBankRepository(db *gorm.DB, cacheSvc *cache.CacheService) *BankRepository {
	return &BankRepository{db: db, cache: cacheSvc}
}

func (r *BankRepository) FindByID(ctx context.Context, id uint) (*models.Bank, error) {
	var bank models.Bank
	err := r.db.WithContext(ctx).First(&bank, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bank, nil
}

// ListCliqBanks returns the banks selectable in the transfer flow.
func (r *BankRepository) ListCliqBanks(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	if r.cache != nil {
		if ok, err := r.cache.Get(ctx, cache.BankListKey(), &banks); err == nil && ok {
			return banks, nil
		}
	}

	err := r.db.WithContext(ctx).
		Where("supports_cliq = ?", true).
		Order("name ASC").
		Find(&banks).Error
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, cache.BankListKey(), banks)
	}
	return banks, nil
}

// ResolveBankByBin matches a card BIN against the known card-type
// prefix tables and returns the issuing bank. The longest matching
// prefix wins. No match is not an error: it simply means no discount.
func (r *BankRepository) ResolveBankByBin(ctx context.Context, bin string) (*models.Bank, error) {
	var cardTypes []models.CardType
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&cardTypes).Error
	if err != nil {
		return nil, err
	}

	var bestBankID uint
	bestLen := 0
	for _, ct := range cardTypes {
		for _, prefix := range ct.BinPrefixes {
			if prefix == "" {
				continue
			}
			if strings.HasPrefix(bin, prefix) && len(prefix) > bestLen {
				bestBankID = ct.BankID
				bestLen = len(prefix)
			}
		}
	}
	if bestLen == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, bestBankID)
}
