package repositories

import (
	"context"
	"errors"

	"qirsh/internal/models"

	"gorm.io/gorm"
)

// CliqRepository persists bank-transfer settlement requests.
type CliqRepository struct {
	db *gorm.DB
}

func NewCliqRepository(db *gorm.DB) *CliqRepository {
	return &CliqRepository{db: db}
}

func (r *CliqRepository) Create(ctx context.Context, req *models.CliqPaymentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *CliqRepository) FindByRequestID(ctx context.Context, requestID string) (*models.CliqPaymentRequest, error) {
	var req models.CliqPaymentRequest
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// SupersedePending flags every still-pending request of a session as
// superseded, so a retry with another bank leaves exactly one live
// request.
func (r *CliqRepository) SupersedePending(ctx context.Context, sessionID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.CliqPaymentRequest{}).
		Where("session_id = ? AND status = ? AND superseded = ?", sessionID, models.CliqStatusPending, false).
		Update("superseded", true).Error
}

// ResolveFrom conditionally moves a live pending request to its final
// status. Returns false when the request was already resolved or
// expired by a concurrent caller, or was superseded by a retry.
func (r *CliqRepository) ResolveFrom(ctx context.Context, id uint, toStatus string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CliqPaymentRequest{}).
		Where("id = ? AND status = ? AND superseded = ?", id, models.CliqStatusPending, false).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
