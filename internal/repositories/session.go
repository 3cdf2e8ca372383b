package repositories

import (
	"context"
	"errors"

	"qirsh/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// SessionRepository persists QR payment sessions. Every status write
// goes through TransitionFrom so a lost race surfaces as a false
// return instead of a silent overwrite.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.QrPaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByCode(ctx context.Context, code string) (*models.QrPaymentSession, error) {
	var session models.QrPaymentSession
	err := r.db.WithContext(ctx).Where("session_code = ?", code).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uint) (*models.QrPaymentSession, error) {
	var session models.QrPaymentSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// TransitionFrom performs a conditional status update: the row is
// written only if its current status is one of fromStatuses. Returns
// false when the guard did not match, which callers treat as a lost
// race or an illegal transition.
func (r *SessionRepository) TransitionFrom(ctx context.Context, id uint, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.QrPaymentSession{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
