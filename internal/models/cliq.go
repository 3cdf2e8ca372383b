package models

import "time"

// CliQ request statuses. Succeeded/failed are written by the bank
// confirmation callback, never by the initiating request.
const (
	CliqStatusPending   = "pending"
	CliqStatusSucceeded = "succeeded"
	CliqStatusFailed    = "failed"
	CliqStatusExpired   = "expired"
)

// CliqPaymentRequest is one bank-transfer settlement attempt. A session
// can spawn several over its lifetime; only the latest is live, earlier
// ones are superseded.
type CliqPaymentRequest struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	RequestID string `gorm:"uniqueIndex;not null" json:"request_id"`

	SessionID uint `gorm:"not null;index" json:"-"`
	BankID    uint `gorm:"not null" json:"bank_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"not null" json:"currency"`

	SenderAlias   string `json:"sender_alias,omitempty"`
	ReceiverAlias string `gorm:"not null" json:"receiver_alias"`

	Status     string `gorm:"not null;default:'pending';index" json:"status"`
	Superseded bool   `gorm:"not null;default:false" json:"-"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// IsExpired reports whether the request's own TTL has elapsed.
func (r *CliqPaymentRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
