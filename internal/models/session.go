package models

import (
	"time"
)

// Session statuses. Exactly one is current at any time.
const (
	SessionStatusPending    = "pending"
	SessionStatusScanned    = "scanned"
	SessionStatusProcessing = "processing"
	SessionStatusCompleted  = "completed"
	SessionStatusExpired    = "expired"
	SessionStatusCancelled  = "cancelled"
)

// Gateways recorded on a session once a payment attempt is made.
const (
	GatewayCardProcessor = "card_processor"
	GatewayCliq          = "cliq"
)

// Payment methods.
const (
	MethodNewCard   = "card"
	MethodSavedCard = "saved_card"
	MethodWallet    = "wallet"
	MethodCliq      = "cliq"
)

// QrPaymentSession is the central entity: one row per presented QR.
// The session code is the only identifier ever exposed to customers.
type QrPaymentSession struct {
	ID          uint   `gorm:"primarykey" json:"-"`
	SessionCode string `gorm:"uniqueIndex;not null" json:"session_code"`

	RetailerID uint `gorm:"not null;index" json:"-"`
	BranchID   uint `gorm:"not null;index" json:"branch_id"`
	BrandID    uint `gorm:"not null" json:"brand_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"not null;default:'JOD'" json:"currency"`

	// Discount pricing, null until a discount has been locked in.
	OriginalAmount *float64 `json:"original_amount,omitempty"`
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
	FinalAmount    *float64 `json:"final_amount,omitempty"`
	BankOfferID    *uint    `json:"bank_offer_id,omitempty"`

	CustomerID *uint  `gorm:"index" json:"-"`
	PaymentID  *uint  `json:"-"`
	Status     string `gorm:"not null;default:'pending';index" json:"status"`

	Gateway              string `json:"gateway,omitempty"`
	PaymentMethod        string `json:"payment_method,omitempty"`
	GatewayTransactionID string `json:"-"`

	Description string `json:"description,omitempty"`

	CreatedByID   uint  `gorm:"not null" json:"-"`
	CancelledByID *uint `json:"-"`

	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	ScannedAt   *time.Time `json:"scanned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
}

// IsExpired reports whether the session's TTL has elapsed, regardless
// of whether the expired status has been persisted yet.
func (s *QrPaymentSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CanBeScanned reports whether a customer may claim this session.
func (s *QrPaymentSession) CanBeScanned(now time.Time) bool {
	return s.Status == SessionStatusPending && !s.IsExpired(now)
}

// CanBePaid reports whether a payment attempt may start.
func (s *QrPaymentSession) CanBePaid(now time.Time) bool {
	return s.Status == SessionStatusScanned && !s.IsExpired(now)
}

// CanBeCancelled reports whether the retailer may still cancel.
func (s *QrPaymentSession) CanBeCancelled() bool {
	return s.Status == SessionStatusPending || s.Status == SessionStatusScanned
}
