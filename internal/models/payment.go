package models

import "time"

// Payment is the settled-payment record written when a session
// completes. One per completed session.
type Payment struct {
	ID        uint `gorm:"primarykey" json:"-"`
	SessionID uint `gorm:"not null;uniqueIndex" json:"-"`

	CustomerID uint `gorm:"not null;index" json:"-"`
	RetailerID uint `gorm:"not null;index" json:"-"`
	BranchID   uint `gorm:"not null" json:"branch_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"not null" json:"currency"`

	Gateway              string `gorm:"not null" json:"gateway"`
	PaymentMethod        string `gorm:"not null" json:"payment_method"`
	GatewayTransactionID string `json:"-"`

	Metadata  JSON      `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentMethodSetting is the method-enablement flag row. Checked
// before any settlement path touches a session.
type PaymentMethodSetting struct {
	ID        uint   `gorm:"primarykey"`
	Method    string `gorm:"uniqueIndex;not null"`
	Enabled   bool   `gorm:"not null;default:true"`
	UpdatedAt time.Time
}

// Retailer is the session-creating actor. Onboarding and subscription
// billing live elsewhere; this core only reads the subscription flag
// and verifies the API secret hash.
type Retailer struct {
	ID                 uint   `gorm:"primarykey"`
	Name               string `gorm:"not null"`
	ReceiverAlias      string `gorm:"not null"`
	APISecretHash      string `gorm:"not null"`
	SubscriptionActive bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
