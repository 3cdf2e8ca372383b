package models

import (
	"time"

	"github.com/lib/pq"
)

// Offer types.
const (
	OfferTypePercentage = "percentage"
	OfferTypeFixed      = "fixed"
	OfferTypeCashback   = "cashback"
)

// Bank is a read-only collaborator record: issuing banks for BIN
// matching and CliQ-capable banks for the transfer flow.
type Bank struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// Deep-link scheme and host for the bank's mobile app. Empty when
	// the bank has no registered app link.
	CliqScheme string `json:"-"`
	CliqHost   string `json:"-"`

	SupportsCliq bool `gorm:"not null;default:false" json:"supports_cliq"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CardType maps card BIN prefixes to an issuing bank.
type CardType struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	BankID      uint           `gorm:"not null;index" json:"bank_id"`
	Name        string         `gorm:"not null" json:"name"`
	BinPrefixes pq.StringArray `gorm:"type:text[]" json:"-"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

// BankOffer is a discount offer scoped to a bank's cardholders. The
// claim counter is the only field this core mutates, and only through
// the guarded increment in the offer repository.
type BankOffer struct {
	ID     uint `gorm:"primarykey" json:"id"`
	BankID uint `gorm:"not null;index" json:"bank_id"`

	Title     string  `gorm:"not null" json:"title"`
	OfferType string  `gorm:"not null" json:"offer_type"`
	Value     float64 `gorm:"not null" json:"value"`

	MaxDiscountAmount *float64 `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount *float64 `json:"min_purchase_amount,omitempty"`

	// Branch participation: all branches when AllBranches is set,
	// otherwise only the listed branch ids.
	AllBranches bool          `gorm:"not null;default:false" json:"all_branches"`
	BranchIDs   pq.Int64Array `gorm:"type:bigint[]" json:"-"`

	MaxClaims   *int `json:"max_claims,omitempty"`
	TotalClaims int  `gorm:"not null;default:0" json:"total_claims"`

	Active    bool      `gorm:"not null;default:true" json:"active"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// AppliesToBranch reports whether the offer participates at a branch.
func (o *BankOffer) AppliesToBranch(branchID uint) bool {
	if o.AllBranches {
		return true
	}
	for _, id := range o.BranchIDs {
		if uint(id) == branchID {
			return true
		}
	}
	return false
}

// IsLive reports whether the offer window is open and the cap, if any,
// still has headroom. The cap check here is advisory; the redemption
// commit re-validates it atomically.
func (o *BankOffer) IsLive(now time.Time) bool {
	if !o.Active {
		return false
	}
	if now.Before(o.StartDate) || now.After(o.EndDate) {
		return false
	}
	if o.MaxClaims != nil && o.TotalClaims >= *o.MaxClaims {
		return false
	}
	return true
}

// OfferRedemption records one consumed claim against an offer.
type OfferRedemption struct {
	ID             uint      `gorm:"primarykey"`
	BankOfferID    uint      `gorm:"not null;index"`
	CustomerID     uint      `gorm:"not null;index"`
	BranchID       uint      `gorm:"not null"`
	SessionID      uint      `gorm:"not null;uniqueIndex"`
	OriginalAmount float64   `gorm:"not null"`
	DiscountAmount float64   `gorm:"not null"`
	CreatedAt      time.Time
}
