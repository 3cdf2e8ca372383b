package session

import "time"

// CreateInput carries everything needed to open a pending session. The
// creating actor is explicit; there is no ambient current-user.
type CreateInput struct {
	RetailerID  uint
	BranchID    uint
	BrandID     uint
	CreatedByID uint
	Amount      float64
	Currency    string
	Description string
	TTL         time.Duration
}

// ProcessingLock is the pricing and routing snapshot written when a
// session is locked into processing. Amounts are fixed here; the
// gateway settles FinalAmount and nothing else.
type ProcessingLock struct {
	OriginalAmount float64
	DiscountAmount float64
	FinalAmount    float64
	BankOfferID    *uint
	Gateway        string
	PaymentMethod  string
}
