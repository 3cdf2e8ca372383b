package discount

// QuoteInput identifies the bank either by card BIN or explicitly by
// id (the CliQ flow). An explicit BankID bypasses BIN matching.
type QuoteInput struct {
	Amount     float64
	CardBin    string
	BankID     *uint
	BranchID   uint
	CustomerID *uint
}

// Result is the ephemeral quote. It is computed fresh on every request
// and never cached: offers, caps and claim counts can change between
// quote and pay.
type Result struct {
	HasDiscount    bool     `json:"has_discount"`
	DiscountAmount float64  `json:"discount_amount"`
	FinalAmount    float64  `json:"final_amount"`
	IsCashback     bool     `json:"is_cashback"`
	BankOfferID    *uint    `json:"bank_offer_id,omitempty"`
	BankName       string   `json:"bank_name,omitempty"`
	OfferTitle     string   `json:"offer_title,omitempty"`
	OfferType      string   `json:"offer_type,omitempty"`
}

// RedemptionInput records one consumed claim after completion.
type RedemptionInput struct {
	BankOfferID    uint
	CustomerID     uint
	BranchID       uint
	SessionID      uint
	OriginalAmount float64
	DiscountAmount float64
}
