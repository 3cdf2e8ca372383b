package payment

// GatewayResult is the outcome of a synchronous settlement call.
type GatewayResult struct {
	TransactionID string
	Authorized    float64
	Captured      float64
}

// CheckoutIntent is the new-card 3DS handoff created at the gateway.
type CheckoutIntent struct {
	TransactionID string
	ClientSecret  string
}

// CreateSessionInput is the retailer-side session creation request.
type CreateSessionInput struct {
	RetailerID  uint
	BranchID    uint
	BrandID     uint
	CreatedByID uint
	Amount      float64
	Currency    string
	Description string
}

// QuoteRequest selects the discount source for a quote. BankID, when
// set, bypasses BIN matching (the CliQ flow).
type QuoteRequest struct {
	CardBin string `json:"card_bin"`
	BankID  *uint  `json:"bank_id"`
}

// NewCardRequest starts the redirect/3DS new-card path.
type NewCardRequest struct {
	CardBin string `json:"card_bin"`
}

// WalletRequest carries the wallet payment token from Apple/Google
// Pay and, when known, the underlying card BIN for discount matching.
type WalletRequest struct {
	WalletToken string `json:"wallet_token"`
	CardBin     string `json:"card_bin"`
}

// CliqRequest selects the sender bank for a transfer attempt.
type CliqRequest struct {
	BankID      uint   `json:"bank_id"`
	SenderAlias string `json:"sender_alias"`
}

// CheckoutResult is returned by the new-card path. The session stays
// in processing; completion arrives via the processor's callback.
type CheckoutResult struct {
	SessionCode   string  `json:"session_code"`
	FinalAmount   float64 `json:"final_amount"`
	Currency      string  `json:"currency"`
	TransactionID string  `json:"transaction_id"`
	ClientSecret  string  `json:"client_secret"`
}
