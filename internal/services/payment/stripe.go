package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"qirsh/internal/config"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// StripeGateway implements CardGateway and WalletGateway against the
// card processor's API.
type StripeGateway struct{}

// NewStripeGateway sets the API key from the environment.
func NewStripeGateway() *StripeGateway {
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &StripeGateway{}
}

// ChargeToken charges a stored card token for the full amount.
func (g *StripeGateway) ChargeToken(ctx context.Context, token string, amount float64, currency, description string) (*GatewayResult, error) {
	params := &stripe.ChargeParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(minorUnits(amount, currency)),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(description),
	}
	if err := params.SetSource(token); err != nil {
		return nil, fmt.Errorf("invalid card token: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return nil, fmt.Errorf("charge failed: %w", err)
	}
	if !ch.Paid {
		return nil, fmt.Errorf("charge %s not paid, status %s", ch.ID, ch.Status)
	}

	return &GatewayResult{
		TransactionID: ch.ID,
		Authorized:    amount,
		Captured:      amount,
	}, nil
}

// CreateCheckout opens a payment intent for the new-card 3DS handoff.
// The client confirms it with the returned secret; completion arrives
// through the processor callback, not here.
func (g *StripeGateway) CreateCheckout(ctx context.Context, amount float64, currency, description string) (*CheckoutIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(minorUnits(amount, currency)),
		Currency:           stripe.String(strings.ToLower(currency)),
		Description:        stripe.String(description),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &CheckoutIntent{
		TransactionID: pi.ID,
		ClientSecret:  pi.ClientSecret,
	}, nil
}

// AuthorizeAndCapture confirms a wallet payment method in one call,
// capturing the full amount immediately.
func (g *StripeGateway) AuthorizeAndCapture(ctx context.Context, walletToken string, amount float64, currency string) (*GatewayResult, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(minorUnits(amount, currency)),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethod:      stripe.String(walletToken),
		Confirm:            stripe.Bool(true),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("wallet charge failed: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("wallet charge %s not settled, status %s", pi.ID, pi.Status)
	}

	return &GatewayResult{
		TransactionID: pi.ID,
		Authorized:    majorUnits(pi.Amount, currency),
		Captured:      majorUnits(pi.AmountReceived, currency),
	}, nil
}

// minorUnits converts an amount to the currency's smallest unit. JOD
// carries three decimals.
func minorUnits(amount float64, currency string) int64 {
	return int64(math.Round(amount * float64(unitFactor(currency))))
}

func majorUnits(amount int64, currency string) float64 {
	return float64(amount) / float64(unitFactor(currency))
}

func unitFactor(currency string) int64 {
	switch strings.ToUpper(currency) {
	case "JOD", "KWD", "BHD":
		return 1000
	default:
		return 100
	}
}
