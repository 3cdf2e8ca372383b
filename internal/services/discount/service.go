// Package discount implements the discount engine: BIN-to-offer
// matching, best-offer selection and redemption recording.
package discount

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"
	"qirsh/internal/repositories"
)

type service struct {
	offers OfferStore
	banks  BankResolver
}

// NewService creates the discount engine.
func NewService(offers OfferStore, banks BankResolver) Service {
	if offers == nil {
		panic("offer store is required")
	}
	if banks == nil {
		panic("bank resolver is required")
	}
	return &service{
		offers: offers,
		banks:  banks,
	}
}

// Quote returns the best applicable offer for the amount at the
// branch. A card with no matching BIN and no explicit bank yields no
// discount, not an error.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*Result, error) {
	if input.Amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	noDiscount := &Result{
		HasDiscount: false,
		FinalAmount: input.Amount,
	}

	bank, err := s.resolveBank(ctx, input)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return noDiscount, nil
		}
		return nil, fmt.Errorf("failed to resolve bank: %w", err)
	}
	if bank == nil {
		return noDiscount, nil
	}

	offers, err := s.offers.ActiveOffersForBank(ctx, bank.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}

	best := pickBest(offers, input.Amount, input.BranchID, time.Now())
	if best == nil {
		return noDiscount, nil
	}

	discountAmt := discountFor(best, input.Amount)
	final := input.Amount
	if best.OfferType != models.OfferTypeCashback {
		// Cashback is settled outside the charge; the customer still
		// pays the full amount.
		final = round3(input.Amount - discountAmt)
	}

	return &Result{
		HasDiscount:    true,
		DiscountAmount: discountAmt,
		FinalAmount:    final,
		IsCashback:     best.OfferType == models.OfferTypeCashback,
		BankOfferID:    &best.ID,
		BankName:       bank.Name,
		OfferTitle:     best.Title,
		OfferType:      best.OfferType,
	}, nil
}

func (s *service) resolveBank(ctx context.Context, input QuoteInput) (*models.Bank, error) {
	if input.BankID != nil {
		return s.banks.FindByID(ctx, *input.BankID)
	}
	if input.CardBin == "" {
		return nil, nil
	}
	return s.banks.ResolveBankByBin(ctx, input.CardBin)
}

// RecordRedemption commits one claim. The store re-validates the cap
// under the same guard that increments, so a quote that passed earlier
// can still fail here with CapExceeded.
func (s *service) RecordRedemption(ctx context.Context, input RedemptionInput) error {
	err := s.offers.RecordRedemption(ctx, &models.OfferRedemption{
		BankOfferID:    input.BankOfferID,
		CustomerID:     input.CustomerID,
		BranchID:       input.BranchID,
		SessionID:      input.SessionID,
		OriginalAmount: input.OriginalAmount,
		DiscountAmount: input.DiscountAmount,
	})
	if errors.Is(err, repositories.ErrClaimCapReached) {
		return domainErrors.ErrCapExceeded
	}
	if err != nil {
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}

// pickBest filters candidates and selects the winner: highest discount
// amount, ties broken by earliest created_at then lowest id.
func pickBest(offers []models.BankOffer, amount float64, branchID uint, now time.Time) *models.BankOffer {
	var best *models.BankOffer
	var bestDiscount float64

	for i := range offers {
		offer := &offers[i]
		if !offer.IsLive(now) {
			continue
		}
		if !offer.AppliesToBranch(branchID) {
			continue
		}
		// Amounts below the minimum purchase are ineligible for the
		// offer, not zero-discounted.
		if offer.MinPurchaseAmount != nil && amount < *offer.MinPurchaseAmount {
			continue
		}

		d := discountFor(offer, amount)
		if d <= 0 {
			continue
		}

		switch {
		case best == nil, d > bestDiscount:
			best, bestDiscount = offer, d
		case d == bestDiscount:
			if offer.CreatedAt.Before(best.CreatedAt) ||
				(offer.CreatedAt.Equal(best.CreatedAt) && offer.ID < best.ID) {
				best = offer
			}
		}
	}
	return best
}

// discountFor computes the discount an offer yields on an amount.
// Cashback uses the percentage math for display; it is not deducted
// from the settled amount.
func discountFor(offer *models.BankOffer, amount float64) float64 {
	var d float64
	switch offer.OfferType {
	case models.OfferTypePercentage, models.OfferTypeCashback:
		d = amount * offer.Value / 100
		if offer.MaxDiscountAmount != nil && d > *offer.MaxDiscountAmount {
			d = *offer.MaxDiscountAmount
		}
	case models.OfferTypeFixed:
		d = math.Min(offer.Value, amount)
	default:
		return 0
	}
	// A discount can never exceed the amount itself, whatever the
	// offer's value says.
	d = math.Min(d, amount)
	if d < 0 {
		return 0
	}
	return round3(d)
}

// round3 rounds half-up at 3 decimals, the JOD fils precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
