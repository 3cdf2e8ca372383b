// Package cliq manages bank-transfer settlement requests: short-lived
// CliQ requests with deep-link payment URLs. A session can outlive one
// request and spawn another with a different bank; only the newest
// request is live.
package cliq

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"qirsh/internal/config"
	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"

	"github.com/google/uuid"
)

const (
	universalLinkBase = "https://pay.cliq.jo/r"
	fallbackURLBase   = "https://checkout.qirsh.app/cliq"
)

type service struct {
	store Store
	banks BankResolver
}

// NewService creates the CliQ request manager.
func NewService(store Store, banks BankResolver) Service {
	if store == nil {
		panic("cliq store is required")
	}
	if banks == nil {
		panic("bank resolver is required")
	}
	return &service{
		store: store,
		banks: banks,
	}
}

// Initiate issues a new time-bounded transfer request and builds its
// payment links. Any still-pending request of the session is
// superseded first.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	bank, err := s.banks.FindByID(ctx, input.BankID)
	if err != nil {
		return nil, domainErrors.ErrBankNotFound
	}
	if !bank.SupportsCliq {
		return nil, domainErrors.ErrBankNotFound
	}

	if err := s.store.SupersedePending(ctx, input.SessionID); err != nil {
		return nil, fmt.Errorf("failed to supersede pending requests: %w", err)
	}

	req := &models.CliqPaymentRequest{
		RequestID:     uuid.NewString(),
		SessionID:     input.SessionID,
		BankID:        input.BankID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		SenderAlias:   input.SenderAlias,
		ReceiverAlias: input.ReceiverAlias,
		Status:        models.CliqStatusPending,
		ExpiresAt:     time.Now().Add(config.CliqRequestTTL()),
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save cliq request: %w", err)
	}

	return &InitiateResult{
		Request: req,
		Links:   buildLinks(bank, req),
		Status:  StatusPendingBankConfirmation,
	}, nil
}

// Resolve moves a pending request to its final status on behalf of the
// bank confirmation collaborator. An expired request can no longer
// succeed. The session-side transition is the caller's job.
func (s *service) Resolve(ctx context.Context, requestID string, outcome Outcome) (*models.CliqPaymentRequest, error) {
	req, err := s.store.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, domainErrors.ErrCliqRequestNotFound
	}

	if req.Status != models.CliqStatusPending || req.Superseded {
		return nil, domainErrors.ErrInvalidTransition
	}

	target := models.CliqStatusFailed
	if outcome == OutcomeSucceeded {
		if req.IsExpired(time.Now()) {
			// Expire lazily instead of accepting a late confirmation.
			// The request is returned so the caller can free the
			// parent session.
			if ok, err := s.store.ResolveFrom(ctx, req.ID, models.CliqStatusExpired); err != nil {
				return nil, fmt.Errorf("failed to expire cliq request: %w", err)
			} else if ok {
				req.Status = models.CliqStatusExpired
			}
			return req, domainErrors.ErrCliqRequestExpired
		}
		target = models.CliqStatusSucceeded
	}

	ok, err := s.store.ResolveFrom(ctx, req.ID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cliq request: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrInvalidTransition
	}

	req.Status = target
	return req, nil
}

// buildLinks is pure string templating; no network calls. All three
// URLs carry the amount, request id and merchant alias.
func buildLinks(bank *models.Bank, req *models.CliqPaymentRequest) Links {
	params := url.Values{}
	params.Set("amount", fmt.Sprintf("%.3f", req.Amount))
	params.Set("currency", req.Currency)
	params.Set("request_id", req.RequestID)
	params.Set("alias", req.ReceiverAlias)
	query := params.Encode()

	links := Links{
		UniversalLink: fmt.Sprintf("%s/%s?%s", universalLinkBase, req.RequestID, query),
		FallbackURL:   fmt.Sprintf("%s?%s", fallbackURLBase, query),
	}

	if bank.CliqScheme != "" && bank.CliqHost != "" {
		deep := fmt.Sprintf("%s://%s/pay?%s", bank.CliqScheme, bank.CliqHost, query)
		links.DeepLink = &deep
	}
	return links
}
