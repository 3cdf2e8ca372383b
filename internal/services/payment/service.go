// Package payment implements the payment orchestrator. Every
// settlement path follows the same choreography: validate the session
// is payable, quote the discount fresh, lock the session into
// processing, call the gateway, then either complete and record the
// redemption or release the session back to scanned.
//
// The gateway call always happens outside any database transaction;
// the transitions into and out of processing are each atomic on their
// own.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"qirsh/internal/config"
	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"
	"qirsh/internal/services/cliq"
	"qirsh/internal/services/discount"
	"qirsh/internal/services/session"
	"qirsh/internal/validation"
)

type service struct {
	sessions       SessionManager
	discounts      DiscountEngine
	cliqRequests   CliqManager
	cardGateway    CardGateway
	walletGateway  WalletGateway
	store          Store
	cards          CardStore
	gatewayTimeout time.Duration
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Sessions      SessionManager
	Discounts     DiscountEngine
	CliqRequests  CliqManager
	CardGateway   CardGateway
	WalletGateway WalletGateway
	Store         Store
	Cards         CardStore
}

// NewService creates the payment orchestrator.
func NewService(cfg Config) Service {
	if cfg.Sessions == nil {
		panic("session manager is required")
	}
	if cfg.Discounts == nil {
		panic("discount engine is required")
	}
	if cfg.Store == nil {
		panic("payment store is required")
	}

	return &service{
		sessions:       cfg.Sessions,
		discounts:      cfg.Discounts,
		cliqRequests:   cfg.CliqRequests,
		cardGateway:    cfg.CardGateway,
		walletGateway:  cfg.WalletGateway,
		store:          cfg.Store,
		cards:          cfg.Cards,
		gatewayTimeout: config.GatewayTimeout(),
	}
}

// CreateSession opens a pending session for a retailer. Requires an
// active subscription and at least one enabled method.
func (s *service) CreateSession(ctx context.Context, input CreateSessionInput) (*models.QrPaymentSession, error) {
	if err := validation.ValidateSessionAmount(input.Amount); err != nil {
		return nil, domainErrors.ErrInvalidAmount
	}
	if err := validation.ValidateCurrency(input.Currency); err != nil {
		return nil, domainErrors.ErrInvalidAmount
	}

	retailer, err := s.store.FindRetailer(ctx, input.RetailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load retailer: %w", err)
	}
	if !retailer.SubscriptionActive {
		return nil, domainErrors.ErrSubscriptionInactive
	}

	if err := s.requireAnyMethod(ctx); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = config.DefaultCurrency()
	}

	return s.sessions.Create(ctx, session.CreateInput{
		RetailerID:  input.RetailerID,
		BranchID:    input.BranchID,
		BrandID:     input.BrandID,
		CreatedByID: input.CreatedByID,
		Amount:      input.Amount,
		Currency:    currency,
		Description: input.Description,
		TTL:         config.SessionTTL(),
	})
}

// QuoteDiscount prices a payable session for the customer who scanned
// it. The result is never cached: caps and claim counts move.
func (s *service) QuoteDiscount(ctx context.Context, code string, customerID uint, input QuoteRequest) (*discount.Result, error) {
	sess, err := s.loadPayable(ctx, code, customerID)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, sess, input.CardBin, input.BankID)
}

// PayWithNewCard creates the redirect/3DS handoff. The session is left
// in processing; the card processor's callback collaborator completes
// it.
func (s *service) PayWithNewCard(ctx context.Context, code string, customerID uint, input NewCardRequest) (*CheckoutResult, error) {
	if err := s.requireMethod(ctx, models.MethodNewCard); err != nil {
		return nil, err
	}

	sess, err := s.loadPayable(ctx, code, customerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, sess, input.CardBin, nil)
	if err != nil {
		return nil, err
	}

	sess, err = s.sessions.BeginProcessing(ctx, sess, lockFromQuote(quote, sess.Amount, models.GatewayCardProcessor, models.MethodNewCard))
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	intent, err := s.cardGateway.CreateCheckout(gctx, *sess.FinalAmount, sess.Currency, sess.Description)
	if err != nil {
		s.release(ctx, sess)
		return nil, gatewayFailure(err)
	}

	return &CheckoutResult{
		SessionCode:   sess.SessionCode,
		FinalAmount:   *sess.FinalAmount,
		Currency:      sess.Currency,
		TransactionID: intent.TransactionID,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

// PayWithSavedCard charges a stored token synchronously.
func (s *service) PayWithSavedCard(ctx context.Context, code string, customerID uint, cardID uint) (*models.QrPaymentSession, error) {
	if err := s.requireMethod(ctx, models.MethodSavedCard); err != nil {
		return nil, err
	}

	card, err := s.cards.FindForCustomer(ctx, cardID, customerID)
	if err != nil {
		return nil, domainErrors.ErrCardNotFound
	}

	sess, err := s.loadPayable(ctx, code, customerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, sess, card.Bin, nil)
	if err != nil {
		return nil, err
	}

	sess, err = s.sessions.BeginProcessing(ctx, sess, lockFromQuote(quote, sess.Amount, models.GatewayCardProcessor, models.MethodSavedCard))
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.cardGateway.ChargeToken(gctx, card.Token, *sess.FinalAmount, sess.Currency, sess.Description)
	if err != nil {
		s.release(ctx, sess)
		return nil, gatewayFailure(err)
	}

	return s.settle(ctx, sess, result)
}

// PayWithWallet performs the immediate-full-capture wallet charge. A
// partial capture is treated as a gateway failure: the session must
// never be left in processing or falsely completed.
func (s *service) PayWithWallet(ctx context.Context, code string, customerID uint, input WalletRequest) (*models.QrPaymentSession, error) {
	if err := s.requireMethod(ctx, models.MethodWallet); err != nil {
		return nil, err
	}

	sess, err := s.loadPayable(ctx, code, customerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, sess, input.CardBin, nil)
	if err != nil {
		return nil, err
	}

	sess, err = s.sessions.BeginProcessing(ctx, sess, lockFromQuote(quote, sess.Amount, models.GatewayCardProcessor, models.MethodWallet))
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.walletGateway.AuthorizeAndCapture(gctx, input.WalletToken, *sess.FinalAmount, sess.Currency)
	if err != nil {
		s.release(ctx, sess)
		return nil, gatewayFailure(err)
	}
	if result.Captured != result.Authorized || result.Captured != *sess.FinalAmount {
		// Authorized but not fully captured.
		s.release(ctx, sess)
		return nil, gatewayFailure(fmt.Errorf("partial capture: authorized %.3f captured %.3f", result.Authorized, result.Captured))
	}

	return s.settle(ctx, sess, result)
}

// PayWithCliq locks the session and issues a bank-transfer request.
// Unlike the card paths the session stays in processing; the bank
// confirmation collaborator drives the rest through ResolveCliq.
func (s *service) PayWithCliq(ctx context.Context, code string, customerID uint, input CliqRequest) (*cliq.InitiateResult, error) {
	if err := s.requireMethod(ctx, models.MethodCliq); err != nil {
		return nil, err
	}

	sess, err := s.loadPayable(ctx, code, customerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, sess, "", &input.BankID)
	if err != nil {
		return nil, err
	}

	retailer, err := s.store.FindRetailer(ctx, sess.RetailerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load retailer: %w", err)
	}

	sess, err = s.sessions.BeginProcessing(ctx, sess, lockFromQuote(quote, sess.Amount, models.GatewayCliq, models.MethodCliq))
	if err != nil {
		return nil, err
	}

	result, err := s.cliqRequests.Initiate(ctx, cliq.InitiateInput{
		SessionID:     sess.ID,
		BankID:        input.BankID,
		Amount:        *sess.FinalAmount,
		Currency:      sess.Currency,
		SenderAlias:   input.SenderAlias,
		ReceiverAlias: retailer.ReceiverAlias,
	})
	if err != nil {
		s.release(ctx, sess)
		return nil, err
	}
	return result, nil
}

// ResolveCliq is the callback contract for the bank confirmation
// collaborator: it finalizes the request, then completes or releases
// the parent session.
func (s *service) ResolveCliq(ctx context.Context, requestID string, outcome cliq.Outcome) (*models.QrPaymentSession, error) {
	req, err := s.cliqRequests.Resolve(ctx, requestID, outcome)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCliqRequestExpired) && req != nil {
			// Late or lapsed confirmation: free the session for a retry.
			if sess, serr := s.sessions.GetByID(ctx, req.SessionID); serr == nil && sess.Status == models.SessionStatusProcessing {
				s.release(ctx, sess)
			}
		}
		return nil, err
	}

	sess, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionStatusProcessing {
		return nil, domainErrors.ErrInvalidTransition
	}

	if req.Status != models.CliqStatusSucceeded {
		s.release(ctx, sess)
		return sess, nil
	}

	return s.settle(ctx, sess, &GatewayResult{
		TransactionID: req.RequestID,
		Authorized:    req.Amount,
		Captured:      req.Amount,
	})
}

// settle writes the payment record, completes the session and records
// the redemption.
func (s *service) settle(ctx context.Context, sess *models.QrPaymentSession, result *GatewayResult) (*models.QrPaymentSession, error) {
	paymentRecord := &models.Payment{
		SessionID:            sess.ID,
		CustomerID:           derefUint(sess.CustomerID),
		RetailerID:           sess.RetailerID,
		BranchID:             sess.BranchID,
		Amount:               *sess.FinalAmount,
		Currency:             sess.Currency,
		Gateway:              sess.Gateway,
		PaymentMethod:        sess.PaymentMethod,
		GatewayTransactionID: result.TransactionID,
	}
	if err := s.store.Create(ctx, paymentRecord); err != nil {
		// The charge went through but we cannot persist; do not release
		// (a retry would double-charge). Surface for reconciliation.
		log.Printf("CRITICAL: payment persisted at gateway but not locally, session=%s tx=%s: %v",
			sess.SessionCode, result.TransactionID, err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	sess, err := s.sessions.Complete(ctx, sess, paymentRecord.ID, result.TransactionID)
	if err != nil {
		return nil, err
	}

	if sess.BankOfferID != nil {
		err := s.discounts.RecordRedemption(ctx, discount.RedemptionInput{
			BankOfferID:    *sess.BankOfferID,
			CustomerID:     derefUint(sess.CustomerID),
			BranchID:       sess.BranchID,
			SessionID:      sess.ID,
			OriginalAmount: derefFloat(sess.OriginalAmount),
			DiscountAmount: derefFloat(sess.DiscountAmount),
		})
		if err != nil {
			// The customer already paid the discounted amount; an
			// exhausted cap at this point is an offer-budget problem,
			// not a payment problem.
			log.Printf("failed to record redemption for session %s offer %d: %v",
				sess.SessionCode, *sess.BankOfferID, err)
		}
	}

	return sess, nil
}

// quote reprices the session. BeginProcessing persists this snapshot,
// so quote-then-lock is the only ordering that keeps the invariant
// final == original - discount.
func (s *service) quote(ctx context.Context, sess *models.QrPaymentSession, cardBin string, bankID *uint) (*discount.Result, error) {
	if cardBin != "" {
		if err := validation.ValidateBin(cardBin); err != nil {
			return nil, domainErrors.ErrInvalidAmount
		}
	}
	return s.discounts.Quote(ctx, discount.QuoteInput{
		Amount:     sess.Amount,
		CardBin:    cardBin,
		BankID:     bankID,
		BranchID:   sess.BranchID,
		CustomerID: sess.CustomerID,
	})
}

// loadPayable fetches the session and checks it is scanned, unexpired
// and owned by the calling customer. All failures here happen before
// any state transition.
func (s *service) loadPayable(ctx context.Context, code string, customerID uint) (*models.QrPaymentSession, error) {
	sess, err := s.sessions.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sess.IsExpired(now) {
		return nil, domainErrors.ErrSessionExpired
	}
	if !sess.CanBePaid(now) {
		return nil, domainErrors.ErrSessionNotPayable
	}
	if sess.CustomerID == nil || *sess.CustomerID != customerID {
		return nil, domainErrors.ErrSessionNotPayable
	}
	return sess, nil
}

func (s *service) requireMethod(ctx context.Context, method string) error {
	enabled, err := s.store.IsMethodEnabled(ctx, method)
	if err != nil {
		return fmt.Errorf("failed to check method flag: %w", err)
	}
	if !enabled {
		return domainErrors.ErrMethodDisabled
	}
	return nil
}

func (s *service) requireAnyMethod(ctx context.Context) error {
	for _, method := range []string{models.MethodNewCard, models.MethodSavedCard, models.MethodWallet, models.MethodCliq} {
		enabled, err := s.store.IsMethodEnabled(ctx, method)
		if err != nil {
			return fmt.Errorf("failed to check method flag: %w", err)
		}
		if enabled {
			return nil
		}
	}
	return domainErrors.ErrMethodDisabled
}

func (s *service) release(ctx context.Context, sess *models.QrPaymentSession) {
	if err := s.sessions.ReleaseToScanned(ctx, sess); err != nil {
		log.Printf("failed to release session %s after gateway failure: %v", sess.SessionCode, err)
	}
}

func lockFromQuote(quote *discount.Result, amount float64, gateway, method string) session.ProcessingLock {
	lock := session.ProcessingLock{
		OriginalAmount: amount,
		FinalAmount:    quote.FinalAmount,
		Gateway:        gateway,
		PaymentMethod:  method,
		BankOfferID:    quote.BankOfferID,
	}
	if quote.HasDiscount && !quote.IsCashback {
		lock.DiscountAmount = quote.DiscountAmount
	}
	return lock
}

// gatewayFailure wraps a provider error without echoing its text to
// the client.
func gatewayFailure(err error) error {
	log.Printf("gateway failure: %v", err)
	return domainErrors.ErrGatewayFailure
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
