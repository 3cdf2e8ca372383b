// Package session implements the QR payment session state machine.
//
// Legal transitions:
//
//	pending --scan--> scanned --beginProcessing--> processing --complete--> completed
//	pending|scanned --cancel--> cancelled
//	pending|scanned --expire--> expired
//	processing --release--> scanned
//
// Scan and beginProcessing are the contended edges: both are persisted
// as conditional updates keyed on the current status, so of N racing
// callers exactly one wins and the rest observe a failed guard.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"
	"qirsh/internal/utils"
)

type service struct {
	store Store
	cache Cache
}

// NewService creates the lifecycle manager.
func NewService(store Store, cache Cache) Service {
	if store == nil {
		panic("session store is required")
	}
	return &service{
		store: store,
		cache: cache,
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.QrPaymentSession, error) {
	code, err := utils.GenerateSessionCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session code: %w", err)
	}

	sess := &models.QrPaymentSession{
		SessionCode: code,
		RetailerID:  input.RetailerID,
		BranchID:    input.BranchID,
		BrandID:     input.BrandID,
		CreatedByID: input.CreatedByID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
		Status:      models.SessionStatusPending,
		ExpiresAt:   time.Now().Add(input.TTL),
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Get loads a session by code, lazily expiring it when the TTL has
// passed. Reads and an external scheduler calling Expire converge on
// the same row state.
func (s *service) Get(ctx context.Context, code string) (*models.QrPaymentSession, error) {
	sess, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, domainErrors.ErrSessionNotFound
	}

	if sess.IsExpired(time.Now()) && sess.CanBeCancelled() {
		return s.Expire(ctx, sess)
	}
	return sess, nil
}

// GetByID loads a session by internal id, with the same lazy expiry as
// Get. Used by the CliQ resolution path, which only knows the parent
// session id.
func (s *service) GetByID(ctx context.Context, id uint) (*models.QrPaymentSession, error) {
	sess, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, domainErrors.ErrSessionNotFound
	}

	if sess.IsExpired(time.Now()) && sess.CanBeCancelled() {
		return s.Expire(ctx, sess)
	}
	return sess, nil
}

func (s *service) Scan(ctx context.Context, code string, customerID uint) (*models.QrPaymentSession, error) {
	sess, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sess.IsExpired(now) {
		return nil, domainErrors.ErrSessionExpired
	}
	if sess.Status != models.SessionStatusPending {
		return nil, domainErrors.ErrSessionAlreadyUsed
	}

	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusPending},
		map[string]interface{}{
			"status":      models.SessionStatusScanned,
			"customer_id": customerID,
			"scanned_at":  now,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if !ok {
		// Another scan won the race between our read and the write.
		return nil, domainErrors.ErrSessionAlreadyUsed
	}

	sess.Status = models.SessionStatusScanned
	sess.CustomerID = &customerID
	sess.ScannedAt = &now
	s.invalidate(ctx, sess.SessionCode)
	return sess, nil
}

// BeginProcessing locks a scanned session for a single payment
// attempt. This is the guard against double charges: only one caller
// can move scanned -> processing.
func (s *service) BeginProcessing(ctx context.Context, sess *models.QrPaymentSession, lock ProcessingLock) (*models.QrPaymentSession, error) {
	now := time.Now()
	if sess.IsExpired(now) {
		return nil, domainErrors.ErrSessionExpired
	}
	if sess.Status != models.SessionStatusScanned {
		return nil, domainErrors.ErrSessionNotPayable
	}

	updates := map[string]interface{}{
		"status":          models.SessionStatusProcessing,
		"original_amount": lock.OriginalAmount,
		"discount_amount": lock.DiscountAmount,
		"final_amount":    lock.FinalAmount,
		"gateway":         lock.Gateway,
		"payment_method":  lock.PaymentMethod,
	}
	if lock.BankOfferID != nil {
		updates["bank_offer_id"] = *lock.BankOfferID
	}

	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusScanned}, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrInvalidTransition
	}

	sess.Status = models.SessionStatusProcessing
	sess.OriginalAmount = &lock.OriginalAmount
	sess.DiscountAmount = &lock.DiscountAmount
	sess.FinalAmount = &lock.FinalAmount
	sess.BankOfferID = lock.BankOfferID
	sess.Gateway = lock.Gateway
	sess.PaymentMethod = lock.PaymentMethod
	s.invalidate(ctx, sess.SessionCode)
	return sess, nil
}

func (s *service) Complete(ctx context.Context, sess *models.QrPaymentSession, paymentID uint, transactionID string) (*models.QrPaymentSession, error) {
	now := time.Now()
	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusProcessing},
		map[string]interface{}{
			"status":                 models.SessionStatusCompleted,
			"payment_id":             paymentID,
			"gateway_transaction_id": transactionID,
			"completed_at":           now,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrInvalidTransition
	}

	sess.Status = models.SessionStatusCompleted
	sess.PaymentID = &paymentID
	sess.GatewayTransactionID = transactionID
	sess.CompletedAt = &now
	s.invalidate(ctx, sess.SessionCode)
	return sess, nil
}

// ReleaseToScanned is the rollback path after a failed gateway call.
// The session returns to scanned so the same customer can retry; it
// does not re-open to other customers. Pricing fields are cleared so a
// retry reprices against current offers.
func (s *service) ReleaseToScanned(ctx context.Context, sess *models.QrPaymentSession) error {
	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusProcessing},
		map[string]interface{}{
			"status":          models.SessionStatusScanned,
			"original_amount": nil,
			"discount_amount": nil,
			"final_amount":    nil,
			"bank_offer_id":   nil,
			"gateway":         "",
			"payment_method":  "",
		})
	if err != nil {
		return fmt.Errorf("failed to release session: %w", err)
	}
	if !ok {
		// Already moved on; log and leave the row alone.
		log.Printf("release skipped for session %s: no longer processing", sess.SessionCode)
		return nil
	}

	sess.Status = models.SessionStatusScanned
	sess.OriginalAmount = nil
	sess.DiscountAmount = nil
	sess.FinalAmount = nil
	sess.BankOfferID = nil
	sess.Gateway = ""
	sess.PaymentMethod = ""
	s.invalidate(ctx, sess.SessionCode)
	return nil
}

func (s *service) Cancel(ctx context.Context, sess *models.QrPaymentSession, actorID uint) (*models.QrPaymentSession, error) {
	if !sess.CanBeCancelled() {
		return nil, domainErrors.ErrSessionNotPayable
	}

	now := time.Now()
	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusPending, models.SessionStatusScanned},
		map[string]interface{}{
			"status":          models.SessionStatusCancelled,
			"cancelled_by_id": actorID,
			"cancelled_at":    now,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel session: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrInvalidTransition
	}

	sess.Status = models.SessionStatusCancelled
	sess.CancelledByID = &actorID
	sess.CancelledAt = &now
	s.invalidate(ctx, sess.SessionCode)
	return sess, nil
}

// Expire is idempotent: a session that already left pending/scanned is
// untouched and returned as stored.
func (s *service) Expire(ctx context.Context, sess *models.QrPaymentSession) (*models.QrPaymentSession, error) {
	ok, err := s.store.TransitionFrom(ctx, sess.ID,
		[]string{models.SessionStatusPending, models.SessionStatusScanned},
		map[string]interface{}{
			"status": models.SessionStatusExpired,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to expire session: %w", err)
	}
	if ok {
		sess.Status = models.SessionStatusExpired
		s.invalidate(ctx, sess.SessionCode)
	}
	return sess, nil
}

func (s *service) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSession(ctx, code); err != nil {
		log.Printf("failed to invalidate session cache for %s: %v", code, err)
	}
}
