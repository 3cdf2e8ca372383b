package handlers

import (
	"context"
	"log"

	"qirsh/internal/services/cliq"
	"qirsh/internal/services/payment"
	"qirsh/internal/services/session"
	"qirsh/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCache serves the short-lived status poll entries.
type SessionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetSessionStatus(ctx context.Context, code, status string) error
}

// QrSessionHandler is the HTTP surface of the payment core.
type QrSessionHandler struct {
	orchestrator payment.Service
	sessions     session.Service
	cache        SessionCache
	statusKey    func(code string) string
}

func NewQrSessionHandler(orchestrator payment.Service, sessions session.Service, cache SessionCache, statusKey func(string) string) *QrSessionHandler {
	return &QrSessionHandler{
		orchestrator: orchestrator,
		sessions:     sessions,
		cache:        cache,
		statusKey:    statusKey,
	}
}

type createSessionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	BranchID    uint    `json:"branch_id"`
	BrandID     uint    `json:"brand_id"`
	Description string  `json:"description"`
}

// Create opens a pending session for the authenticated retailer and
// returns the scannable code payload.
func (h *QrSessionHandler) Create(c *fiber.Ctx) error {
	actorID := c.Locals("actorID").(uint)

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	sess, err := h.orchestrator.CreateSession(c.Context(), payment.CreateSessionInput{
		RetailerID:  actorID,
		BranchID:    req.BranchID,
		BrandID:     req.BrandID,
		CreatedByID: actorID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "session created", fiber.Map{
		"session":    sess,
		"qr_payload": "qirsh://pay/" + sess.SessionCode,
	})
}

// Scan claims a pending session for the authenticated customer.
func (h *QrSessionHandler) Scan(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	sess, err := h.sessions.Scan(c.Context(), code, customerID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "session scanned", sess)
}

type quoteRequest struct {
	CardBin string `json:"card_bin"`
	BankID  *uint  `json:"bank_id"`
}

// CalculateDiscount quotes the best offer for the session.
func (h *QrSessionHandler) CalculateDiscount(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.orchestrator.QuoteDiscount(c.Context(), code, customerID, payment.QuoteRequest{
		CardBin: req.CardBin,
		BankID:  req.BankID,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "discount calculated", result)
}

// Pay starts the new-card redirect path.
func (h *QrSessionHandler) Pay(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	var req payment.NewCardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.orchestrator.PayWithNewCard(c.Context(), code, customerID, req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "checkout created", result)
}

type savedCardRequest struct {
	CardID uint `json:"card_id"`
}

// PayWithSavedCard charges a stored token.
func (h *QrSessionHandler) PayWithSavedCard(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	var req savedCardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	sess, err := h.orchestrator.PayWithSavedCard(c.Context(), code, customerID, req.CardID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "payment completed", sess)
}

// PayWithWallet runs the Apple/Google Pay path.
func (h *QrSessionHandler) PayWithWallet(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	var req payment.WalletRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	sess, err := h.orchestrator.PayWithWallet(c.Context(), code, customerID, req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "payment completed", sess)
}

// PayWithCliq issues a bank-transfer request and returns its links.
func (h *QrSessionHandler) PayWithCliq(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)
	code := c.Params("code")

	var req payment.CliqRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.orchestrator.PayWithCliq(c.Context(), code, customerID, req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "bank transfer initiated", result)
}

// Status is the read-only poll. Cached for a couple of seconds to keep
// fast pollers off the database.
func (h *QrSessionHandler) Status(c *fiber.Ctx) error {
	code := c.Params("code")

	if h.cache != nil && h.statusKey != nil {
		var status string
		if ok, err := h.cache.Get(c.Context(), h.statusKey(code), &status); err == nil && ok {
			return response.Success(c, "session status", fiber.Map{"status": status})
		}
	}

	sess, err := h.sessions.Get(c.Context(), code)
	if err != nil {
		return response.DomainError(c, err)
	}

	if h.cache != nil {
		if err := h.cache.SetSessionStatus(c.Context(), code, sess.Status); err != nil {
			log.Printf("failed to cache session status: %v", err)
		}
	}
	return response.Success(c, "session status", fiber.Map{
		"status":          sess.Status,
		"final_amount":    sess.FinalAmount,
		"discount_amount": sess.DiscountAmount,
		"currency":        sess.Currency,
	})
}

// Cancel is the retailer-side cancellation.
func (h *QrSessionHandler) Cancel(c *fiber.Ctx) error {
	actorID := c.Locals("actorID").(uint)
	code := c.Params("code")

	sess, err := h.sessions.Get(c.Context(), code)
	if err != nil {
		return response.DomainError(c, err)
	}
	if sess.RetailerID != actorID {
		return response.Error(c, fiber.StatusForbidden, "forbidden")
	}

	sess, err = h.sessions.Cancel(c.Context(), sess, actorID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "session cancelled", sess)
}

// ResolveCliq is the bank confirmation callback entry. It is mounted
// on the internal route group, not the public API.
func (h *QrSessionHandler) ResolveCliq(c *fiber.Ctx) error {
	var req struct {
		RequestID string `json:"request_id"`
		Outcome   string `json:"outcome"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	outcome := cliq.OutcomeFailed
	if req.Outcome == string(cliq.OutcomeSucceeded) {
		outcome = cliq.OutcomeSucceeded
	}

	sess, err := h.orchestrator.ResolveCliq(c.Context(), req.RequestID, outcome)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "request resolved", fiber.Map{"status": sess.Status})
}
