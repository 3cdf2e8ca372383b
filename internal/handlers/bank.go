package handlers

import (
	"context"

	"qirsh/internal/models"
	"qirsh/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// BankReader lists CliQ-capable banks for the bank picker.
type BankReader interface {
	ListCliqBanks(ctx context.Context) ([]models.Bank, error)
}

// CardReader lists the payer's stored cards.
type CardReader interface {
	ListForCustomer(ctx context.Context, customerID uint) ([]models.TokenizedCard, error)
}

type BankHandler struct {
	banks BankReader
	cards CardReader
}

func NewBankHandler(banks BankReader, cards CardReader) *BankHandler {
	return &BankHandler{banks: banks, cards: cards}
}

// ListBanks returns the banks selectable in the CliQ flow.
func (h *BankHandler) ListBanks(c *fiber.Ctx) error {
	banks, err := h.banks.ListCliqBanks(c.Context())
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "failed to list banks")
	}
	return response.Success(c, "banks retrieved", banks)
}

// ListCards returns the authenticated customer's stored cards.
func (h *BankHandler) ListCards(c *fiber.Ctx) error {
	customerID := c.Locals("actorID").(uint)

	cards, err := h.cards.ListForCustomer(c.Context(), customerID)
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "failed to list cards")
	}
	return response.Success(c, "cards retrieved", cards)
}
