// Package routes wires repositories, services and handlers onto the
// fiber app.
package routes

import (
	"qirsh/internal/config"
	"qirsh/internal/handlers"
	"qirsh/internal/middleware"
	"qirsh/internal/models"
	"qirsh/internal/repositories"
	"qirsh/internal/repositories/cache"
	"qirsh/internal/services/cliq"
	"qirsh/internal/services/discount"
	"qirsh/internal/services/payment"
	"qirsh/internal/services/session"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers all routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.CacheService) {
	// Repositories
	sessionRepo := repositories.NewSessionRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	bankRepo := repositories.NewBankRepository(db, cacheSvc)
	cardRepo := repositories.NewCardRepository(db)
	cliqRepo := repositories.NewCliqRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db, cacheSvc)

	// Services, leaves first
	sessionSvc := session.NewService(sessionRepo, cacheSvc)
	discountSvc := discount.NewService(offerRepo, bankRepo)
	cliqSvc := cliq.NewService(cliqRepo, bankRepo)

	gateway := payment.NewStripeGateway()
	orchestrator := payment.NewService(payment.Config{
		Sessions:      sessionSvc,
		Discounts:     discountSvc,
		CliqRequests:  cliqSvc,
		CardGateway:   gateway,
		WalletGateway: gateway,
		Store:         paymentRepo,
		Cards:         cardRepo,
	})

	// Handlers
	sessionHandler := handlers.NewQrSessionHandler(orchestrator, sessionSvc, cacheSvc, cache.SessionStatusKey)
	bankHandler := handlers.NewBankHandler(bankRepo, cardRepo)

	app.Get("/health", handlers.Health)

	api := app.Group("/api", middleware.Auth())

	// Role checks are per-route: the retailer guards and the customer
	// guards share the /qr-sessions path space.
	retailerOnly := middleware.RequireRole(models.RoleRetailer)
	customerOnly := middleware.RequireRole(models.RoleCustomer)

	qr := api.Group("/qr-sessions")
	qr.Post("/", retailerOnly, middleware.RetailerSecret(paymentRepo), sessionHandler.Create)

	// Customer surface
	qr.Post("/:code/scan", customerOnly, sessionHandler.Scan)
	qr.Post("/:code/calculate-discount", customerOnly, sessionHandler.CalculateDiscount)
	qr.Post("/:code/pay", customerOnly, sessionHandler.Pay)
	qr.Post("/:code/pay-with-saved-card", customerOnly, sessionHandler.PayWithSavedCard)
	qr.Post("/:code/pay-with-wallet", customerOnly, sessionHandler.PayWithWallet)
	qr.Post("/:code/pay-with-cliq", customerOnly, sessionHandler.PayWithCliq)

	// Both sides poll: the customer's app and the retailer's terminal.
	qr.Get("/:code/status", sessionHandler.Status)

	qr.Post("/:code/cancel", retailerOnly, sessionHandler.Cancel)

	// Read models
	api.Get("/banks", bankHandler.ListBanks)
	api.Get("/cards", customerOnly, bankHandler.ListCards)

	// Internal callback surface for the bank confirmation collaborator.
	internal := app.Group("/internal", internalAuth())
	internal.Post("/cliq/resolve", sessionHandler.ResolveCliq)
}

// internalAuth guards the collaborator callback with a shared token.
func internalAuth() fiber.Handler {
	token := config.GetEnv("INTERNAL_API_TOKEN", "")
	return func(c *fiber.Ctx) error {
		if token == "" || c.Get("X-Internal-Token") != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}
