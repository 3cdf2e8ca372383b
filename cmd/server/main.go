// Package main is the entry point for the payment core server. It
// initializes configuration, postgres and redis, wires routes and
// starts the HTTP server.
package main

import (
	"log"
	"time"

	"qirsh/internal/config"
	"qirsh/internal/repositories"
	"qirsh/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer repositories.CloseDB()

	// Periodic connection pool stats, useful under payment bursts.
	if sqlDB, err := repositories.DB.DB(); err == nil {
		go func() {
			ticker := time.NewTicker(1 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				stats := sqlDB.Stats()
				log.Printf("db stats: open=%d idle=%d inUse=%d waitCount=%d waitDuration=%s",
					stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName: "qirsh",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Api-Secret",
		AllowMethods: "GET,POST",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Scan and pay endpoints are the abuse surface; rate limit per IP.
	app.Use("/api/qr-sessions", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, repositories.DB, repositories.CacheService)

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
