// Package middleware provides HTTP middleware for the fiber app:
// actor authentication and the retailer API-secret check.
package middleware

import (
	"context"
	"log"
	"strings"

	"qirsh/internal/config"
	"qirsh/internal/models"
	"qirsh/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RetailerStore loads retailer rows for the API-secret check.
type RetailerStore interface {
	FindRetailer(ctx context.Context, id uint) (*models.Retailer, error)
}

// Auth validates the bearer token and puts the actor id and role into
// request locals. Token issuance is owned by the auth collaborator;
// this only verifies.
func Auth() fiber.Handler {
	secret := []byte(config.GetEnv("JWT_SECRET", "qirsh-dev-secret"))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c)
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &models.ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("token validation failed: %v", err)
			return response.Unauthorized(c)
		}

		claims, ok := token.Claims.(*models.ActorClaims)
		if !ok || claims.ActorID == 0 {
			return response.Unauthorized(c)
		}

		c.Locals("actorID", claims.ActorID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireRole gates a route group to one actor role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("role") != role {
			return response.Error(c, fiber.StatusForbidden, "forbidden")
		}
		return c.Next()
	}
}

// RetailerSecret verifies the X-Api-Secret header against the
// retailer's stored bcrypt hash. Applied to the session creation
// endpoint on top of the JWT check.
func RetailerSecret(store RetailerStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := c.Get("X-Api-Secret")
		if secret == "" {
			return response.Unauthorized(c)
		}

		actorID, ok := c.Locals("actorID").(uint)
		if !ok {
			return response.Unauthorized(c)
		}

		retailer, err := store.FindRetailer(c.Context(), actorID)
		if err != nil {
			return response.Unauthorized(c)
		}
		if bcrypt.CompareHashAndPassword([]byte(retailer.APISecretHash), []byte(secret)) != nil {
			return response.Unauthorized(c)
		}
		return c.Next()
	}
}
