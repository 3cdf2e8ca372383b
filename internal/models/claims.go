package models

import "github.com/golang-jwt/jwt/v5"

// Actor roles carried in JWT claims.
const (
	RoleCustomer = "customer"
	RoleRetailer = "retailer"
)

// ActorClaims are the JWT claims attached to every authenticated
// request. Token issuance is owned by the auth collaborator.
type ActorClaims struct {
	ActorID uint   `json:"actor_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
