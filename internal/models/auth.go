package models

import "github.com/golang-jwt/jwt/v5"

// User roles recognised by the dashboard surface.
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
)

// JWTClaims are the token claims issued by the external identity provider.
// This service only validates them; it never issues tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
