package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the caller role carried in access tokens.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleDriver    UserRole = "DRIVER"
	RoleConductor UserRole = "CONDUCTOR"
)

// JWTClaims represents the JWT payload for access tokens. For drivers and
// conductors UserID is their personnel registry id.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Caller identifies who is acting on a bus.
type Caller struct {
	ID   string
	Role UserRole
}

// Caller converts the token claims into a Caller.
func (c *JWTClaims) Caller() Caller {
	if c == nil {
		return Caller{}
	}
	return Caller{ID: c.UserID, Role: c.Role}
}
