package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT payload for an authenticated request. The tenant
// id and the full ordered role list travel in the token so request handling
// never needs a directory lookup just to know who is calling.
type AccessClaims struct {
	jwt.RegisteredClaims          // Standard JWT claims (sub, iss, exp, iat, etc.)
	TenantID             string   `json:"tid"`
	Email                string   `json:"email"`
	Roles                []string `json:"roles"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}
