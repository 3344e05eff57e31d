package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims mirrors the access tokens issued by the application's session
// layer. The subject is the owning user's id.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}
