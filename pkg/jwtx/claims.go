// Package jwtx issues and validates the service's stateless session tokens.
// Tokens are HMAC-signed (HS256) with a single server-held symmetric key; key
// rotation is a deployment concern, not handled here.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens carry the authority snapshot and live a
// day; refresh tokens only carry identity and live a week.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenTypeRefresh marks a refresh token. Access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

// Claims are the decoded payload of a session or refresh token.
//
// The authority list is a snapshot taken at issuance. It is deliberately NOT
// refreshed when roles or permissions change; the token stays valid with its
// frozen snapshot until expiry, which is the trade-off for statelessness.
type Claims struct {
	jwt.RegisteredClaims

	// Authorities is the flattened permission-code and role-tag list for the
	// subject. Empty for refresh tokens.
	Authorities []string `json:"authorities,omitempty"`

	// TokenType distinguishes refresh tokens. Empty for access tokens.
	TokenType string `json:"type,omitempty"`
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool { return c.TokenType == TokenTypeRefresh }

// HasAuthority reports whether the given authority is present in the snapshot.
func (c *Claims) HasAuthority(code string) bool {
	for _, a := range c.Authorities {
		if a == code {
			return true
		}
	}
	return false
}
