package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single failure mode of Validate. Expired, tampered,
// malformed and wrong-key tokens are indistinguishable to callers; the filter
// must treat them all as "not authenticated".
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Provider issues and validates signed stateless tokens with a symmetric key.
type Provider struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewProvider returns a Provider with default TTLs applied where unset.
func NewProvider(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *Provider {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Provider{
		Secret:     secret,
		Issuer:     issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// Issue signs a session token for the subject carrying the flattened
// authority snapshot. No side effects beyond the returned value.
func (p *Provider) Issue(subject string, authorities []string) (string, error) {
	return p.IssueAt(subject, authorities, time.Now().UTC())
}

// IssueAt is Issue with an explicit issuance time, useful for expiry tests.
func (p *Provider) IssueAt(subject string, authorities []string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.AccessTTL)),
		},
		Authorities: authorities,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Secret)
}

// IssueRefresh signs a longer-lived refresh token for the subject. Refresh
// tokens carry no authorities and are rejected by the authentication
// middleware; their only consumer is the refresh exchange.
func (p *Provider) IssueRefresh(subject string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.RefreshTTL)),
		},
		TokenType: TokenTypeRefresh,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Secret)
}

// Validate verifies the signature and expiry of a token string and returns
// its claims. Every failure collapses to ErrInvalidToken.
func (p *Provider) Validate(tokenString string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || time.Now().UTC().After(claims.ExpiresAt.Time) {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
