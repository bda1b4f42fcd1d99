package httpx

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/pkg/jwtx"
	"github.com/stocklot/stocklot/pkg/slogx"
)

// TokenValidator validates a raw token string and returns its claims.
// Implemented by *jwtx.Provider.
type TokenValidator interface {
	Validate(tokenString string) (jwtx.Claims, error)
}

// Authenticate extracts the bearer credential from the Authorization header,
// validates it and attaches the resulting principal to the request context.
//
// The filter itself never rejects a request. A missing, malformed, expired or
// tampered token simply leaves the request unauthenticated; producing the 401
// is deferred to the authority guards so that public endpoints keep working.
func Authenticate(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Validate(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			// Refresh tokens carry no authorities and are only accepted by
			// the refresh exchange, never as a session credential.
			if claims.IsRefresh() {
				next.ServeHTTP(w, r)
				return
			}

			p := NewPrincipal(claims.Subject, claims.Authorities)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authz[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
