package httpx

import "context"

// Principal is the authenticated identity attached to a request by the
// authentication filter. Request-scoped only; never persisted across
// requests.
type Principal struct {
	Subject     string
	Authorities []string

	authoritySet map[string]struct{}
}

// NewPrincipal builds a Principal with its authority lookup set prepared.
func NewPrincipal(subject string, authorities []string) *Principal {
	set := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		set[a] = struct{}{}
	}
	return &Principal{Subject: subject, Authorities: authorities, authoritySet: set}
}

// HasAuthority reports whether the principal holds the exact authority code.
// No partial matches, no wildcards.
func (p *Principal) HasAuthority(code string) bool {
	if p == nil {
		return false
	}
	if p.authoritySet != nil {
		_, ok := p.authoritySet[code]
		return ok
	}
	for _, a := range p.Authorities {
		if a == code {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithPrincipal attaches the principal to the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the request's principal, or nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKey{}).(*Principal)
	return p
}
