package httpx

import "net/http"

// RequireAuthority allows the request through iff the principal holds the
// exact authority code. No principal yields 401; a principal missing the
// authority yields 403. Both write the structured error body.
func RequireAuthority(code string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteUnauthorized(w, r, "missing or invalid bearer token")
				return
			}
			if !p.HasAuthority(code) {
				WriteForbidden(w, r, "missing authority "+code)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAuthority allows the request through iff the principal holds at
// least one of the listed authority codes.
func RequireAnyAuthority(codes ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteUnauthorized(w, r, "missing or invalid bearer token")
				return
			}
			for _, code := range codes {
				if p.HasAuthority(code) {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteForbidden(w, r, "missing any required authority")
		})
	}
}

// RequireAllAuthorities allows the request through iff the principal holds
// every listed authority code.
func RequireAllAuthorities(codes ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteUnauthorized(w, r, "missing or invalid bearer token")
				return
			}
			for _, code := range codes {
				if !p.HasAuthority(code) {
					WriteForbidden(w, r, "missing authority "+code)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated allows any authenticated principal through regardless
// of authorities. Used by endpoints that only need an identity.
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFromContext(r.Context()) == nil {
				WriteUnauthorized(w, r, "missing or invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
