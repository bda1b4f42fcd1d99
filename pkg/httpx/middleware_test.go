package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/pkg/jwtx"
)

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(p.Subject))
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	provider := jwtx.NewProvider([]byte("test-secret-key-32-bytes-long!!!"), "test", 0, 0)
	handler := Authenticate(provider)(echoPrincipal())

	t.Run("no header passes through unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("invalid token passes through unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("non-bearer scheme is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		token, err := provider.Issue("user-42", []string{"USER_VIEW"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "user-42", rec.Body.String())
	})

	t.Run("refresh token is not a session credential", func(t *testing.T) {
		token, err := provider.IssueRefresh("user-42")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "anonymous", rec.Body.String())
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAs(t *testing.T, mw Middleware, p *Principal, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if p != nil {
		req = req.WithContext(WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthority(t *testing.T) {
	t.Parallel()

	guard := RequireAuthority("USER_VIEW")

	t.Run("anonymous gets 401 with error body", func(t *testing.T) {
		rec := serveAs(t, guard, nil, "/api/users")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "error", body.Status)
		require.Equal(t, "Unauthorized: Authentication required", body.Message)
		require.Equal(t, "/api/users", body.Path)
	})

	t.Run("principal without authority gets 403", func(t *testing.T) {
		p := NewPrincipal("u1", []string{"ROLE_VIEWER"})
		rec := serveAs(t, guard, p, "/api/users")
		require.Equal(t, http.StatusForbidden, rec.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "Forbidden: Insufficient permissions", body.Message)
	})

	t.Run("principal with authority passes", func(t *testing.T) {
		p := NewPrincipal("u1", []string{"USER_VIEW"})
		rec := serveAs(t, guard, p, "/api/users")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no partial matches", func(t *testing.T) {
		p := NewPrincipal("u1", []string{"USER_VIEW_ALL"})
		rec := serveAs(t, guard, p, "/api/users")
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireAnyAuthority(t *testing.T) {
	t.Parallel()

	guard := RequireAnyAuthority("USER_VIEW", "ROLE_SUPER_ADMIN")

	rec := serveAs(t, guard, NewPrincipal("u1", []string{"ROLE_SUPER_ADMIN"}), "/x")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(t, guard, NewPrincipal("u1", []string{"MENU_VIEW"}), "/x")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serveAs(t, guard, nil, "/x")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAllAuthorities(t *testing.T) {
	t.Parallel()

	guard := RequireAllAuthorities("USER_VIEW", "USER_UPDATE")

	rec := serveAs(t, guard, NewPrincipal("u1", []string{"USER_VIEW", "USER_UPDATE"}), "/x")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(t, guard, NewPrincipal("u1", []string{"USER_VIEW"}), "/x")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	guard := RequireAuthenticated()

	rec := serveAs(t, guard, NewPrincipal("u1", nil), "/x")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(t, guard, nil, "/x")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	handler := RateLimitByIP(RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1"))
	require.Equal(t, http.StatusOK, do("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// A different client has its own bucket.
	require.Equal(t, http.StatusOK, do("10.0.0.2"))
}
