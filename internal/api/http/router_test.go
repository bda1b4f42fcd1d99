package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/internal/api/app"
	"github.com/stocklot/stocklot/internal/api/cache"
	apihttp "github.com/stocklot/stocklot/internal/api/http"
	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/internal/api/store/drivers/sqlite"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/jwtx"
	"github.com/stocklot/stocklot/pkg/listq"
)

func newTestRouter(t *testing.T) (*apihttp.Router, *jwtx.Provider) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := sqlite.NewStore("file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, app.Seed(context.Background(), st, "admin123", logger))

	provider := jwtx.NewProvider([]byte("test-secret-key-32-bytes-long!!!"), "test", 0, 0)
	c := cache.NewMemory(time.Minute)

	r := apihttp.NewRouter(provider, "test", st, logger)
	r.AuthService = &service.AuthService{Store: st, Tokens: provider, Cache: c}
	r.UserService = &service.UserService{Store: st, Cache: c}
	r.RoleService = &service.RoleService{Store: st, Cache: c}
	r.PermissionService = &service.PermissionService{Store: st, Cache: c}
	r.MenuService = &service.MenuService{Store: st, Cache: c}
	r.ApplyRoutes()

	return r, provider
}

// Each request gets its own source IP so the per-IP rate limiter never
// interferes with unrelated assertions.
var ipSeq atomic.Int64

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	n := ipSeq.Add(1)
	req.RemoteAddr = fmt.Sprintf("10.1.%d.%d:4321", n/250%250, n%250+1)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func loginAdmin(t *testing.T, h http.Handler) apihttp.TokenResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login", "",
		apihttp.LoginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[apihttp.TokenResponse](t, rec)
}

func TestLoginAndGuards(t *testing.T) {
	t.Parallel()
	router, provider := newTestRouter(t)

	t.Run("admin login issues the seeded authorities", func(t *testing.T) {
		pair := loginAdmin(t, router)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, "admin", pair.User.Username)
		require.Len(t, pair.User.RoleIDs, 1)
		require.True(t, pair.User.Active)

		claims, err := provider.Validate(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "admin", claims.Subject)
		require.Contains(t, claims.Authorities, "ROLE_SUPER_ADMIN")
		require.Contains(t, claims.Authorities, "USER_VIEW")
		require.Contains(t, claims.Authorities, "MENU_DELETE")
	})

	t.Run("login response uses snake_case token keys", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/login", "",
			apihttp.LoginRequest{Username: "admin", Password: "admin123"})
		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Contains(t, raw, "access_token")
		require.Contains(t, raw, "refresh_token")
		require.Contains(t, raw, "token_type")
		require.Contains(t, raw, "expires_in")
		require.Contains(t, raw, "user")

		var user map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["user"], &user))
		require.Contains(t, user, "role_ids")
		require.Contains(t, user, "fullName")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/login", "",
			apihttp.LoginRequest{Username: "admin", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decode[httpx.ErrorBody](t, rec)
		require.Equal(t, "error", body.Status)
		require.Equal(t, "Invalid username or password", body.Message)
	})

	t.Run("missing body fields", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/login", "",
			apihttp.LoginRequest{Username: "admin"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("guarded route without token", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/users", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decode[httpx.ErrorBody](t, rec)
		require.Equal(t, "/api/users", body.Path)
	})

	t.Run("guarded route with token", func(t *testing.T) {
		pair := loginAdmin(t, router)

		rec := do(t, router, http.MethodGet, "/api/users", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		page := decode[listq.Page[apihttp.UserResponse]](t, rec)
		require.Equal(t, int64(1), page.TotalRecords)
		require.Equal(t, "admin", page.Data[0].Username)

		rec = do(t, router, http.MethodGet, "/api/users?search=admin&page=0&size=10", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		page = decode[listq.Page[apihttp.UserResponse]](t, rec)
		require.Equal(t, int64(1), page.FilteredRecords)
		require.Equal(t, 1, page.TotalPages)
		require.Len(t, page.Data, 1)
		require.Equal(t, "admin", page.Data[0].Username)

		rec = do(t, router, http.MethodGet, "/api/users?search=zzz", pair.AccessToken, nil)
		page = decode[listq.Page[apihttp.UserResponse]](t, rec)
		require.Equal(t, int64(1), page.TotalRecords)
		require.Equal(t, int64(0), page.FilteredRecords)
		require.Empty(t, page.Data)
	})

	t.Run("profile echoes the token snapshot", func(t *testing.T) {
		pair := loginAdmin(t, router)

		rec := do(t, router, http.MethodGet, "/api/auth/me", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		profile := decode[apihttp.ProfileResponse](t, rec)
		require.Equal(t, "admin", profile.Username)
		require.Contains(t, profile.Authorities, "ROLE_SUPER_ADMIN")
	})
}

func TestRegisterFlow(t *testing.T) {
	t.Parallel()
	router, provider := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/auth/register", "", apihttp.RegisterRequest{
		Username: "newbie",
		Email:    "newbie@example.com",
		FullName: "New Person",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	pair := decode[apihttp.TokenResponse](t, rec)

	claims, err := provider.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "newbie", claims.Subject)
	require.Empty(t, claims.Authorities)
	require.Equal(t, "newbie", pair.User.Username)
	require.Empty(t, pair.User.RoleIDs)

	t.Run("no authority means 403 on admin routes", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/users", pair.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("identity-only routes still work", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/menus/mine", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		tree := decode[[]apihttp.MenuNodeResponse](t, rec)
		require.Empty(t, tree)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/register", "", apihttp.RegisterRequest{
			Username: "newbie",
			Email:    "other@example.com",
			Password: "s3cret-pass",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	pair := loginAdmin(t, router)

	t.Run("refresh token yields a fresh pair", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/refresh", "",
			apihttp.RefreshRequest{RefreshToken: pair.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code)

		fresh := decode[apihttp.TokenResponse](t, rec)
		require.NotEmpty(t, fresh.AccessToken)
		require.NotEmpty(t, fresh.RefreshToken)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/auth/refresh", "",
			apihttp.RefreshRequest{RefreshToken: pair.AccessToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminCrudEndpoints(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	token := loginAdmin(t, router).AccessToken

	t.Run("role lifecycle", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/roles", token,
			apihttp.RoleRequest{Name: "AUDITOR", Description: "Read-only reviewer"})
		require.Equal(t, http.StatusCreated, rec.Code)
		role := decode[apihttp.RoleResponse](t, rec)

		rec = do(t, router, http.MethodPost, "/api/roles", token,
			apihttp.RoleRequest{Name: "AUDITOR"})
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = do(t, router, http.MethodGet, "/api/roles/all", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		roles := decode[[]apihttp.RoleResponse](t, rec)
		require.Len(t, roles, 2) // AUDITOR + seeded SUPER_ADMIN

		rec = do(t, router, http.MethodDelete, "/api/roles/"+role.ID, token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("permission codes are normalized", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/permissions", token,
			apihttp.PermissionRequest{Name: "Report View", Code: "report_view"})
		require.Equal(t, http.StatusCreated, rec.Code)

		perm := decode[apihttp.PermissionResponse](t, rec)
		require.Equal(t, "REPORT_VIEW", perm.Code)
	})

	t.Run("menu tree reflects the seed", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/menus/tree", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		tree := decode[[]apihttp.MenuNodeResponse](t, rec)
		require.Len(t, tree, 4)
		require.Equal(t, "/dashboard", tree[0].Path)
		require.Equal(t, "/settings", tree[3].Path)
		require.Len(t, tree[3].Children, 3)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/users/no-such-id", token, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decode[httpx.ErrorBody](t, rec)
		require.Equal(t, "not_found", body.Error)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/roles", strings.NewReader("{broken"))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	attempt := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"admin","password":"nope"}`))
		req.RemoteAddr = "203.0.113.7:999"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, attempt())
	}
	require.Equal(t, http.StatusTooManyRequests, attempt())
}
