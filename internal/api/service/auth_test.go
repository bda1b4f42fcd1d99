package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/internal/api/store/drivers/sqlite"
	"github.com/stocklot/stocklot/pkg/jwtx"
)

func newAuthService(t *testing.T) (*AuthService, *sqlite.Store, *jwtx.Provider) {
	t.Helper()
	st := newTestStore(t)
	provider := jwtx.NewProvider([]byte("test-secret-key-32-bytes-long!!!"), "test", 0, 0)
	svc := &AuthService{
		Store:  st,
		Tokens: provider,
		Cache:  cache.NewMemory(time.Minute),
	}
	return svc, st, provider
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, st, provider := newAuthService(t)
	ctx := context.Background()

	perm := seedPermission(t, st, "USER_VIEW")
	role := seedRole(t, st, "VIEWER", perm.ID)
	seedUser(t, st, "alice", "s3cret-pass", true, role.ID)
	seedUser(t, st, "bob", "s3cret-pass", false)

	t.Run("success issues authority snapshot", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, int64(provider.AccessTTL.Seconds()), pair.ExpiresIn)
		require.Equal(t, "alice", pair.User.Username)
		require.Equal(t, []string{role.ID}, pair.User.RoleIDs)

		claims, err := provider.Validate(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, []string{"ROLE_VIEWER", "USER_VIEW"}, claims.Authorities)

		refresh, err := provider.Validate(pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, refresh.IsRefresh())
		require.Equal(t, "alice", refresh.Subject)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "s3cret-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob", "s3cret-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, st, provider := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.Register(ctx, RegisterInput{
		Username: "carol",
		Email:    "carol@example.com",
		FullName: "Carol Jones",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := provider.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "carol", claims.Subject)
	require.Empty(t, claims.Authorities)
	require.Equal(t, "carol", pair.User.Username)
	require.Equal(t, "carol@example.com", pair.User.Email)

	user, err := st.Users().GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	require.True(t, user.Active)
	require.Equal(t, "carol@example.com", user.Email)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Username: "carol",
			Email:    "other@example.com",
			Password: "s3cret-pass",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("logging in with the registered password works", func(t *testing.T) {
		_, err := svc.Login(ctx, "carol", "s3cret-pass")
		require.NoError(t, err)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	svc, st, provider := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.Register(ctx, RegisterInput{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	t.Run("re-resolves authorities from the current graph", func(t *testing.T) {
		user, err := st.Users().GetUserByUsername(ctx, "dave")
		require.NoError(t, err)

		// Role assigned after the pair was issued.
		perm := seedPermission(t, st, "MENU_VIEW")
		role := seedRole(t, st, "NAVIGATOR", perm.ID)
		require.NoError(t, st.Users().SetUserRoles(ctx, user.ID, []string{role.ID}))

		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := provider.Validate(fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, []string{"MENU_VIEW", "ROLE_NAVIGATOR"}, claims.Authorities)
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not.a.token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		user, err := st.Users().GetUserByUsername(ctx, "dave")
		require.NoError(t, err)
		user.Active = false
		require.NoError(t, st.Users().UpdateUser(ctx, user))

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}
