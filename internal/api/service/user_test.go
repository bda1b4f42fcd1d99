package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/cryptox"
	"github.com/stocklot/stocklot/pkg/listq"
)

func TestUserServiceCreate(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st, Cache: cache.NewMemory(time.Minute)}
	ctx := context.Background()

	role := seedRole(t, st, "EDITOR")

	t.Run("creates with role assignment", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, CreateUserInput{
			Username: "erin",
			Email:    "erin@example.com",
			FullName: "Erin Moss",
			Password: "s3cret-pass",
			Active:   true,
			RoleIDs:  []string{role.ID},
		})
		require.NoError(t, err)

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{role.ID}, got.RoleIDs)
		require.NoError(t, cryptox.VerifyPassword("s3cret-pass", got.PasswordHash))
	})

	t.Run("unknown role id rolls the user back", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Username: "frank",
			Email:    "frank@example.com",
			Password: "s3cret-pass",
			RoleIDs:  []string{"no-such-role"},
		})
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByUsername(ctx, "frank")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserServiceChangePassword(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st, Cache: cache.NewMemory(time.Minute)}
	ctx := context.Background()

	user := seedUser(t, st, "grace", "old-password", true)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "grace", "not-the-password", "new-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success rotates the hash", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, "grace", "old-password", "new-password"))

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("new-password", got.PasswordHash))
		require.Error(t, cryptox.VerifyPassword("old-password", got.PasswordHash))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "missing", "x", "y")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserServiceAssignRoles(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st, Cache: cache.NewMemory(time.Minute)}
	ctx := context.Background()

	a := seedRole(t, st, "A")
	b := seedRole(t, st, "B")
	user := seedUser(t, st, "henry", "s3cret-pass", true, a.ID)

	t.Run("replaces the role set", func(t *testing.T) {
		got, err := svc.AssignRoles(ctx, user.ID, []string{b.ID})
		require.NoError(t, err)
		require.Equal(t, []string{b.ID}, got.RoleIDs)
	})

	t.Run("unknown role leaves assignments untouched", func(t *testing.T) {
		_, err := svc.AssignRoles(ctx, user.ID, []string{"no-such-role"})
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{b.ID}, got.RoleIDs)
	})

	t.Run("empty set clears all roles", func(t *testing.T) {
		got, err := svc.AssignRoles(ctx, user.ID, nil)
		require.NoError(t, err)
		require.Empty(t, got.RoleIDs)
	})
}

func TestUserServiceList(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &UserService{Store: st, Cache: cache.NewMemory(time.Minute)}
	ctx := context.Background()

	seedUser(t, st, "iris", "s3cret-pass", true)
	seedUser(t, st, "ivan", "s3cret-pass", true)
	seedUser(t, st, "judy", "s3cret-pass", false)

	t.Run("search narrows the filtered count", func(t *testing.T) {
		page, err := svc.ListUsers(ctx, listq.Request{Search: "i"})
		require.NoError(t, err)
		require.Equal(t, int64(3), page.TotalRecords)
		require.Equal(t, int64(2), page.FilteredRecords)
		require.Len(t, page.Data, 2)
	})

	t.Run("filter on active", func(t *testing.T) {
		page, err := svc.ListUsers(ctx, listq.Request{Filters: map[string]string{"active": "false"}})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.FilteredRecords)
		require.Equal(t, "judy", page.Data[0].Username)
	})

	t.Run("pagination windows the result", func(t *testing.T) {
		page, err := svc.ListUsers(ctx, listq.Request{Size: 2, SortBy: "username"})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		require.Equal(t, 2, page.TotalPages)
		require.True(t, page.HasNext)
	})
}
