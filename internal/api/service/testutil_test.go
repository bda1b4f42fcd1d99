package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/store/drivers/sqlite"
	"github.com/stocklot/stocklot/pkg/cryptox"
	"github.com/stocklot/stocklot/pkg/idx"
)

// newTestStore opens a named in-memory database shared across the pool's
// connections, migrated and cleaned up with the test.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := sqlite.NewStore("file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedPermission(t *testing.T, st *sqlite.Store, code string) domain.Permission {
	t.Helper()

	now := time.Now().UTC()
	perm := domain.Permission{
		ID:        idx.New().String(),
		Name:      code,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Permissions().CreatePermission(context.Background(), perm))
	return perm
}

func seedRole(t *testing.T, st *sqlite.Store, name string, permissionIDs ...string) domain.Role {
	t.Helper()

	now := time.Now().UTC()
	role := domain.Role{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx := context.Background()
	require.NoError(t, st.Roles().CreateRole(ctx, role))
	require.NoError(t, st.Roles().SetRolePermissions(ctx, role.ID, permissionIDs))
	return role
}

func seedUser(t *testing.T, st *sqlite.Store, username, password string, active bool, roleIDs ...string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: hash,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ctx := context.Background()
	require.NoError(t, st.Users().CreateUser(ctx, user))
	require.NoError(t, st.Users().SetUserRoles(ctx, user.ID, roleIDs))
	return user
}
