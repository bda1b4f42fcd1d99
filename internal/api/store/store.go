package store

import (
	"context"
	"errors"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/pkg/listq"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	Menus() Menus

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., role
	// assignment). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, including its role ids.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserGraphByUsername loads the user with its roles and each role's
	// permissions in one consistent read. Authority resolution runs on the
	// returned graph.
	GetUserGraphByUsername(ctx context.Context, username string) (domain.UserGraph, error)

	// ListUsers returns one page of users matching the request along with
	// the unfiltered and filtered totals.
	ListUsers(ctx context.Context, req listq.Request) ([]domain.User, int64, int64, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser rewrites the mutable user fields and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// SetUserRoles replaces the user's role assignments.
	SetUserRoles(ctx context.Context, userID string, roleIDs []string) error

	// DeleteUser cascades to user_roles (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByID fetches a role with its permission and menu ids.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName fetches a role by its name (for seeding).
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns one page of roles matching the request.
	ListRoles(ctx context.Context, req listq.Request) ([]domain.Role, int64, int64, error)

	// ListAll returns all roles in the system.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role (id is ULID).
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole rewrites name and description and bumps updated_at.
	UpdateRole(ctx context.Context, r domain.Role) error

	// SetRolePermissions replaces the role's permission assignments.
	SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error

	// SetRoleMenus replaces the role's menu assignments.
	SetRoleMenus(ctx context.Context, roleID string, menuIDs []string) error

	// DeleteRole removes a role and its assignment rows.
	DeleteRole(ctx context.Context, roleID string) error
}

type Permissions interface {
	// GetPermissionByID fetches a permission by its ID.
	GetPermissionByID(ctx context.Context, id string) (domain.Permission, error)

	// GetPermissionByCode fetches a permission by its unique code (for seeding).
	GetPermissionByCode(ctx context.Context, code string) (domain.Permission, error)

	// ListPermissions returns one page of permissions matching the request.
	ListPermissions(ctx context.Context, req listq.Request) ([]domain.Permission, int64, int64, error)

	// ListAll returns all permissions ordered by code.
	ListAll(ctx context.Context) ([]domain.Permission, error)

	// CreatePermission inserts a new permission (id is ULID).
	CreatePermission(ctx context.Context, p domain.Permission) error

	// UpdatePermission rewrites the mutable fields and bumps updated_at.
	UpdatePermission(ctx context.Context, p domain.Permission) error

	// DeletePermission removes a permission and its assignment rows.
	DeletePermission(ctx context.Context, id string) error
}

type Menus interface {
	// GetMenuByID fetches a menu entry by its ID.
	GetMenuByID(ctx context.Context, id string) (domain.Menu, error)

	// GetMenuByPath fetches a menu entry by its unique path (for seeding).
	GetMenuByPath(ctx context.Context, path string) (domain.Menu, error)

	// ListMenus returns one page of menus matching the request.
	ListMenus(ctx context.Context, req listq.Request) ([]domain.Menu, int64, int64, error)

	// ListAll returns all menus ordered by order_index.
	ListAll(ctx context.Context) ([]domain.Menu, error)

	// ListMenusForUser returns the menus reachable through the user's
	// roles, ordered by order_index. Keyed by username to match the
	// token subject.
	ListMenusForUser(ctx context.Context, username string) ([]domain.Menu, error)

	// CreateMenu inserts a new menu entry (id is ULID).
	CreateMenu(ctx context.Context, m domain.Menu) error

	// UpdateMenu rewrites the mutable fields and bumps updated_at.
	UpdateMenu(ctx context.Context, m domain.Menu) error

	// DeleteMenu removes a menu entry and its assignment rows.
	DeleteMenu(ctx context.Context, id string) error
}
