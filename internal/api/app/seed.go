package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/cryptox"
	"github.com/stocklot/stocklot/pkg/idx"
)

// Seed inserts the baseline permissions, menus, the SUPER_ADMIN role and the
// default admin account. It is idempotent: existing rows are left alone, so
// it runs safely on every startup. The SUPER_ADMIN role is always re-pointed
// at the full permission and menu sets so new seeded entries reach it.
func Seed(ctx context.Context, st store.Store, adminPassword string, logger *slog.Logger) error {
	logger.Info("seeding database...")

	permissionIDs, err := seedPermissions(ctx, st)
	if err != nil {
		return err
	}

	menuIDs, err := seedMenus(ctx, st)
	if err != nil {
		return err
	}

	roleID, err := seedSuperAdminRole(ctx, st, permissionIDs, menuIDs)
	if err != nil {
		return err
	}

	created, err := seedAdminUser(ctx, st, roleID, adminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("default admin user created", "username", "admin")
	}

	logger.Info("database seeding completed",
		"permissions", len(permissionIDs), "menus", len(menuIDs))
	return nil
}

type seedPermission struct {
	name, code, description string
}

var seedPermissionList = []seedPermission{
	{"User View", "USER_VIEW", "View users"},
	{"User Create", "USER_CREATE", "Create users"},
	{"User Update", "USER_UPDATE", "Update users"},
	{"User Delete", "USER_DELETE", "Delete users"},

	{"Product View", "PRODUCT_VIEW", "View products"},
	{"Product Create", "PRODUCT_CREATE", "Create products"},
	{"Product Update", "PRODUCT_UPDATE", "Update products"},
	{"Product Delete", "PRODUCT_DELETE", "Delete products"},

	{"Inventory View", "INVENTORY_VIEW", "View inventory"},
	{"Inventory Update", "INVENTORY_UPDATE", "Update inventory"},

	{"Role View", "ROLE_VIEW", "View roles"},
	{"Role Create", "ROLE_CREATE", "Create roles"},
	{"Role Update", "ROLE_UPDATE", "Update roles"},
	{"Role Delete", "ROLE_DELETE", "Delete roles"},

	{"Permission View", "PERMISSION_VIEW", "View permissions"},
	{"Permission Create", "PERMISSION_CREATE", "Create permissions"},
	{"Permission Update", "PERMISSION_UPDATE", "Update permissions"},
	{"Permission Delete", "PERMISSION_DELETE", "Delete permissions"},

	{"Menu View", "MENU_VIEW", "View menus"},
	{"Menu Create", "MENU_CREATE", "Create menus"},
	{"Menu Update", "MENU_UPDATE", "Update menus"},
	{"Menu Delete", "MENU_DELETE", "Delete menus"},
}

func seedPermissions(ctx context.Context, st store.Store) ([]string, error) {
	ids := make([]string, 0, len(seedPermissionList))
	for _, sp := range seedPermissionList {
		existing, err := st.Permissions().GetPermissionByCode(ctx, sp.code)
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		now := time.Now().UTC()
		perm := domain.Permission{
			ID:          idx.New().String(),
			Name:        sp.name,
			Code:        sp.code,
			Description: sp.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.Permissions().CreatePermission(ctx, perm); err != nil {
			return nil, err
		}
		ids = append(ids, perm.ID)
	}
	return ids, nil
}

type seedMenu struct {
	title, path, icon string
	orderIndex        int
	parentPath        string // empty for root menus
}

var seedMenuList = []seedMenu{
	{"Dashboard", "/dashboard", "dashboard", 1, ""},
	{"Inventory", "/inventory", "inventory", 2, ""},
	{"Users", "/users", "users", 3, ""},
	{"Settings", "/settings", "settings", 4, ""},

	{"Products", "/inventory/products", "products", 1, "/inventory"},
	{"Stock", "/inventory/stock", "stock", 2, "/inventory"},

	{"Roles", "/settings/roles", "roles", 1, "/settings"},
	{"Permissions", "/settings/permissions", "permissions", 2, "/settings"},
	{"Menus", "/settings/menus", "menus", 3, "/settings"},
}

func seedMenus(ctx context.Context, st store.Store) ([]string, error) {
	// Parents are listed before children, so a single pass resolves every
	// parentPath.
	byPath := make(map[string]string, len(seedMenuList))
	ids := make([]string, 0, len(seedMenuList))

	for _, sm := range seedMenuList {
		existing, err := st.Menus().GetMenuByPath(ctx, sm.path)
		if err == nil {
			byPath[sm.path] = existing.ID
			ids = append(ids, existing.ID)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		var parentID *string
		if sm.parentPath != "" {
			pid, ok := byPath[sm.parentPath]
			if !ok {
				return nil, errors.New("app: seed menu parent missing: " + sm.parentPath)
			}
			parentID = &pid
		}

		now := time.Now().UTC()
		menu := domain.Menu{
			ID:         idx.New().String(),
			Title:      sm.title,
			Path:       sm.path,
			Icon:       sm.icon,
			OrderIndex: sm.orderIndex,
			ParentID:   parentID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := st.Menus().CreateMenu(ctx, menu); err != nil {
			return nil, err
		}
		byPath[sm.path] = menu.ID
		ids = append(ids, menu.ID)
	}
	return ids, nil
}

func seedSuperAdminRole(ctx context.Context, st store.Store, permissionIDs, menuIDs []string) (string, error) {
	var roleID string

	err := st.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, "SUPER_ADMIN")
		if errors.Is(err, store.ErrNotFound) {
			now := time.Now().UTC()
			role = domain.Role{
				ID:          idx.New().String(),
				Name:        "SUPER_ADMIN",
				Description: "Super Administrator with full system access",
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Roles().CreateRole(ctx, role); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		roleID = role.ID

		if err := tx.Roles().SetRolePermissions(ctx, roleID, permissionIDs); err != nil {
			return err
		}
		return tx.Roles().SetRoleMenus(ctx, roleID, menuIDs)
	})
	return roleID, err
}

func seedAdminUser(ctx context.Context, st store.Store, roleID, password string) (bool, error) {
	_, err := st.Users().GetUserByUsername(ctx, "admin")
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.New().String(),
		Username:     "admin",
		Email:        "admin@inventory.com",
		FullName:     "System Administrator",
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		return tx.Users().SetUserRoles(ctx, admin.ID, []string{roleID})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
