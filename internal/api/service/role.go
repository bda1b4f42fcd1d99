package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/idx"
	"github.com/stocklot/stocklot/pkg/listq"
	"github.com/stocklot/stocklot/pkg/slogx"
)

type RoleService struct {
	Store store.Store
	Cache cache.Cache
}

type RoleInput struct {
	Name        string
	Description string
}

// GetRoleByID fetches a role with its permission and menu assignments.
func (s *RoleService) GetRoleByID(ctx context.Context, roleID string) (domain.Role, error) {
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// ListRoles returns one page of roles for the request.
func (s *RoleService) ListRoles(ctx context.Context, req listq.Request) (listq.Page[domain.Role], error) {
	roles, total, filtered, err := s.Store.Roles().ListRoles(ctx, req)
	if err != nil {
		return listq.Page[domain.Role]{}, err
	}
	return listq.NewPage(roles, total, filtered, req.PageNumber(), req.PageSize()), nil
}

// ListAll returns every role, cached until the next role write.
func (s *RoleService) ListAll(ctx context.Context) ([]domain.Role, error) {
	const key = "roles:all"
	if raw, ok := s.Cache.Get(key); ok {
		var roles []domain.Role
		if err := json.Unmarshal(raw, &roles); err == nil {
			return roles, nil
		}
	}

	roles, err := s.Store.Roles().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(roles); err == nil {
		s.Cache.Set(key, raw, 0, cache.TagRoles)
	}
	return roles, nil
}

// CreateRole inserts a new role with no assignments.
func (s *RoleService) CreateRole(ctx context.Context, in RoleInput) (domain.Role, error) {
	now := time.Now().UTC()
	role := domain.Role{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		return domain.Role{}, err
	}

	s.Cache.InvalidateTags(cache.TagRoles)
	slogx.FromContext(ctx).Info("role created",
		slog.String("role_id", role.ID), slog.String("name", role.Name))
	return role, nil
}

// UpdateRole rewrites name and description.
func (s *RoleService) UpdateRole(ctx context.Context, roleID string, in RoleInput) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if err != nil {
		return domain.Role{}, err
	}

	role.Name = strings.TrimSpace(in.Name)
	role.Description = strings.TrimSpace(in.Description)

	if err := s.Store.Roles().UpdateRole(ctx, role); err != nil {
		return domain.Role{}, err
	}

	s.Cache.InvalidateTags(cache.TagRoles)
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// AssignPermissions replaces the role's permission set. Tokens issued before
// this call keep their frozen snapshot; the change shows up on the next
// login or refresh.
func (s *RoleService) AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) (domain.Role, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.Permissions().GetPermissionByID(ctx, pid); err != nil {
				return err
			}
		}
		return tx.Roles().SetRolePermissions(ctx, roleID, permissionIDs)
	})
	if err != nil {
		return domain.Role{}, err
	}

	s.Cache.InvalidateTags(cache.TagRoles)
	slogx.FromContext(ctx).Info("role permissions assigned",
		slog.String("role_id", roleID), slog.Int("permissions", len(permissionIDs)))
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// AssignMenus replaces the role's menu set.
func (s *RoleService) AssignMenus(ctx context.Context, roleID string, menuIDs []string) (domain.Role, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
			return err
		}
		for _, mid := range menuIDs {
			if _, err := tx.Menus().GetMenuByID(ctx, mid); err != nil {
				return err
			}
		}
		return tx.Roles().SetRoleMenus(ctx, roleID, menuIDs)
	})
	if err != nil {
		return domain.Role{}, err
	}

	s.Cache.InvalidateTags(cache.TagRoles, cache.TagMenus)
	return s.Store.Roles().GetRoleByID(ctx, roleID)
}

// DeleteRole removes the role; users holding it simply lose it.
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	if err := s.Store.Roles().DeleteRole(ctx, roleID); err != nil {
		return err
	}
	s.Cache.InvalidateTags(cache.TagRoles)
	slogx.FromContext(ctx).Info("role deleted", slog.String("role_id", roleID))
	return nil
}
