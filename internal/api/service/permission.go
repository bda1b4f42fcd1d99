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

type PermissionService struct {
	Store store.Store
	Cache cache.Cache
}

type PermissionInput struct {
	Name        string
	Code        string
	Description string
}

// GetPermissionByID fetches a permission by its ID.
func (s *PermissionService) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	return s.Store.Permissions().GetPermissionByID(ctx, id)
}

// ListPermissions returns one page of permissions for the request.
func (s *PermissionService) ListPermissions(ctx context.Context, req listq.Request) (listq.Page[domain.Permission], error) {
	perms, total, filtered, err := s.Store.Permissions().ListPermissions(ctx, req)
	if err != nil {
		return listq.Page[domain.Permission]{}, err
	}
	return listq.NewPage(perms, total, filtered, req.PageNumber(), req.PageSize()), nil
}

// ListAll returns every permission ordered by code, cached until the next
// permission write.
func (s *PermissionService) ListAll(ctx context.Context) ([]domain.Permission, error) {
	const key = "permissions:all"
	if raw, ok := s.Cache.Get(key); ok {
		var perms []domain.Permission
		if err := json.Unmarshal(raw, &perms); err == nil {
			return perms, nil
		}
	}

	perms, err := s.Store.Permissions().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(perms); err == nil {
		s.Cache.Set(key, raw, 0, cache.TagPermissions)
	}
	return perms, nil
}

// CreatePermission inserts a new permission. Codes are uppercased so the
// authority set compares consistently.
func (s *PermissionService) CreatePermission(ctx context.Context, in PermissionInput) (domain.Permission, error) {
	now := time.Now().UTC()
	perm := domain.Permission{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Permissions().CreatePermission(ctx, perm); err != nil {
		return domain.Permission{}, err
	}

	s.Cache.InvalidateTags(cache.TagPermissions)
	slogx.FromContext(ctx).Info("permission created",
		slog.String("permission_id", perm.ID), slog.String("code", perm.Code))
	return perm, nil
}

// UpdatePermission rewrites the mutable fields.
func (s *PermissionService) UpdatePermission(ctx context.Context, id string, in PermissionInput) (domain.Permission, error) {
	perm, err := s.Store.Permissions().GetPermissionByID(ctx, id)
	if err != nil {
		return domain.Permission{}, err
	}

	perm.Name = strings.TrimSpace(in.Name)
	perm.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	perm.Description = strings.TrimSpace(in.Description)

	if err := s.Store.Permissions().UpdatePermission(ctx, perm); err != nil {
		return domain.Permission{}, err
	}

	s.Cache.InvalidateTags(cache.TagPermissions)
	return s.Store.Permissions().GetPermissionByID(ctx, id)
}

// DeletePermission removes the permission; roles referencing it lose it.
func (s *PermissionService) DeletePermission(ctx context.Context, id string) error {
	if err := s.Store.Permissions().DeletePermission(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateTags(cache.TagPermissions, cache.TagRoles)
	slogx.FromContext(ctx).Info("permission deleted", slog.String("permission_id", id))
	return nil
}
