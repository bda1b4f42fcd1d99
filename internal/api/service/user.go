package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/cryptox"
	"github.com/stocklot/stocklot/pkg/idx"
	"github.com/stocklot/stocklot/pkg/listq"
	"github.com/stocklot/stocklot/pkg/slogx"
)

type UserService struct {
	Store store.Store
	Cache cache.Cache
}

type CreateUserInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Active   bool
	RoleIDs  []string
}

type UpdateUserInput struct {
	Email    string
	FullName string
	Active   bool
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// GetUserByUsername fetches a user by username. Token subjects are
// usernames, so this is the lookup behind profile endpoints.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// ListUsers returns one page of users for the request.
func (s *UserService) ListUsers(ctx context.Context, req listq.Request) (listq.Page[domain.User], error) {
	users, total, filtered, err := s.Store.Users().ListUsers(ctx, req)
	if err != nil {
		return listq.Page[domain.User]{}, err
	}
	return listq.NewPage(users, total, filtered, req.PageNumber(), req.PageSize()), nil
}

// CreateUser creates a user with an initial role assignment in one
// transaction. Every role id must exist.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Active:       in.Active,
		RoleIDs:      in.RoleIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		for _, roleID := range in.RoleIDs {
			if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
				return err
			}
		}
		return tx.Users().SetUserRoles(ctx, user.ID, in.RoleIDs)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.Cache.InvalidateTags(cache.TagUsers)
	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// UpdateUser rewrites the mutable profile fields. Username and password are
// immutable here; password changes go through ChangePassword.
func (s *UserService) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	user.Email = strings.TrimSpace(in.Email)
	user.FullName = strings.TrimSpace(in.FullName)
	user.Active = in.Active

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.Cache.InvalidateTags(cache.TagUsers)
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before setting a new one.
// The caller is identified by username, matching the token subject.
func (s *UserService) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("password changed", slog.String("username", username))
	return nil
}

// AssignRoles replaces the user's role set. Outstanding access tokens keep
// their old authority snapshot until they expire or are refreshed.
func (s *UserService) AssignRoles(ctx context.Context, userID string, roleIDs []string) (domain.User, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, userID); err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return store.ErrNotFound
				}
				return err
			}
		}
		return tx.Users().SetUserRoles(ctx, userID, roleIDs)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.Cache.InvalidateTags(cache.TagUsers)
	slogx.FromContext(ctx).Info("user roles assigned",
		slog.String("user_id", userID), slog.Int("roles", len(roleIDs)))
	return s.Store.Users().GetUserByID(ctx, userID)
}

// DeleteUser removes the user; assignment rows cascade.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.Cache.InvalidateTags(cache.TagUsers)
	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", userID))
	return nil
}
