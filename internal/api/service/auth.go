package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/obs"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/cryptox"
	"github.com/stocklot/stocklot/pkg/idx"
	"github.com/stocklot/stocklot/pkg/jwtx"
	"github.com/stocklot/stocklot/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers every login failure: unknown username,
	// wrong password and disabled account. Callers must not be able to
	// tell which it was.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

type AuthService struct {
	Store  store.Store
	Tokens *jwtx.Provider
	Cache  cache.Cache
}

// RegisterInput is the payload for self-registration.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Login authenticates the user and issues a token pair carrying the
// flattened authority snapshot. Unknown usernames, bad passwords and
// inactive accounts all fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	graph, err := s.Store.Users().GetUserGraphByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.ObserveLogin("fail")
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, graph.PasswordHash); err != nil {
		l.Info("login failed", slog.String("username", graph.Username))
		obs.ObserveLogin("fail")
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if !graph.Active {
		l.Info("login rejected for inactive user", slog.String("username", graph.Username))
		obs.ObserveLogin("fail")
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(graph)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("username", graph.Username))
	obs.ObserveLogin("ok")
	return pair, nil
}

// Register creates a new account with no roles and logs it in. The new
// user's authority set is empty until an administrator assigns roles.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.TokenPair{}, err
	}
	s.Cache.InvalidateTags(cache.TagUsers)

	l.Info("user registered", slog.String("username", user.Username), slog.String("user_id", user.ID))

	return s.issuePair(domain.UserGraph{User: user})
}

// Refresh exchanges a valid refresh token for a fresh pair. Authorities are
// re-resolved from the current graph, so role changes take effect here even
// though outstanding access tokens keep their frozen snapshot.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Tokens.Validate(refreshToken)
	if err != nil || !claims.IsRefresh() {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	graph, err := s.Store.Users().GetUserGraphByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}
	if !graph.Active {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	return s.issuePair(graph)
}

// issuePair mints an access/refresh pair for the given graph. The token
// subject is the username, so refresh and profile lookups resolve through
// the same key logins use.
func (s *AuthService) issuePair(graph domain.UserGraph) (domain.TokenPair, error) {
	access, err := s.Tokens.Issue(graph.Username, ResolveAuthorities(graph))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Tokens.IssueRefresh(graph.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.Tokens.AccessTTL.Seconds()),
		User:         graph.User,
	}, nil
}
