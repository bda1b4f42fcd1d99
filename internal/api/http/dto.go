package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/slogx"
)

// Request payloads.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CreateUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Password string   `json:"password"`
	Active   bool     `json:"active"`
	RoleIDs  []string `json:"roleIds"`
}

type UpdateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Active   bool   `json:"active"`
}

type AssignRolesRequest struct {
	RoleIDs []string `json:"roleIds"`
}

type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AssignPermissionsRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

type AssignMenusRequest struct {
	MenuIDs []string `json:"menuIds"`
}

type PermissionRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type MenuRequest struct {
	Title      string  `json:"title"`
	Path       string  `json:"path"`
	Icon       string  `json:"icon"`
	OrderIndex int     `json:"orderIndex"`
	ParentID   *string `json:"parentId"`
}

// Response payloads.

// TokenResponse uses the snake_case token keys OAuth-style clients expect,
// with the account embedded so the frontend needs no follow-up profile call.
type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	User         AuthUserResponse `json:"user"`
}

// AuthUserResponse is the compact account view embedded in TokenResponse.
type AuthUserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	RoleIDs  []string `json:"role_ids"`
	Active   bool     `json:"active"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Active    bool      `json:"active"`
	RoleIDs   []string  `json:"roleIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProfileResponse struct {
	UserResponse
	Authorities []string `json:"authorities"`
}

type RoleResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PermissionIDs []string  `json:"permissionIds,omitempty"`
	MenuIDs       []string  `json:"menuIds,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type PermissionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type MenuResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Path       string    `json:"path"`
	Icon       string    `json:"icon"`
	OrderIndex int       `json:"orderIndex"`
	ParentID   *string   `json:"parentId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MenuNodeResponse struct {
	MenuResponse
	Children []MenuNodeResponse `json:"children"`
}

func toTokenResponse(p domain.TokenPair) TokenResponse {
	roleIDs := p.User.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
		User: AuthUserResponse{
			ID:       p.User.ID,
			Username: p.User.Username,
			FullName: p.User.FullName,
			Email:    p.User.Email,
			RoleIDs:  roleIDs,
			Active:   p.User.Active,
		},
	}
}

func toUserResponse(u domain.User) UserResponse {
	roleIDs := u.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		RoleIDs:   roleIDs,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toRoleResponse(r domain.Role) RoleResponse {
	return RoleResponse{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		PermissionIDs: r.PermissionIDs,
		MenuIDs:       r.MenuIDs,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRoleResponses(roles []domain.Role) []RoleResponse {
	out := make([]RoleResponse, len(roles))
	for i, r := range roles {
		out[i] = toRoleResponse(r)
	}
	return out
}

func toPermissionResponse(p domain.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPermissionResponses(perms []domain.Permission) []PermissionResponse {
	out := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		out[i] = toPermissionResponse(p)
	}
	return out
}

func toMenuResponse(m domain.Menu) MenuResponse {
	return MenuResponse{
		ID:         m.ID,
		Title:      m.Title,
		Path:       m.Path,
		Icon:       m.Icon,
		OrderIndex: m.OrderIndex,
		ParentID:   m.ParentID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toMenuResponses(menus []domain.Menu) []MenuResponse {
	out := make([]MenuResponse, len(menus))
	for i, m := range menus {
		out[i] = toMenuResponse(m)
	}
	return out
}

func toMenuTreeResponse(nodes []*domain.MenuNode) []MenuNodeResponse {
	out := make([]MenuNodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = MenuNodeResponse{
			MenuResponse: toMenuResponse(n.Menu),
			Children:     toMenuTreeResponse(n.Children),
		}
	}
	return out
}

// decodeJSON reads the request body into v and writes a 400 on failure.
// Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "invalid JSON body")
		return false
	}
	return true
}

// writeDomainError maps service and store errors to HTTP responses in one
// place so every handler reports failures identically.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "Resource not found", "not_found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, r, http.StatusConflict, "Resource already exists", "conflict")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, r, http.StatusUnauthorized, "Invalid username or password", "invalid_credentials")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, r, http.StatusUnauthorized, "Invalid refresh token", "invalid_refresh_token")
	case errors.Is(err, service.ErrMenuSelfParent):
		httpx.WriteError(w, r, http.StatusBadRequest, "A menu cannot be its own parent", "invalid_parent")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "Internal server error", "server_error")
	}
}
