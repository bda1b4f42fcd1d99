package http

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

// HandleLogin authenticates a user and issues a token pair.
//
//	@Summary		Log in
//	@Description	Exchanges username and password for a JWT access/refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid credentials"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "username and password are required")
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRegister creates an account and logs it in.
//
//	@Summary		Register
//	@Description	Creates a new account with no roles and returns a token pair for it.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"New account"
//	@Success		201		{object}	TokenResponse
//	@Failure		409		{object}	httpx.ErrorBody	"Username or email already taken"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "username, email and password are required")
		return
	}

	pair, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTokenResponse(pair))
}

// HandleRefresh exchanges a refresh token for a fresh pair.
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a valid refresh token for a new access/refresh pair with re-resolved authorities.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid refresh token"
//	@Router			/api/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "refreshToken is required")
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleMe returns the caller's profile plus the authority snapshot from
// its token. The snapshot may lag behind the database; that staleness is
// inherent to stateless tokens.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	ProfileResponse
//	@Failure		401	{object}	httpx.ErrorBody
//	@Security		BearerAuth
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFromContext(r.Context())

	user, err := h.UserService.GetUserByUsername(r.Context(), p.Subject)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	authorities := p.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, ProfileResponse{
		UserResponse: toUserResponse(user),
		Authorities:  authorities,
	})
}

// HandleChangePassword sets a new password after verifying the current one.
//
//	@Summary		Change password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	ChangePasswordRequest	true	"Passwords"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody	"Wrong current password"
//	@Security		BearerAuth
//	@Router			/api/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFromContext(r.Context())

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "currentPassword and newPassword are required")
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), p.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
