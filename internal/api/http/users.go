package http

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/listq"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList returns one page of users.
//
//	@Summary		List users
//	@Description	Paged user listing with free-text search, per-field filters and sorting.
//	@Tags			Users
//	@Produce		json
//	@Param			page	query		int		false	"Page number (0-indexed)"
//	@Param			size	query		int		false	"Page size (1-100)"
//	@Param			search	query		string	false	"Free-text search term"
//	@Param			sortBy	query		string	false	"Sort field"
//	@Param			sortDir	query		string	false	"asc or desc"
//	@Success		200	{object}	listq.Page[UserResponse]
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		403	{object}	httpx.ErrorBody
//	@Security		BearerAuth
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.UserService.ListUsers(r.Context(), listq.ParseRequest(r.URL.Query()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := listq.Page[UserResponse]{
		Data:            toUserResponses(page.Data),
		TotalRecords:    page.TotalRecords,
		FilteredRecords: page.FilteredRecords,
		CurrentPage:     page.CurrentPage,
		PageSize:        page.PageSize,
		TotalPages:      page.TotalPages,
		HasNext:         page.HasNext,
		HasPrevious:     page.HasPrevious,
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single user.
//
//	@Summary	Get user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleCreate creates a user with an initial role assignment.
//
//	@Summary	Create user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateUserRequest	true	"New user"
//	@Success	201		{object}	UserResponse
//	@Failure	409		{object}	httpx.ErrorBody	"Username or email already taken"
//	@Security	BearerAuth
//	@Router		/api/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "username, email and password are required")
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Active:   req.Active,
		RoleIDs:  req.RoleIDs,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleUpdate rewrites a user's mutable profile fields.
//
//	@Summary	Update user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"User ID"
//	@Param		request	body		UpdateUserRequest	true	"Fields"
//	@Success	200		{object}	UserResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), r.PathValue("id"), service.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Active:   req.Active,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleAssignRoles replaces a user's role set.
//
//	@Summary	Assign roles
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"User ID"
//	@Param		request	body		AssignRolesRequest	true	"Role IDs"
//	@Success	200		{object}	UserResponse
//	@Failure	404		{object}	httpx.ErrorBody	"User or role not found"
//	@Security	BearerAuth
//	@Router		/api/users/{id}/roles [post].
func (h *UsersHandler) HandleAssignRoles(w http.ResponseWriter, r *http.Request) {
	var req AssignRolesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.AssignRoles(r.Context(), r.PathValue("id"), req.RoleIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete removes a user.
//
//	@Summary	Delete user
//	@Tags		Users
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
