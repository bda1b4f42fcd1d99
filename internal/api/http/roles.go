package http

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/listq"
)

type RolesHandler struct {
	RoleService *service.RoleService
}

// HandleList returns one page of roles.
//
//	@Summary	List roles
//	@Tags		Roles
//	@Produce	json
//	@Param		page	query		int		false	"Page number (0-indexed)"
//	@Param		size	query		int		false	"Page size (1-100)"
//	@Param		search	query		string	false	"Free-text search term"
//	@Success	200	{object}	listq.Page[RoleResponse]
//	@Failure	403	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.RoleService.ListRoles(r.Context(), listq.ParseRequest(r.URL.Query()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := listq.Page[RoleResponse]{
		Data:            toRoleResponses(page.Data),
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

// HandleListAll returns every role, for assignment pickers.
//
//	@Summary	List all roles
//	@Tags		Roles
//	@Produce	json
//	@Success	200	{array}	RoleResponse
//	@Security	BearerAuth
//	@Router		/api/roles/all [get].
func (h *RolesHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleService.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponses(roles))
}

// HandleGet returns a single role with its assignments.
//
//	@Summary	Get role
//	@Tags		Roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"
//	@Success	200	{object}	RoleResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/roles/{id} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, err := h.RoleService.GetRoleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleCreate creates a role.
//
//	@Summary	Create role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RoleRequest	true	"New role"
//	@Success	201		{object}	RoleResponse
//	@Failure	409		{object}	httpx.ErrorBody	"Role name taken"
//	@Security	BearerAuth
//	@Router		/api/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "name is required")
		return
	}

	role, err := h.RoleService.CreateRole(r.Context(), service.RoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleResponse(role))
}

// HandleUpdate rewrites a role's name and description.
//
//	@Summary	Update role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Role ID"
//	@Param		request	body		RoleRequest	true	"Fields"
//	@Success	200		{object}	RoleResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/roles/{id} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "name is required")
		return
	}

	role, err := h.RoleService.UpdateRole(r.Context(), r.PathValue("id"), service.RoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleAssignPermissions replaces a role's permission set.
//
//	@Summary	Assign permissions
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Role ID"
//	@Param		request	body		AssignPermissionsRequest	true	"Permission IDs"
//	@Success	200		{object}	RoleResponse
//	@Failure	404		{object}	httpx.ErrorBody	"Role or permission not found"
//	@Security	BearerAuth
//	@Router		/api/roles/{id}/permissions [post].
func (h *RolesHandler) HandleAssignPermissions(w http.ResponseWriter, r *http.Request) {
	var req AssignPermissionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := h.RoleService.AssignPermissions(r.Context(), r.PathValue("id"), req.PermissionIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleAssignMenus replaces a role's menu set.
//
//	@Summary	Assign menus
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Role ID"
//	@Param		request	body		AssignMenusRequest	true	"Menu IDs"
//	@Success	200		{object}	RoleResponse
//	@Failure	404		{object}	httpx.ErrorBody	"Role or menu not found"
//	@Security	BearerAuth
//	@Router		/api/roles/{id}/menus [post].
func (h *RolesHandler) HandleAssignMenus(w http.ResponseWriter, r *http.Request) {
	var req AssignMenusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := h.RoleService.AssignMenus(r.Context(), r.PathValue("id"), req.MenuIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleDelete removes a role.
//
//	@Summary	Delete role
//	@Tags		Roles
//	@Param		id	path	string	true	"Role ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.RoleService.DeleteRole(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
