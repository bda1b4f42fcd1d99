package http

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/listq"
)

type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

// HandleList returns one page of permissions.
//
//	@Summary	List permissions
//	@Tags		Permissions
//	@Produce	json
//	@Param		page	query		int		false	"Page number (0-indexed)"
//	@Param		size	query		int		false	"Page size (1-100)"
//	@Param		search	query		string	false	"Free-text search term"
//	@Success	200	{object}	listq.Page[PermissionResponse]
//	@Failure	403	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/permissions [get].
func (h *PermissionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.PermissionService.ListPermissions(r.Context(), listq.ParseRequest(r.URL.Query()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := listq.Page[PermissionResponse]{
		Data:            toPermissionResponses(page.Data),
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

// HandleListAll returns every permission, for assignment pickers.
//
//	@Summary	List all permissions
//	@Tags		Permissions
//	@Produce	json
//	@Success	200	{array}	PermissionResponse
//	@Security	BearerAuth
//	@Router		/api/permissions/all [get].
func (h *PermissionsHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	perms, err := h.PermissionService.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermissionResponses(perms))
}

// HandleGet returns a single permission.
//
//	@Summary	Get permission
//	@Tags		Permissions
//	@Produce	json
//	@Param		id	path		string	true	"Permission ID"
//	@Success	200	{object}	PermissionResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/permissions/{id} [get].
func (h *PermissionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	perm, err := h.PermissionService.GetPermissionByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermissionResponse(perm))
}

// HandleCreate creates a permission.
//
//	@Summary	Create permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		PermissionRequest	true	"New permission"
//	@Success	201		{object}	PermissionResponse
//	@Failure	409		{object}	httpx.ErrorBody	"Code taken"
//	@Security	BearerAuth
//	@Router		/api/permissions [post].
func (h *PermissionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req PermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "name and code are required")
		return
	}

	perm, err := h.PermissionService.CreatePermission(r.Context(), service.PermissionInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPermissionResponse(perm))
}

// HandleUpdate rewrites a permission's mutable fields.
//
//	@Summary	Update permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Permission ID"
//	@Param		request	body		PermissionRequest	true	"Fields"
//	@Success	200		{object}	PermissionResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/permissions/{id} [put].
func (h *PermissionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req PermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "name and code are required")
		return
	}

	perm, err := h.PermissionService.UpdatePermission(r.Context(), r.PathValue("id"), service.PermissionInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermissionResponse(perm))
}

// HandleDelete removes a permission.
//
//	@Summary	Delete permission
//	@Tags		Permissions
//	@Param		id	path	string	true	"Permission ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/permissions/{id} [delete].
func (h *PermissionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.PermissionService.DeletePermission(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
