package http

import (
	"net/http"
	"strings"

	"github.com/stocklot/stocklot/internal/api/service"
	"github.com/stocklot/stocklot/pkg/httpx"
	"github.com/stocklot/stocklot/pkg/listq"
)

type MenusHandler struct {
	MenuService *service.MenuService
}

// HandleList returns one page of menu entries.
//
//	@Summary	List menus
//	@Tags		Menus
//	@Produce	json
//	@Param		page	query		int		false	"Page number (0-indexed)"
//	@Param		size	query		int		false	"Page size (1-100)"
//	@Param		search	query		string	false	"Free-text search term"
//	@Success	200	{object}	listq.Page[MenuResponse]
//	@Failure	403	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/menus [get].
func (h *MenusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.MenuService.ListMenus(r.Context(), listq.ParseRequest(r.URL.Query()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := listq.Page[MenuResponse]{
		Data:            toMenuResponses(page.Data),
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

// HandleTree returns the full menu hierarchy.
//
//	@Summary	Menu tree
//	@Tags		Menus
//	@Produce	json
//	@Success	200	{array}	MenuNodeResponse
//	@Security	BearerAuth
//	@Router		/api/menus/tree [get].
func (h *MenusHandler) HandleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.MenuService.Tree(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMenuTreeResponse(tree))
}

// HandleMine returns the menu hierarchy visible to the caller's roles. Any
// authenticated user may call it; the answer is shaped by role-menu
// assignments, not by a permission code.
//
//	@Summary	My menus
//	@Tags		Menus
//	@Produce	json
//	@Success	200	{array}		MenuNodeResponse
//	@Failure	401	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/menus/mine [get].
func (h *MenusHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFromContext(r.Context())

	tree, err := h.MenuService.TreeForUser(r.Context(), p.Subject)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMenuTreeResponse(tree))
}

// HandleGet returns a single menu entry.
//
//	@Summary	Get menu
//	@Tags		Menus
//	@Produce	json
//	@Param		id	path		string	true	"Menu ID"
//	@Success	200	{object}	MenuResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/menus/{id} [get].
func (h *MenusHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	menu, err := h.MenuService.GetMenuByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMenuResponse(menu))
}

// HandleCreate creates a menu entry.
//
//	@Summary	Create menu
//	@Tags		Menus
//	@Accept		json
//	@Produce	json
//	@Param		request	body		MenuRequest	true	"New menu"
//	@Success	201		{object}	MenuResponse
//	@Failure	409		{object}	httpx.ErrorBody	"Path taken"
//	@Security	BearerAuth
//	@Router		/api/menus [post].
func (h *MenusHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Path) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "title and path are required")
		return
	}

	menu, err := h.MenuService.CreateMenu(r.Context(), service.MenuInput{
		Title:      req.Title,
		Path:       req.Path,
		Icon:       req.Icon,
		OrderIndex: req.OrderIndex,
		ParentID:   req.ParentID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMenuResponse(menu))
}

// HandleUpdate rewrites a menu entry's mutable fields.
//
//	@Summary	Update menu
//	@Tags		Menus
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Menu ID"
//	@Param		request	body		MenuRequest	true	"Fields"
//	@Success	200		{object}	MenuResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/menus/{id} [put].
func (h *MenusHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Path) == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "Bad request", "title and path are required")
		return
	}

	menu, err := h.MenuService.UpdateMenu(r.Context(), r.PathValue("id"), service.MenuInput{
		Title:      req.Title,
		Path:       req.Path,
		Icon:       req.Icon,
		OrderIndex: req.OrderIndex,
		ParentID:   req.ParentID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMenuResponse(menu))
}

// HandleDelete removes a menu entry.
//
//	@Summary	Delete menu
//	@Tags		Menus
//	@Param		id	path	string	true	"Menu ID"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorBody
//	@Security	BearerAuth
//	@Router		/api/menus/{id} [delete].
func (h *MenusHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.MenuService.DeleteMenu(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
