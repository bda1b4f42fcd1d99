package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/stocklot/stocklot/internal/api/cache"
	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/internal/api/store"
	"github.com/stocklot/stocklot/pkg/idx"
	"github.com/stocklot/stocklot/pkg/listq"
	"github.com/stocklot/stocklot/pkg/slogx"
)

// ErrMenuSelfParent rejects an update that would make a menu its own parent.
var ErrMenuSelfParent = errors.New("menu_self_parent")

type MenuService struct {
	Store store.Store
	Cache cache.Cache
}

type MenuInput struct {
	Title      string
	Path       string
	Icon       string
	OrderIndex int
	ParentID   *string
}

// GetMenuByID fetches a menu entry by its ID.
func (s *MenuService) GetMenuByID(ctx context.Context, id string) (domain.Menu, error) {
	return s.Store.Menus().GetMenuByID(ctx, id)
}

// ListMenus returns one page of menu entries for the request.
func (s *MenuService) ListMenus(ctx context.Context, req listq.Request) (listq.Page[domain.Menu], error) {
	menus, total, filtered, err := s.Store.Menus().ListMenus(ctx, req)
	if err != nil {
		return listq.Page[domain.Menu]{}, err
	}
	return listq.NewPage(menus, total, filtered, req.PageNumber(), req.PageSize()), nil
}

// Tree returns the full menu hierarchy, cached until the next menu write.
// Orphans whose parent no longer exists surface as roots rather than being
// dropped.
func (s *MenuService) Tree(ctx context.Context) ([]*domain.MenuNode, error) {
	const key = "menus:tree"
	if raw, ok := s.Cache.Get(key); ok {
		var tree []*domain.MenuNode
		if err := json.Unmarshal(raw, &tree); err == nil {
			return tree, nil
		}
	}

	menus, err := s.Store.Menus().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tree := buildTree(menus)

	if raw, err := json.Marshal(tree); err == nil {
		s.Cache.Set(key, raw, 0, cache.TagMenus)
	}
	return tree, nil
}

// TreeForUser returns the menu hierarchy restricted to what the user's
// roles can see. Keyed by username to match the token subject. Cached per
// user, invalidated on user, role and menu writes since the visible set
// depends on all three.
func (s *MenuService) TreeForUser(ctx context.Context, username string) ([]*domain.MenuNode, error) {
	key := "menus:user:" + username
	if raw, ok := s.Cache.Get(key); ok {
		var tree []*domain.MenuNode
		if err := json.Unmarshal(raw, &tree); err == nil {
			return tree, nil
		}
	}

	menus, err := s.Store.Menus().ListMenusForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	tree := buildTree(menus)

	if raw, err := json.Marshal(tree); err == nil {
		s.Cache.Set(key, raw, 0, cache.TagMenus, cache.TagRoles, cache.TagUsers)
	}
	return tree, nil
}

// buildTree links menus into parent/child nodes. A child whose parent is
// not in the input set becomes a root.
func buildTree(menus []domain.Menu) []*domain.MenuNode {
	nodes := make(map[string]*domain.MenuNode, len(menus))
	for _, m := range menus {
		nodes[m.ID] = &domain.MenuNode{Menu: m}
	}

	var roots []*domain.MenuNode
	for _, m := range menus {
		node := nodes[m.ID]
		if m.ParentID != nil {
			if parent, ok := nodes[*m.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*domain.MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].OrderIndex != nodes[j].OrderIndex {
			return nodes[i].OrderIndex < nodes[j].OrderIndex
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// CreateMenu inserts a new menu entry. A parent id, when given, must exist.
func (s *MenuService) CreateMenu(ctx context.Context, in MenuInput) (domain.Menu, error) {
	now := time.Now().UTC()
	menu := domain.Menu{
		ID:         idx.New().String(),
		Title:      strings.TrimSpace(in.Title),
		Path:       strings.TrimSpace(in.Path),
		Icon:       strings.TrimSpace(in.Icon),
		OrderIndex: in.OrderIndex,
		ParentID:   in.ParentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if menu.ParentID != nil {
			if _, err := tx.Menus().GetMenuByID(ctx, *menu.ParentID); err != nil {
				return err
			}
		}
		return tx.Menus().CreateMenu(ctx, menu)
	})
	if err != nil {
		return domain.Menu{}, err
	}

	s.Cache.InvalidateTags(cache.TagMenus)
	slogx.FromContext(ctx).Info("menu created",
		slog.String("menu_id", menu.ID), slog.String("path", menu.Path))
	return menu, nil
}

// UpdateMenu rewrites the mutable fields. A menu cannot be its own parent.
func (s *MenuService) UpdateMenu(ctx context.Context, id string, in MenuInput) (domain.Menu, error) {
	menu, err := s.Store.Menus().GetMenuByID(ctx, id)
	if err != nil {
		return domain.Menu{}, err
	}

	if in.ParentID != nil && *in.ParentID == id {
		return domain.Menu{}, ErrMenuSelfParent
	}

	menu.Title = strings.TrimSpace(in.Title)
	menu.Path = strings.TrimSpace(in.Path)
	menu.Icon = strings.TrimSpace(in.Icon)
	menu.OrderIndex = in.OrderIndex
	menu.ParentID = in.ParentID

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if menu.ParentID != nil {
			if _, err := tx.Menus().GetMenuByID(ctx, *menu.ParentID); err != nil {
				return err
			}
		}
		return tx.Menus().UpdateMenu(ctx, menu)
	})
	if err != nil {
		return domain.Menu{}, err
	}

	s.Cache.InvalidateTags(cache.TagMenus)
	return s.Store.Menus().GetMenuByID(ctx, id)
}

// DeleteMenu removes the entry. Children are re-parented to the root by the
// schema's ON DELETE SET NULL.
func (s *MenuService) DeleteMenu(ctx context.Context, id string) error {
	if err := s.Store.Menus().DeleteMenu(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateTags(cache.TagMenus)
	slogx.FromContext(ctx).Info("menu deleted", slog.String("menu_id", id))
	return nil
}
