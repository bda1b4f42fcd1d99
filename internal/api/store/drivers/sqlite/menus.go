package sqlite

import (
	"context"
	"database/sql"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/pkg/listq"
)

var menuFields = listq.Registry{
	"title":      {Column: "title", Type: listq.String, Searchable: true, Sortable: true},
	"path":       {Column: "path", Type: listq.String, Searchable: true, Sortable: true},
	"orderIndex": {Column: "order_index", Type: listq.Int, Sortable: true},
}

const menuColumns = `id, title, path, icon, order_index, parent_id, created_at, updated_at`

type menusRepo struct {
	q dbtx
}

func (r *menusRepo) scanMenu(row interface{ Scan(...any) error }) (domain.Menu, error) {
	var m domain.Menu
	var parent sql.NullString
	err := row.Scan(&m.ID, &m.Title, &m.Path, &m.Icon, &m.OrderIndex, &parent, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Menu{}, err
	}
	m.ParentID = mapNullStringPtr(parent)
	return m, nil
}

func (r *menusRepo) GetMenuByID(ctx context.Context, id string) (domain.Menu, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = ?`, id)
	m, err := r.scanMenu(row)
	if err != nil {
		return domain.Menu{}, mapNotFound(err)
	}
	return m, nil
}

func (r *menusRepo) GetMenuByPath(ctx context.Context, path string) (domain.Menu, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE path = ?`, path)
	m, err := r.scanMenu(row)
	if err != nil {
		return domain.Menu{}, mapNotFound(err)
	}
	return m, nil
}

func (r *menusRepo) ListMenus(ctx context.Context, req listq.Request) ([]domain.Menu, int64, int64, error) {
	pred := listq.Build(menuFields, req)

	total, filtered, err := listCounts(ctx, r.q, "menus", pred)
	if err != nil {
		return nil, 0, 0, err
	}

	query, args := listQuery(menuColumns, "menus", pred, menuFields.SortColumn(req.SortBy, "order_index"), req)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	menus, err := r.collect(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	return menus, total, filtered, nil
}

func (r *menusRepo) ListAll(ctx context.Context) ([]domain.Menu, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+menuColumns+` FROM menus ORDER BY order_index, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *menusRepo) ListMenusForUser(ctx context.Context, username string) ([]domain.Menu, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT m.id, m.title, m.path, m.icon, m.order_index, m.parent_id, m.created_at, m.updated_at
		FROM menus m
		JOIN role_menus rm ON rm.menu_id = m.id
		JOIN user_roles ur ON ur.role_id = rm.role_id
		JOIN users u ON u.id = ur.user_id
		WHERE u.username = ?
		ORDER BY m.order_index, m.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *menusRepo) collect(rows *sql.Rows) ([]domain.Menu, error) {
	var menus []domain.Menu
	for rows.Next() {
		m, err := r.scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func (r *menusRepo) CreateMenu(ctx context.Context, m domain.Menu) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO menus (id, title, path, icon, order_index, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Path, m.Icon, m.OrderIndex, mapOptionalString(m.ParentID), m.CreatedAt, m.UpdatedAt)
	return mapConflict(err)
}

func (r *menusRepo) UpdateMenu(ctx context.Context, m domain.Menu) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE menus
		SET title = ?, path = ?, icon = ?, order_index = ?, parent_id = ?, updated_at = ?
		WHERE id = ?`,
		m.Title, m.Path, m.Icon, m.OrderIndex, mapOptionalString(m.ParentID), nowUTC(), m.ID)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *menusRepo) DeleteMenu(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
