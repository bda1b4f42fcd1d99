package sqlite

import (
	"context"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/pkg/listq"
)

var permissionFields = listq.Registry{
	"name":        {Column: "name", Type: listq.String, Searchable: true, Sortable: true},
	"code":        {Column: "code", Type: listq.String, Searchable: true, Sortable: true},
	"description": {Column: "description", Type: listq.String, Searchable: true},
}

const permissionColumns = `id, name, code, description, created_at, updated_at`

type permissionsRepo struct {
	q dbtx
}

func (r *permissionsRepo) scanPermission(row interface{ Scan(...any) error }) (domain.Permission, error) {
	var p domain.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *permissionsRepo) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = ?`, id)
	p, err := r.scanPermission(row)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) GetPermissionByCode(ctx context.Context, code string) (domain.Permission, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE code = ?`, code)
	p, err := r.scanPermission(row)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) ListPermissions(ctx context.Context, req listq.Request) ([]domain.Permission, int64, int64, error) {
	pred := listq.Build(permissionFields, req)

	total, filtered, err := listCounts(ctx, r.q, "permissions", pred)
	if err != nil {
		return nil, 0, 0, err
	}

	query, args := listQuery(permissionColumns, "permissions", pred, permissionFields.SortColumn(req.SortBy, "id"), req)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		p, err := r.scanPermission(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return perms, total, filtered, nil
}

func (r *permissionsRepo) ListAll(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+permissionColumns+` FROM permissions ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		p, err := r.scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO permissions (id, name, code, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Code, p.Description, p.CreatedAt, p.UpdatedAt)
	return mapConflict(err)
}

func (r *permissionsRepo) UpdatePermission(ctx context.Context, p domain.Permission) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE permissions SET name = ?, code = ?, description = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Code, p.Description, nowUTC(), p.ID)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *permissionsRepo) DeletePermission(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM permissions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
