package sqlite

import (
	"context"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/pkg/listq"
)

var roleFields = listq.Registry{
	"name":        {Column: "name", Type: listq.String, Searchable: true, Sortable: true},
	"description": {Column: "description", Type: listq.String, Searchable: true},
}

const roleColumns = `id, name, description, created_at, updated_at`

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id)
	role, err := r.scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	if role.PermissionIDs, err = r.assignedIDs(ctx,
		`SELECT permission_id FROM role_permissions WHERE role_id = ? ORDER BY permission_id`, role.ID); err != nil {
		return domain.Role{}, err
	}
	if role.MenuIDs, err = r.assignedIDs(ctx,
		`SELECT menu_id FROM role_menus WHERE role_id = ? ORDER BY menu_id`, role.ID); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = ?`, name)
	role, err := r.scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) assignedIDs(ctx context.Context, query, roleID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *rolesRepo) ListRoles(ctx context.Context, req listq.Request) ([]domain.Role, int64, int64, error) {
	pred := listq.Build(roleFields, req)

	total, filtered, err := listCounts(ctx, r.q, "roles", pred)
	if err != nil {
		return nil, 0, 0, err
	}

	query, args := listQuery(roleColumns, "roles", pred, roleFields.SortColumn(req.SortBy, "id"), req)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := r.scanRole(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return roles, total, filtered, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := r.scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	return mapConflict(err)
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE roles SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		role.Name, role.Description, nowUTC(), role.ID)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *rolesRepo) SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, roleID); err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`, roleID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (r *rolesRepo) SetRoleMenus(ctx context.Context, roleID string, menuIDs []string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM role_menus WHERE role_id = ?`, roleID); err != nil {
		return err
	}
	for _, mid := range menuIDs {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO role_menus (role_id, menu_id) VALUES (?, ?)`, roleID, mid); err != nil {
			return err
		}
	}
	return nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, roleID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, roleID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
