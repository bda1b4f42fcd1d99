package sqlite

import (
	"context"

	"github.com/stocklot/stocklot/internal/api/domain"
	"github.com/stocklot/stocklot/pkg/listq"
)

// userFields is the allow-list of user fields exposed to list requests.
var userFields = listq.Registry{
	"username": {Column: "username", Type: listq.String, Searchable: true, Sortable: true},
	"email":    {Column: "email", Type: listq.String, Searchable: true, Sortable: true},
	"fullName": {Column: "full_name", Type: listq.String, Searchable: true, Sortable: true},
	"active":   {Column: "active", Type: listq.Bool},
}

const userColumns = `id, username, email, full_name, password_hash, active, created_at, updated_at`

type usersRepo struct {
	q dbtx
}

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var active int
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Active = active != 0
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := r.scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.RoleIDs, err = r.roleIDs(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := r.scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.RoleIDs, err = r.roleIDs(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetUserGraphByUsername loads the user together with its roles and each
// role's permissions. All reads go through the same handle, so inside a
// transaction the graph is a consistent snapshot.
func (r *usersRepo) GetUserGraphByUsername(ctx context.Context, username string) (domain.UserGraph, error) {
	u, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.UserGraph{}, err
	}

	graph := domain.UserGraph{User: u}

	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`, u.ID)
	if err != nil {
		return domain.UserGraph{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return domain.UserGraph{}, err
		}
		graph.Roles = append(graph.Roles, domain.RoleGraph{Role: role})
	}
	if err := rows.Err(); err != nil {
		return domain.UserGraph{}, err
	}

	for i := range graph.Roles {
		perms, err := r.rolePermissions(ctx, graph.Roles[i].ID)
		if err != nil {
			return domain.UserGraph{}, err
		}
		graph.Roles[i].Permissions = perms
	}

	return graph, nil
}

func (r *usersRepo) rolePermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT p.id, p.name, p.code, p.description, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		ORDER BY p.code`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *usersRepo) roleIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT role_id FROM user_roles WHERE user_id = ? ORDER BY role_id`, userID)
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

func (r *usersRepo) ListUsers(ctx context.Context, req listq.Request) ([]domain.User, int64, int64, error) {
	pred := listq.Build(userFields, req)

	total, filtered, err := listCounts(ctx, r.q, "users", pred)
	if err != nil {
		return nil, 0, 0, err
	}

	query, args := listQuery(userColumns, "users", pred, userFields.SortColumn(req.SortBy, "id"), req)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return users, total, filtered, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	active := 0
	if u.Active {
		active = 1
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, username, email, full_name, password_hash, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, active, u.CreatedAt, u.UpdatedAt)
	return mapConflict(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	active := 0
	if u.Active {
		active = 1
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, full_name = ?, password_hash = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		u.Username, u.Email, u.FullName, u.PasswordHash, active, nowUTC(), u.ID)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

// SetUserRoles replaces the assignment rows wholesale. Callers wrap this in
// a transaction together with the existence checks.
func (r *usersRepo) SetUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
