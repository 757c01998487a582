package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

const userColumns = `users.id, users.name, users.icon_url, users.created_at, users.updated_at,
		role.id, role.name, role.description, role.is_super_administrator`

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db DBTX) simplecms.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*simplecms.User, error) {
	var (
		id, roleID           uuid.UUID
		name, iconURL        string
		createdAt, updatedAt time.Time
		roleName             string
		roleDescription      *string
		isSuperAdmin         bool
	)
	if err := row.Scan(&id, &name, &iconURL, &createdAt, &updatedAt,
		&roleID, &roleName, &roleDescription, &isSuperAdmin); err != nil {
		return nil, err
	}
	role := simplecms.Role{
		ID:                   roleID.String(),
		Name:                 roleName,
		Description:          roleDescription,
		IsSuperAdministrator: isSuperAdmin,
	}
	return simplecms.NewUser(id.String(), name, iconURL, role, createdAt, updatedAt)
}

func (r *userRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.User, error) {
	q := query.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		JOIN role ON users.role_id = role.id
		ORDER BY users.created_at
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset)
	if err != nil {
		return nil, handlePostgresError(err, "list users", simplecms.ErrUserNotFound)
	}
	defer rows.Close()

	var users []*simplecms.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, &simplecms.UserError{Op: "list", Err: err}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list users", simplecms.ErrUserNotFound)
	}
	return users, nil
}

func (r *userRepository) Find(ctx context.Context, id string) (*simplecms.User, error) {
	parsed, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		JOIN role ON users.role_id = role.id
		WHERE users.id = $1`, parsed)

	user, err := scanUser(row)
	if err != nil {
		return nil, handlePostgresError(err, "find user", simplecms.ErrUserNotFound)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, req simplecms.CreateUserRequest) (*simplecms.User, error) {
	roleID, err := parseID("role_id", req.RoleID)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO users (id, name, icon_url, role_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT inserted.id, inserted.name, inserted.icon_url, inserted.created_at, inserted.updated_at,
			role.id, role.name, role.description, role.is_super_administrator
		FROM inserted
		JOIN role ON inserted.role_id = role.id`,
		id, req.Name, req.IconURL, roleID)

	user, err := scanUser(row)
	if err != nil {
		return nil, handlePostgresError(err, "create user", simplecms.ErrUserNotFound)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, req simplecms.UpdateUserRequest) (*simplecms.User, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	b := newUpdateBuilder("users")
	roleJoin := "role.id = users.role_id"
	var newRoleID *uuid.UUID
	if req.Name != nil {
		b.Set("name", *req.Name)
	}
	if req.IconURL != nil {
		b.Set("icon_url", *req.IconURL)
	}
	if req.RoleID != nil {
		roleID, err := parseID("role_id", *req.RoleID)
		if err != nil {
			return nil, err
		}
		newRoleID = &roleID
		b.Set("role_id", roleID)
		roleJoin = "role.id = " + b.Bind(roleID)
	}
	if !b.Empty() {
		b.Set("updated_at", time.Now().UTC())
	}

	idPh := b.Bind(id)
	query, args, err := b.Build(`
		FROM role
		WHERE users.id = ` + idPh + `
		AND ` + roleJoin + `
		RETURNING ` + userColumns)
	if err != nil {
		return nil, &simplecms.UserError{UserID: req.ID, Op: "update", Err: err}
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		err = handlePostgresError(err, "update user", simplecms.ErrUserNotFound)
		// A role join on a nonexistent role id also matches zero rows.
		// Report that as a foreign key violation when the user row exists.
		if errors.Is(err, simplecms.ErrUserNotFound) && newRoleID != nil {
			if exists, checkErr := rowExists(ctx, r.db, "users", id); checkErr == nil && exists {
				err = fmt.Errorf("update user: %w: role %s", simplecms.ErrForeignKeyViolation, newRoleID)
			}
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID("id", id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, parsed)
	if err != nil {
		return handlePostgresError(err, "delete user", simplecms.ErrUserNotFound)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrUserNotFound
	}
	return nil
}

type roleRepository struct {
	db DBTX
}

// NewRoleRepository creates a PostgreSQL-backed role repository.
func NewRoleRepository(db DBTX) simplecms.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]*simplecms.Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, is_super_administrator
		FROM role
		ORDER BY name`)
	if err != nil {
		return nil, handlePostgresError(err, "list roles", simplecms.ErrRoleNotFound)
	}
	defer rows.Close()

	var roles []*simplecms.Role
	for rows.Next() {
		var (
			id           uuid.UUID
			name         string
			description  *string
			isSuperAdmin bool
		)
		if err := rows.Scan(&id, &name, &description, &isSuperAdmin); err != nil {
			return nil, err
		}
		roles = append(roles, &simplecms.Role{
			ID:                   id.String(),
			Name:                 name,
			Description:          description,
			IsSuperAdministrator: isSuperAdmin,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list roles", simplecms.ErrRoleNotFound)
	}
	return roles, nil
}
