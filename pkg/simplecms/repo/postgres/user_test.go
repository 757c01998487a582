package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

var userCols = []string{
	"id", "name", "icon_url", "created_at", "updated_at",
	"role_id", "role_name", "role_description", "is_super_administrator",
}

func TestUserRepository_Find(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()
	userID := uuid.New()
	roleID := uuid.New()
	now := time.Now()

	t.Run("existing user", func(t *testing.T) {
		rows := pgxmock.NewRows(userCols).
			AddRow(userID, "alice", "https://example.com/a.png", now, now, roleID, "editor", nil, false)

		mock.ExpectQuery(`SELECT .+ FROM users\s+JOIN role`).
			WithArgs(userID).
			WillReturnRows(rows)

		user, err := repo.Find(ctx, userID.String())

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, "editor", user.Role.Name)
		assert.False(t, user.Role.IsSuperAdministrator)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users\s+JOIN role`).
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Find(ctx, userID.String())

		assert.ErrorIs(t, err, simplecms.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()
	userID := uuid.New()
	roleID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userCols).
		AddRow(userID, "alice", "https://example.com/a.png", now, now, roleID, "administrator", nil, true)

	mock.ExpectQuery(`WITH inserted AS \(\s*INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice", "https://example.com/a.png", roleID).
		WillReturnRows(rows)

	user, err := repo.Create(ctx, simplecms.CreateUserRequest{
		Name:    "alice",
		IconURL: "https://example.com/a.png",
		RoleID:  roleID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, userID.String(), user.ID)
	assert.True(t, user.Role.IsSuperAdministrator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_RoleChange(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()
	userID := uuid.New()
	newRoleID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userCols).
		AddRow(userID, "alice", "https://example.com/a.png", now, now, newRoleID, "editor", nil, false)

	// role_id is both assigned and re-bound for the join, since the join
	// must resolve against the new role row.
	mock.ExpectQuery(`UPDATE users SET role_id = \$1, updated_at = \$3`).
		WithArgs(newRoleID, newRoleID, pgxmock.AnyArg(), userID).
		WillReturnRows(rows)

	roleID := newRoleID.String()
	user, err := repo.Update(ctx, simplecms.UpdateUserRequest{ID: userID.String(), RoleID: &roleID})

	require.NoError(t, err)
	assert.Equal(t, newRoleID.String(), user.Role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_UnknownRoleIsForeignKeyViolation(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()
	userID := uuid.New()
	missingRoleID := uuid.New()
	roleID := missingRoleID.String()

	t.Run("existing user", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users SET role_id = \$1, updated_at = \$3`).
			WithArgs(missingRoleID, missingRoleID, pgxmock.AnyArg(), userID).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Update(ctx, simplecms.UpdateUserRequest{ID: userID.String(), RoleID: &roleID})

		assert.ErrorIs(t, err, simplecms.ErrForeignKeyViolation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user stays not found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users SET role_id = \$1, updated_at = \$3`).
			WithArgs(missingRoleID, missingRoleID, pgxmock.AnyArg(), userID).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Update(ctx, simplecms.UpdateUserRequest{ID: userID.String(), RoleID: &roleID})

		assert.ErrorIs(t, err, simplecms.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRoleRepository_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRoleRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "is_super_administrator"}).
		AddRow(uuid.New(), "administrator", nil, true).
		AddRow(uuid.New(), "editor", nil, false)

	mock.ExpectQuery(`SELECT .+ FROM role`).
		WillReturnRows(rows)

	roles, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.True(t, roles[0].IsSuperAdministrator)
	assert.Equal(t, "editor", roles[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
