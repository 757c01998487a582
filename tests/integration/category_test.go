package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto/simple-cms/pkg/simplecms"
	"github.com/hokuto/simple-cms/tests/testutil"
)

func TestCategoryRepository_Integration_CreateEcho(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, "alice")
	desc := "all the news"

	category, err := fixtures.Categories.Create(ctx, simplecms.CreateCategoryRequest{
		Name:          "news",
		APIIdentifier: "news",
		Description:   &desc,
		CreatedByID:   user.ID,
		UpdatedByID:   user.ID,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "news", category.Name)
	assert.Equal(t, "news", category.APIIdentifier)
	require.NotNil(t, category.Description)
	assert.Equal(t, desc, *category.Description)
	assert.Equal(t, user.ID, category.CreatedBy.ID)
	assert.Equal(t, "alice", category.CreatedBy.Name)
	assert.False(t, category.CreatedAt.IsZero())
}

func TestCategoryRepository_Integration_DuplicateAPIIdentifier(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, "alice")
	fixtures.CreateCategory(t, user, "news")

	_, err := fixtures.Categories.Create(ctx, simplecms.CreateCategoryRequest{
		Name:          "other",
		APIIdentifier: "news",
		CreatedByID:   user.ID,
		UpdatedByID:   user.ID,
	})

	assert.ErrorIs(t, err, simplecms.ErrDuplicateKey)
}

func TestCategoryRepository_Integration_PartialUpdate(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	alice := fixtures.CreateUser(t, "alice")
	bob := fixtures.CreateUser(t, "bob")
	category := fixtures.CreateCategory(t, alice, "blog")

	name := "weblog"
	updated, err := fixtures.Categories.Update(ctx, simplecms.UpdateCategoryRequest{
		ID:          category.ID,
		Name:        &name,
		UpdatedByID: bob.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "weblog", updated.Name)
	assert.Equal(t, "blog", updated.APIIdentifier, "untouched field is preserved")
	assert.Equal(t, alice.ID, updated.CreatedBy.ID, "creator never changes")
	assert.Equal(t, bob.ID, updated.UpdatedBy.ID)
	assert.True(t, updated.UpdatedAt.After(category.UpdatedAt))
}

func TestCategoryRepository_Integration_DeleteThenList(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, "alice")
	category := fixtures.CreateCategory(t, user, "temp")

	require.NoError(t, fixtures.Categories.Delete(ctx, category.ID))

	categories, err := fixtures.Categories.List(ctx, simplecms.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, categories)

	assert.ErrorIs(t, fixtures.Categories.Delete(ctx, category.ID), simplecms.ErrCategoryNotFound)
}

func TestUserRepository_Integration_RoleChange(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, "alice")
	assert.Equal(t, "editor", user.Role.Name)

	roles, err := fixtures.Roles.List(ctx)
	require.NoError(t, err)
	var adminID string
	for _, role := range roles {
		if role.IsSuperAdministrator {
			adminID = role.ID
		}
	}
	require.NotEmpty(t, adminID)

	updated, err := fixtures.Users.Update(ctx, simplecms.UpdateUserRequest{
		ID:     user.ID,
		RoleID: &adminID,
	})

	require.NoError(t, err)
	assert.Equal(t, "administrator", updated.Role.Name)
	assert.True(t, updated.Role.IsSuperAdministrator)
}

func TestUserRepository_Integration_EmptyUpdateRejected(t *testing.T) {
	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, "alice")

	_, err := fixtures.Users.Update(ctx, simplecms.UpdateUserRequest{ID: user.ID})

	assert.ErrorIs(t, err, simplecms.ErrEmptyUpdate)
}
