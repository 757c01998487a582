package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// seedUser creates a user against the seeded editor role and returns it.
func seedUser(t *testing.T, store *Store, name string) *simplecms.User {
	t.Helper()
	roles, err := store.RoleRepository().List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, roles)

	user, err := store.UserRepository().Create(context.Background(), simplecms.CreateUserRequest{
		Name:    name,
		IconURL: "https://example.com/" + name + ".png",
		RoleID:  roles[1].ID,
	})
	require.NoError(t, err)
	return user
}

func seedCategory(t *testing.T, store *Store, user *simplecms.User, name string) *simplecms.Category {
	t.Helper()
	category, err := store.CategoryRepository().Create(context.Background(), simplecms.CreateCategoryRequest{
		Name:          name,
		APIIdentifier: name,
		CreatedByID:   user.ID,
		UpdatedByID:   user.ID,
	})
	require.NoError(t, err)
	return category
}

func seedTag(t *testing.T, store *Store, name string) *simplecms.Tag {
	t.Helper()
	tag, err := store.TagRepository().Create(context.Background(), simplecms.CreateTagRequest{Name: name})
	require.NoError(t, err)
	return tag
}

func TestStoreSeedsDefaultRoles(t *testing.T) {
	store := NewStore()

	roles, err := store.RoleRepository().List(context.Background())

	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "administrator", roles[0].Name)
	assert.True(t, roles[0].IsSuperAdministrator)
	assert.Equal(t, "editor", roles[1].Name)
	assert.False(t, roles[1].IsSuperAdministrator)
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := seedUser(t, store, "alice")

	t.Run("create echoes the stored row", func(t *testing.T) {
		desc := "all the news"
		category, err := store.CategoryRepository().Create(ctx, simplecms.CreateCategoryRequest{
			Name:          "news",
			APIIdentifier: "news",
			Description:   &desc,
			CreatedByID:   user.ID,
			UpdatedByID:   user.ID,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, category.ID)
		assert.Equal(t, "news", category.Name)
		assert.Equal(t, user.ID, category.CreatedBy.ID)
		assert.Equal(t, "alice", category.CreatedBy.Name)
	})

	t.Run("create with unknown author fails", func(t *testing.T) {
		_, err := store.CategoryRepository().Create(ctx, simplecms.CreateCategoryRequest{
			Name:          "orphan",
			APIIdentifier: "orphan",
			CreatedByID:   "missing",
			UpdatedByID:   user.ID,
		})
		assert.ErrorIs(t, err, simplecms.ErrForeignKeyViolation)
	})

	t.Run("partial update preserves untouched fields", func(t *testing.T) {
		category := seedCategory(t, store, user, "blog")
		name := "weblog"

		updated, err := store.CategoryRepository().Update(ctx, simplecms.UpdateCategoryRequest{
			ID:          category.ID,
			Name:        &name,
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "weblog", updated.Name)
		assert.Equal(t, "blog", updated.APIIdentifier)
		assert.Equal(t, category.Description, updated.Description)
		assert.True(t, updated.UpdatedAt.After(category.UpdatedAt) || updated.UpdatedAt.Equal(category.UpdatedAt))
	})

	t.Run("update unknown id", func(t *testing.T) {
		name := "x"
		_, err := store.CategoryRepository().Update(ctx, simplecms.UpdateCategoryRequest{
			ID:          newID(),
			Name:        &name,
			UpdatedByID: user.ID,
		})
		assert.ErrorIs(t, err, simplecms.ErrCategoryNotFound)
	})

	t.Run("delete then list", func(t *testing.T) {
		category := seedCategory(t, store, user, "temp")
		require.NoError(t, store.CategoryRepository().Delete(ctx, category.ID))

		categories, err := store.CategoryRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		for _, c := range categories {
			assert.NotEqual(t, category.ID, c.ID)
		}

		assert.ErrorIs(t, store.CategoryRepository().Delete(ctx, category.ID), simplecms.ErrCategoryNotFound)
	})

	t.Run("delete while contents reference it", func(t *testing.T) {
		category := seedCategory(t, store, user, "held")
		_, err := store.ContentRepository().Create(ctx, simplecms.CreateContentRequest{
			Title:       "keeper",
			CategoryID:  category.ID,
			Status:      simplecms.ContentStatusDraft,
			CreatedByID: user.ID,
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)

		assert.ErrorIs(t, store.CategoryRepository().Delete(ctx, category.ID), simplecms.ErrForeignKeyViolation)

		contents, err := store.ContentRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		assert.NotEmpty(t, contents)
	})

	t.Run("malformed id", func(t *testing.T) {
		assert.ErrorIs(t, store.CategoryRepository().Delete(ctx, "nope"), simplecms.ErrInvalidID)
	})
}

func TestContentRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := seedUser(t, store, "alice")
	category := seedCategory(t, store, user, "news")
	tagGo := seedTag(t, store, "go")
	tagHTTP := seedTag(t, store, "http")

	createContent := func(t *testing.T, tagIDs []string) *simplecms.Content {
		t.Helper()
		content, err := store.ContentRepository().Create(ctx, simplecms.CreateContentRequest{
			Title:       "first post",
			CategoryID:  category.ID,
			Status:      simplecms.ContentStatusDraft,
			Fields:      []simplecms.Field{{Type: simplecms.FieldTypeShortText, Value: "hello"}},
			TagIDs:      tagIDs,
			CreatedByID: user.ID,
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		return content
	}

	t.Run("create resolves category and tags", func(t *testing.T) {
		content := createContent(t, []string{tagGo.ID, tagHTTP.ID})
		assert.Equal(t, category.ID, content.Category.ID)
		assert.Equal(t, "news", content.Category.Name)
		require.Len(t, content.Tags, 2)
		assert.Equal(t, "go", content.Tags[0].Name)
		assert.Equal(t, "http", content.Tags[1].Name)
		assert.Nil(t, content.PublishedAt)
	})

	t.Run("create with unknown tag leaves nothing behind", func(t *testing.T) {
		before, err := store.ContentRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)

		_, err = store.ContentRepository().Create(ctx, simplecms.CreateContentRequest{
			Title:       "broken",
			CategoryID:  category.ID,
			Status:      simplecms.ContentStatusDraft,
			TagIDs:      []string{newID()},
			CreatedByID: user.ID,
			UpdatedByID: user.ID,
		})
		assert.ErrorIs(t, err, simplecms.ErrForeignKeyViolation)

		after, err := store.ContentRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("update replaces the tag set", func(t *testing.T) {
		content := createContent(t, []string{tagGo.ID, tagHTTP.ID})

		updated, err := store.ContentRepository().Update(ctx, simplecms.UpdateContentRequest{
			ID:          content.ID,
			TagIDs:      []string{tagHTTP.ID},
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, tagHTTP.ID, updated.Tags[0].ID)
	})

	t.Run("update with nil tags keeps associations", func(t *testing.T) {
		content := createContent(t, []string{tagGo.ID})
		title := "renamed"

		updated, err := store.ContentRepository().Update(ctx, simplecms.UpdateContentRequest{
			ID:          content.ID,
			Title:       &title,
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, tagGo.ID, updated.Tags[0].ID)
	})

	t.Run("update with empty tag list clears associations", func(t *testing.T) {
		content := createContent(t, []string{tagGo.ID})

		updated, err := store.ContentRepository().Update(ctx, simplecms.UpdateContentRequest{
			ID:          content.ID,
			TagIDs:      []string{},
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Tags)
	})

	t.Run("failed update leaves the record untouched", func(t *testing.T) {
		content := createContent(t, []string{tagGo.ID})
		title := "should not stick"

		_, err := store.ContentRepository().Update(ctx, simplecms.UpdateContentRequest{
			ID:          content.ID,
			Title:       &title,
			TagIDs:      []string{newID()},
			UpdatedByID: user.ID,
		})
		assert.ErrorIs(t, err, simplecms.ErrForeignKeyViolation)

		all, err := store.ContentRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		for _, c := range all {
			if c.ID == content.ID {
				assert.Equal(t, "first post", c.Title)
				require.Len(t, c.Tags, 1)
			}
		}
	})

	t.Run("deleting a tag removes it from contents", func(t *testing.T) {
		temp := seedTag(t, store, "temporary")
		content := createContent(t, []string{temp.ID})

		require.NoError(t, store.TagRepository().Delete(ctx, temp.ID))

		all, err := store.ContentRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		for _, c := range all {
			if c.ID == content.ID {
				assert.Empty(t, c.Tags)
			}
		}
	})

	t.Run("delete then delete again", func(t *testing.T) {
		content := createContent(t, nil)
		require.NoError(t, store.ContentRepository().Delete(ctx, content.ID))
		assert.ErrorIs(t, store.ContentRepository().Delete(ctx, content.ID), simplecms.ErrContentNotFound)
	})
}

func TestContentModelRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := seedUser(t, store, "alice")

	model, err := store.ContentModelRepository().Create(ctx, simplecms.CreateContentModelRequest{
		Name:          "article",
		APIIdentifier: "article",
		Fields: []simplecms.FieldMeta{
			{Name: "Title", FieldID: "title", Type: simplecms.FieldTypeShortText, IsRequired: true},
		},
		CreatedByID: user.ID,
		UpdatedByID: user.ID,
	})
	require.NoError(t, err)
	require.Len(t, model.Fields, 1)

	t.Run("update replaces the field schema", func(t *testing.T) {
		fields := []simplecms.FieldMeta{
			{Name: "Title", FieldID: "title", Type: simplecms.FieldTypeShortText, IsRequired: true},
			{Name: "Body", FieldID: "body", Type: simplecms.FieldTypeRichText},
		}
		updated, err := store.ContentModelRepository().Update(ctx, simplecms.UpdateContentModelRequest{
			ID:          model.ID,
			Fields:      fields,
			UpdatedByID: user.ID,
		})
		require.NoError(t, err)
		require.Len(t, updated.Fields, 2)
		assert.Equal(t, "article", updated.Name)
	})

	t.Run("list returns copies", func(t *testing.T) {
		models, err := store.ContentModelRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		require.Len(t, models, 1)

		models[0].Fields[0].Name = "mutated"

		again, err := store.ContentModelRepository().List(ctx, simplecms.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, "Title", again[0].Fields[0].Name)
	})
}

func TestTagRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	t.Run("update with no fields", func(t *testing.T) {
		tag := seedTag(t, store, "go")
		_, err := store.TagRepository().Update(ctx, simplecms.UpdateTagRequest{ID: tag.ID})
		assert.ErrorIs(t, err, simplecms.ErrEmptyUpdate)
	})

	t.Run("update name", func(t *testing.T) {
		tag := seedTag(t, store, "js")
		name := "javascript"
		updated, err := store.TagRepository().Update(ctx, simplecms.UpdateTagRequest{ID: tag.ID, Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "javascript", updated.Name)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := seedUser(t, store, "alice")

	t.Run("find", func(t *testing.T) {
		found, err := store.UserRepository().Find(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Name)
	})

	t.Run("find unknown", func(t *testing.T) {
		_, err := store.UserRepository().Find(ctx, newID())
		assert.ErrorIs(t, err, simplecms.ErrUserNotFound)
	})

	t.Run("create with unknown role", func(t *testing.T) {
		_, err := store.UserRepository().Create(ctx, simplecms.CreateUserRequest{
			Name:    "bob",
			IconURL: "https://example.com/bob.png",
			RoleID:  newID(),
		})
		assert.ErrorIs(t, err, simplecms.ErrForeignKeyViolation)
	})

	t.Run("role change", func(t *testing.T) {
		roles, err := store.RoleRepository().List(ctx)
		require.NoError(t, err)
		adminID := roles[0].ID

		updated, err := store.UserRepository().Update(ctx, simplecms.UpdateUserRequest{
			ID:     user.ID,
			RoleID: &adminID,
		})
		require.NoError(t, err)
		assert.Equal(t, "administrator", updated.Role.Name)
		assert.True(t, updated.Role.IsSuperAdministrator)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := store.UserRepository().Update(ctx, simplecms.UpdateUserRequest{ID: user.ID})
		assert.ErrorIs(t, err, simplecms.ErrEmptyUpdate)
	})

	t.Run("delete while categories reference the user", func(t *testing.T) {
		author := seedUser(t, store, "carol")
		seedCategory(t, store, author, "held")

		assert.ErrorIs(t, store.UserRepository().Delete(ctx, author.ID), simplecms.ErrForeignKeyViolation)

		_, err := store.UserRepository().Find(ctx, author.ID)
		require.NoError(t, err)
	})

	t.Run("delete unreferenced user", func(t *testing.T) {
		bob := seedUser(t, store, "bob")
		require.NoError(t, store.UserRepository().Delete(ctx, bob.ID))
	})
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		seedTag(t, store, name)
	}

	t.Run("limit bounds the page", func(t *testing.T) {
		tags, err := store.TagRepository().List(ctx, simplecms.ListQuery{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("offset walks the collection", func(t *testing.T) {
		tags, err := store.TagRepository().List(ctx, simplecms.ListQuery{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Len(t, tags, 1)
	})

	t.Run("offset beyond the end", func(t *testing.T) {
		tags, err := store.TagRepository().List(ctx, simplecms.ListQuery{Offset: 50})
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}
