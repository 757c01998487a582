package testutil

import (
	"context"
	"testing"

	"github.com/hokuto/simple-cms/pkg/simplecms"
	"github.com/hokuto/simple-cms/pkg/simplecms/repo/postgres"
)

// Fixtures creates prerequisite rows through the real repositories.
type Fixtures struct {
	Categories simplecms.CategoryRepository
	Contents   simplecms.ContentRepository
	Models     simplecms.ContentModelRepository
	Tags       simplecms.TagRepository
	Users      simplecms.UserRepository
	Roles      simplecms.RoleRepository
}

// NewFixtures wires the repositories over the test pool.
func NewFixtures(tdb *TestDB) *Fixtures {
	return &Fixtures{
		Categories: postgres.NewCategoryRepository(tdb.Pool),
		Contents:   postgres.NewContentRepository(tdb.Pool),
		Models:     postgres.NewContentModelRepository(tdb.Pool),
		Tags:       postgres.NewTagRepository(tdb.Pool),
		Users:      postgres.NewUserRepository(tdb.Pool),
		Roles:      postgres.NewRoleRepository(tdb.Pool),
	}
}

// EditorRole returns the seeded editor role.
func (f *Fixtures) EditorRole(t *testing.T) *simplecms.Role {
	t.Helper()
	roles, err := f.Roles.List(context.Background())
	if err != nil {
		t.Fatalf("failed to list roles: %v", err)
	}
	for _, role := range roles {
		if role.Name == "editor" {
			return role
		}
	}
	t.Fatal("editor role not seeded")
	return nil
}

// CreateUser creates a user bound to the seeded editor role.
func (f *Fixtures) CreateUser(t *testing.T, name string) *simplecms.User {
	t.Helper()
	user, err := f.Users.Create(context.Background(), simplecms.CreateUserRequest{
		Name:    name,
		IconURL: "https://example.com/" + name + ".png",
		RoleID:  f.EditorRole(t).ID,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// CreateCategory creates a category owned by user.
func (f *Fixtures) CreateCategory(t *testing.T, user *simplecms.User, name string) *simplecms.Category {
	t.Helper()
	category, err := f.Categories.Create(context.Background(), simplecms.CreateCategoryRequest{
		Name:          name,
		APIIdentifier: name,
		CreatedByID:   user.ID,
		UpdatedByID:   user.ID,
	})
	if err != nil {
		t.Fatalf("failed to create category %s: %v", name, err)
	}
	return category
}

// CreateTag creates a tag.
func (f *Fixtures) CreateTag(t *testing.T, name string) *simplecms.Tag {
	t.Helper()
	tag, err := f.Tags.Create(context.Background(), simplecms.CreateTagRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}
