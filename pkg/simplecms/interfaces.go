package simplecms

import (
	"context"
	"io"
)

// CategoryRepository defines storage operations for categories.
type CategoryRepository interface {
	List(ctx context.Context, query ListQuery) ([]*Category, error)
	Create(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	Update(ctx context.Context, req UpdateCategoryRequest) (*Category, error)
	Delete(ctx context.Context, id string) error
}

// ContentRepository defines storage operations for content items. Create and
// Update keep the content row and its tag associations consistent within one
// transaction.
type ContentRepository interface {
	List(ctx context.Context, query ListQuery) ([]*Content, error)
	Create(ctx context.Context, req CreateContentRequest) (*Content, error)
	Update(ctx context.Context, req UpdateContentRequest) (*Content, error)
	Delete(ctx context.Context, id string) error
}

// ContentModelRepository defines storage operations for content models.
type ContentModelRepository interface {
	List(ctx context.Context, query ListQuery) ([]*ContentModel, error)
	Create(ctx context.Context, req CreateContentModelRequest) (*ContentModel, error)
	Update(ctx context.Context, req UpdateContentModelRequest) (*ContentModel, error)
	Delete(ctx context.Context, id string) error
}

// TagRepository defines storage operations for tags.
type TagRepository interface {
	List(ctx context.Context, query ListQuery) ([]*Tag, error)
	Create(ctx context.Context, req CreateTagRequest) (*Tag, error)
	Update(ctx context.Context, req UpdateTagRequest) (*Tag, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines storage operations for users.
type UserRepository interface {
	List(ctx context.Context, query ListQuery) ([]*User, error)
	Find(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Update(ctx context.Context, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines read operations for roles.
type RoleRepository interface {
	List(ctx context.Context) ([]*Role, error)
}

// MediaStore abstracts the object-storage backend used for media.
type MediaStore interface {
	CreateBucket(ctx context.Context, name string) error
	DeleteBucket(ctx context.Context, name string) error
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	DownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
