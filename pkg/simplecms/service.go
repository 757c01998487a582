package simplecms

import (
	"context"
	"errors"
	"io"
)

// Service is the application-facing API over the repositories and the media
// store. Requests are validated before any I/O; store errors pass through
// untouched for the interface layer to map.
type Service interface {
	// Category operations
	ListCategories(ctx context.Context, query ListQuery) ([]*Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Content operations
	ListContents(ctx context.Context, query ListQuery) ([]*Content, error)
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)
	DeleteContent(ctx context.Context, id string) error

	// Content model operations
	ListContentModels(ctx context.Context, query ListQuery) ([]*ContentModel, error)
	CreateContentModel(ctx context.Context, req CreateContentModelRequest) (*ContentModel, error)
	UpdateContentModel(ctx context.Context, req UpdateContentModelRequest) (*ContentModel, error)
	DeleteContentModel(ctx context.Context, id string) error

	// Tag operations
	ListTags(ctx context.Context, query ListQuery) ([]*Tag, error)
	CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error)
	UpdateTag(ctx context.Context, req UpdateTagRequest) (*Tag, error)
	DeleteTag(ctx context.Context, id string) error

	// User and role operations
	ListUsers(ctx context.Context, query ListQuery) ([]*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	ListRoles(ctx context.Context) ([]*Role, error)

	// Media operations
	CreateMediaBucket(ctx context.Context, name string) error
	DeleteMediaBucket(ctx context.Context, name string) error
	UploadMedia(ctx context.Context, key string, body io.Reader, contentType string) error
	DownloadMedia(ctx context.Context, key string) (io.ReadCloser, error)
	MediaDownloadURL(ctx context.Context, key string) (string, error)
	DeleteMedia(ctx context.Context, key string) error
}

// Option configures the service during construction.
type Option func(*service)

// WithCategoryRepository sets the category repository.
func WithCategoryRepository(repo CategoryRepository) Option {
	return func(s *service) { s.categories = repo }
}

// WithContentRepository sets the content repository.
func WithContentRepository(repo ContentRepository) Option {
	return func(s *service) { s.contents = repo }
}

// WithContentModelRepository sets the content model repository.
func WithContentModelRepository(repo ContentModelRepository) Option {
	return func(s *service) { s.contentModels = repo }
}

// WithTagRepository sets the tag repository.
func WithTagRepository(repo TagRepository) Option {
	return func(s *service) { s.tags = repo }
}

// WithUserRepository sets the user repository.
func WithUserRepository(repo UserRepository) Option {
	return func(s *service) { s.users = repo }
}

// WithRoleRepository sets the role repository.
func WithRoleRepository(repo RoleRepository) Option {
	return func(s *service) { s.roles = repo }
}

// WithMediaStore sets the media store. Media operations fail with
// ErrStorageNotConfigured when no store is set.
func WithMediaStore(store MediaStore) Option {
	return func(s *service) { s.media = store }
}

// New creates a Service with the given options. All entity repositories are
// required; the media store is optional.
func New(opts ...Option) (Service, error) {
	s := &service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.categories == nil {
		return nil, errors.New("category repository is required")
	}
	if s.contents == nil {
		return nil, errors.New("content repository is required")
	}
	if s.contentModels == nil {
		return nil, errors.New("content model repository is required")
	}
	if s.tags == nil {
		return nil, errors.New("tag repository is required")
	}
	if s.users == nil {
		return nil, errors.New("user repository is required")
	}
	if s.roles == nil {
		return nil, errors.New("role repository is required")
	}
	return s, nil
}
