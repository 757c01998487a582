package simplecms

import (
	"context"
	"io"
)

// service is the default Service implementation. It owns no state beyond
// the injected collaborators; all entity state lives in the backing store.
type service struct {
	categories    CategoryRepository
	contents      ContentRepository
	contentModels ContentModelRepository
	tags          TagRepository
	users         UserRepository
	roles         RoleRepository
	media         MediaStore
}

func (s *service) ListCategories(ctx context.Context, query ListQuery) ([]*Category, error) {
	return s.categories.List(ctx, query.Normalize())
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, req)
}

func (s *service) UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.categories.Update(ctx, req)
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

func (s *service) ListContents(ctx context.Context, query ListQuery) ([]*Content, error) {
	return s.contents.List(ctx, query.Normalize())
}

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.contents.Create(ctx, req)
}

func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.contents.Update(ctx, req)
}

func (s *service) DeleteContent(ctx context.Context, id string) error {
	return s.contents.Delete(ctx, id)
}

func (s *service) ListContentModels(ctx context.Context, query ListQuery) ([]*ContentModel, error) {
	return s.contentModels.List(ctx, query.Normalize())
}

func (s *service) CreateContentModel(ctx context.Context, req CreateContentModelRequest) (*ContentModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.contentModels.Create(ctx, req)
}

func (s *service) UpdateContentModel(ctx context.Context, req UpdateContentModelRequest) (*ContentModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.contentModels.Update(ctx, req)
}

func (s *service) DeleteContentModel(ctx context.Context, id string) error {
	return s.contentModels.Delete(ctx, id)
}

func (s *service) ListTags(ctx context.Context, query ListQuery) ([]*Tag, error) {
	return s.tags.List(ctx, query.Normalize())
}

func (s *service) CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tags.Create(ctx, req)
}

func (s *service) UpdateTag(ctx context.Context, req UpdateTagRequest) (*Tag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tags.Update(ctx, req)
}

func (s *service) DeleteTag(ctx context.Context, id string) error {
	return s.tags.Delete(ctx, id)
}

func (s *service) ListUsers(ctx context.Context, query ListQuery) ([]*User, error) {
	return s.users.List(ctx, query.Normalize())
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.Find(ctx, id)
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.users.Create(ctx, req)
}

func (s *service) UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, req)
}

func (s *service) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roles.List(ctx)
}

func (s *service) CreateMediaBucket(ctx context.Context, name string) error {
	if s.media == nil {
		return ErrStorageNotConfigured
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return s.media.CreateBucket(ctx, name)
}

func (s *service) DeleteMediaBucket(ctx context.Context, name string) error {
	if s.media == nil {
		return ErrStorageNotConfigured
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return s.media.DeleteBucket(ctx, name)
}

func (s *service) UploadMedia(ctx context.Context, key string, body io.Reader, contentType string) error {
	if s.media == nil {
		return ErrStorageNotConfigured
	}
	if key == "" {
		return &ValidationError{Field: "key", Reason: "must not be empty"}
	}
	return s.media.Upload(ctx, key, body, contentType)
}

func (s *service) DownloadMedia(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.media == nil {
		return nil, ErrStorageNotConfigured
	}
	return s.media.Download(ctx, key)
}

func (s *service) MediaDownloadURL(ctx context.Context, key string) (string, error) {
	if s.media == nil {
		return "", ErrStorageNotConfigured
	}
	return s.media.DownloadURL(ctx, key)
}

func (s *service) DeleteMedia(ctx context.Context, key string) error {
	if s.media == nil {
		return ErrStorageNotConfigured
	}
	return s.media.DeleteObject(ctx, key)
}
