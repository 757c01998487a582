// Package memory provides in-memory implementations of the simplecms
// repositories. All entity state lives behind one mutex so the content
// repository can mirror the relational store's cross-table consistency.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// Store holds every entity map. Construct one Store and hand out the
// per-entity repository views.
type Store struct {
	mu            sync.RWMutex
	categories    map[string]*simplecms.Category
	contents      map[string]*contentRecord
	contentModels map[string]*simplecms.ContentModel
	tags          map[string]*simplecms.Tag
	users         map[string]*simplecms.User
	roles         map[string]*simplecms.Role
}

// contentRecord is the normalized stored form of a content item; category
// and tags are resolved on read, like the relational joins.
type contentRecord struct {
	id          string
	title       string
	categoryID  string
	status      simplecms.ContentStatus
	fields      []simplecms.Field
	tagIDs      map[string]struct{}
	createdByID string
	updatedByID string
	publishedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewStore creates an empty Store seeded with the two default roles.
func NewStore() *Store {
	s := &Store{
		categories:    make(map[string]*simplecms.Category),
		contents:      make(map[string]*contentRecord),
		contentModels: make(map[string]*simplecms.ContentModel),
		tags:          make(map[string]*simplecms.Tag),
		users:         make(map[string]*simplecms.User),
		roles:         make(map[string]*simplecms.Role),
	}
	for _, role := range []simplecms.Role{
		{ID: uuid.Must(uuid.NewV7()).String(), Name: "administrator", IsSuperAdministrator: true},
		{ID: uuid.Must(uuid.NewV7()).String(), Name: "editor"},
	} {
		r := role
		s.roles[r.ID] = &r
	}
	return s
}

// CategoryRepository returns the category view of the store.
func (s *Store) CategoryRepository() simplecms.CategoryRepository { return &categoryRepository{s} }

// ContentRepository returns the content view of the store.
func (s *Store) ContentRepository() simplecms.ContentRepository { return &contentRepository{s} }

// ContentModelRepository returns the content model view of the store.
func (s *Store) ContentModelRepository() simplecms.ContentModelRepository {
	return &contentModelRepository{s}
}

// TagRepository returns the tag view of the store.
func (s *Store) TagRepository() simplecms.TagRepository { return &tagRepository{s} }

// UserRepository returns the user view of the store.
func (s *Store) UserRepository() simplecms.UserRepository { return &userRepository{s} }

// RoleRepository returns the role view of the store.
func (s *Store) RoleRepository() simplecms.RoleRepository { return &roleRepository{s} }

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", simplecms.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func (s *Store) authorLocked(userID string) (simplecms.Author, error) {
	user, ok := s.users[userID]
	if !ok {
		return simplecms.Author{}, fmt.Errorf("%w: users %s", simplecms.ErrForeignKeyViolation, userID)
	}
	return simplecms.Author{ID: user.ID, Name: user.Name}, nil
}

// userReferencedLocked reports whether any category, content model or
// content row still points at the user. Deleting a referenced user is
// rejected, like the relational FK constraints.
func (s *Store) userReferencedLocked(userID string) bool {
	for _, c := range s.categories {
		if c.CreatedBy.ID == userID || c.UpdatedBy.ID == userID {
			return true
		}
	}
	for _, m := range s.contentModels {
		if m.CreatedBy.ID == userID || m.UpdatedBy.ID == userID {
			return true
		}
	}
	for _, rec := range s.contents {
		if rec.createdByID == userID || rec.updatedByID == userID {
			return true
		}
	}
	return false
}

// --- categories ---

type categoryRepository struct{ store *Store }

func (r *categoryRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		copied := *c
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, query.Normalize()), nil
}

func (r *categoryRepository) Create(ctx context.Context, req simplecms.CreateCategoryRequest) (*simplecms.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdBy, err := r.store.authorLocked(req.CreatedByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := r.store.authorLocked(req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	category, err := simplecms.NewCategory(newID(), req.Name, req.APIIdentifier, req.Description, createdBy, updatedBy, now, now)
	if err != nil {
		return nil, err
	}
	r.store.categories[category.ID] = category
	copied := *category
	return &copied, nil
}

func (r *categoryRepository) Update(ctx context.Context, req simplecms.UpdateCategoryRequest) (*simplecms.Category, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category, ok := r.store.categories[id]
	if !ok {
		return nil, simplecms.ErrCategoryNotFound
	}
	updatedBy, err := r.store.authorLocked(req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.APIIdentifier != nil {
		category.APIIdentifier = *req.APIIdentifier
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	category.UpdatedBy = updatedBy
	category.UpdatedAt = time.Now().UTC()
	copied := *category
	return &copied, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[parsed]; !ok {
		return simplecms.ErrCategoryNotFound
	}
	for _, rec := range r.store.contents {
		if rec.categoryID == parsed {
			return fmt.Errorf("%w: category %s is still referenced by contents", simplecms.ErrForeignKeyViolation, parsed)
		}
	}
	delete(r.store.categories, parsed)
	return nil
}

// --- contents ---

type contentRepository struct{ store *Store }

func (r *contentRepository) assembleLocked(rec *contentRecord) (*simplecms.Content, error) {
	cat, ok := r.store.categories[rec.categoryID]
	if !ok {
		return nil, fmt.Errorf("%w: category %s", simplecms.ErrForeignKeyViolation, rec.categoryID)
	}
	createdBy, err := r.store.authorLocked(rec.createdByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := r.store.authorLocked(rec.updatedByID)
	if err != nil {
		return nil, err
	}

	tags := make([]simplecms.TagRef, 0, len(rec.tagIDs))
	for tagID := range rec.tagIDs {
		tag, ok := r.store.tags[tagID]
		if !ok {
			continue
		}
		tags = append(tags, simplecms.TagRef{ID: tag.ID, Name: tag.Name})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	fields := make([]simplecms.Field, len(rec.fields))
	copy(fields, rec.fields)

	return &simplecms.Content{
		ID:    rec.id,
		Title: rec.title,
		Category: simplecms.CategoryRef{
			ID:            cat.ID,
			Name:          cat.Name,
			APIIdentifier: cat.APIIdentifier,
			Description:   cat.Description,
		},
		Status:      rec.status,
		Fields:      fields,
		Tags:        tags,
		CreatedBy:   createdBy,
		UpdatedBy:   updatedBy,
		PublishedAt: rec.publishedAt,
		CreatedAt:   rec.createdAt,
		UpdatedAt:   rec.updatedAt,
	}, nil
}

func (r *contentRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Content, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.Content, 0, len(r.store.contents))
	for _, rec := range r.store.contents {
		content, err := r.assembleLocked(rec)
		if err != nil {
			return nil, err
		}
		all = append(all, content)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, query.Normalize()), nil
}

func (r *contentRepository) checkTagsLocked(tagIDs []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(tagIDs))
	for _, raw := range tagIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := r.store.tags[id]; !ok {
			return nil, fmt.Errorf("%w: tags %s", simplecms.ErrForeignKeyViolation, id)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *contentRepository) Create(ctx context.Context, req simplecms.CreateContentRequest) (*simplecms.Content, error) {
	categoryID, err := parseID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[categoryID]; !ok {
		return nil, fmt.Errorf("%w: category %s", simplecms.ErrForeignKeyViolation, categoryID)
	}
	if _, err := r.store.authorLocked(req.CreatedByID); err != nil {
		return nil, err
	}
	if _, err := r.store.authorLocked(req.UpdatedByID); err != nil {
		return nil, err
	}
	tagSet, err := r.checkTagsLocked(req.TagIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := make([]simplecms.Field, len(req.Fields))
	copy(fields, req.Fields)
	rec := &contentRecord{
		id:          newID(),
		title:       req.Title,
		categoryID:  categoryID,
		status:      req.Status,
		fields:      fields,
		tagIDs:      tagSet,
		createdByID: req.CreatedByID,
		updatedByID: req.UpdatedByID,
		createdAt:   now,
		updatedAt:   now,
	}
	r.store.contents[rec.id] = rec
	return r.assembleLocked(rec)
}

func (r *contentRepository) Update(ctx context.Context, req simplecms.UpdateContentRequest) (*simplecms.Content, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.contents[id]
	if !ok {
		return nil, simplecms.ErrContentNotFound
	}
	if _, err := r.store.authorLocked(req.UpdatedByID); err != nil {
		return nil, err
	}

	// Validate every referenced row before mutating anything, so a failed
	// update leaves the record untouched, matching the transactional store.
	var newCategoryID string
	if req.CategoryID != nil {
		newCategoryID, err = parseID(*req.CategoryID)
		if err != nil {
			return nil, err
		}
		if _, ok := r.store.categories[newCategoryID]; !ok {
			return nil, fmt.Errorf("%w: category %s", simplecms.ErrForeignKeyViolation, newCategoryID)
		}
	}
	var newTagSet map[string]struct{}
	if req.TagIDs != nil {
		newTagSet, err = r.checkTagsLocked(req.TagIDs)
		if err != nil {
			return nil, err
		}
	}

	if req.Title != nil {
		rec.title = *req.Title
	}
	if req.CategoryID != nil {
		rec.categoryID = newCategoryID
	}
	if req.Fields != nil {
		fields := make([]simplecms.Field, len(req.Fields))
		copy(fields, req.Fields)
		rec.fields = fields
	}
	if req.Status != nil {
		rec.status = *req.Status
	}
	if req.PublishedAt != nil {
		rec.publishedAt = req.PublishedAt
	}
	if req.TagIDs != nil {
		rec.tagIDs = newTagSet
	}
	rec.updatedByID = req.UpdatedByID
	rec.updatedAt = time.Now().UTC()
	return r.assembleLocked(rec)
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.contents[parsed]; !ok {
		return simplecms.ErrContentNotFound
	}
	delete(r.store.contents, parsed)
	return nil
}

// --- content models ---

type contentModelRepository struct{ store *Store }

func (r *contentModelRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.ContentModel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.ContentModel, 0, len(r.store.contentModels))
	for _, m := range r.store.contentModels {
		copied := *m
		copied.Fields = append([]simplecms.FieldMeta(nil), m.Fields...)
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, query.Normalize()), nil
}

func (r *contentModelRepository) Create(ctx context.Context, req simplecms.CreateContentModelRequest) (*simplecms.ContentModel, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdBy, err := r.store.authorLocked(req.CreatedByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := r.store.authorLocked(req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	fields := append([]simplecms.FieldMeta(nil), req.Fields...)
	model, err := simplecms.NewContentModel(newID(), req.Name, req.APIIdentifier, req.Description, fields, createdBy, updatedBy, now, now)
	if err != nil {
		return nil, err
	}
	r.store.contentModels[model.ID] = model
	copied := *model
	return &copied, nil
}

func (r *contentModelRepository) Update(ctx context.Context, req simplecms.UpdateContentModelRequest) (*simplecms.ContentModel, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	model, ok := r.store.contentModels[id]
	if !ok {
		return nil, simplecms.ErrContentModelNotFound
	}
	updatedBy, err := r.store.authorLocked(req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		model.Name = *req.Name
	}
	if req.APIIdentifier != nil {
		model.APIIdentifier = *req.APIIdentifier
	}
	if req.Description != nil {
		model.Description = req.Description
	}
	if req.Fields != nil {
		model.Fields = append([]simplecms.FieldMeta(nil), req.Fields...)
	}
	model.UpdatedBy = updatedBy
	model.UpdatedAt = time.Now().UTC()
	copied := *model
	return &copied, nil
}

func (r *contentModelRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.contentModels[parsed]; !ok {
		return simplecms.ErrContentModelNotFound
	}
	delete(r.store.contentModels, parsed)
	return nil
}

// --- tags ---

type tagRepository struct{ store *Store }

func (r *tagRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.Tag, 0, len(r.store.tags))
	for _, t := range r.store.tags {
		copied := *t
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, query.Normalize()), nil
}

func (r *tagRepository) Create(ctx context.Context, req simplecms.CreateTagRequest) (*simplecms.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	tag, err := simplecms.NewTag(newID(), req.Name, req.Description, now, now)
	if err != nil {
		return nil, err
	}
	r.store.tags[tag.ID] = tag
	copied := *tag
	return &copied, nil
}

func (r *tagRepository) Update(ctx context.Context, req simplecms.UpdateTagRequest) (*simplecms.Tag, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name == nil && req.Description == nil {
		return nil, simplecms.ErrEmptyUpdate
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, ok := r.store.tags[id]
	if !ok {
		return nil, simplecms.ErrTagNotFound
	}
	if req.Name != nil {
		tag.Name = *req.Name
	}
	if req.Description != nil {
		tag.Description = req.Description
	}
	tag.UpdatedAt = time.Now().UTC()
	copied := *tag
	return &copied, nil
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tags[parsed]; !ok {
		return simplecms.ErrTagNotFound
	}
	delete(r.store.tags, parsed)
	for _, rec := range r.store.contents {
		delete(rec.tagIDs, parsed)
	}
	return nil
}

// --- users and roles ---

type userRepository struct{ store *Store }

func (r *userRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		copied := *u
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, query.Normalize()), nil
}

func (r *userRepository) Find(ctx context.Context, id string) (*simplecms.User, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[parsed]
	if !ok {
		return nil, simplecms.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *userRepository) Create(ctx context.Context, req simplecms.CreateUserRequest) (*simplecms.User, error) {
	roleID, err := parseID(req.RoleID)
	if err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	role, ok := r.store.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("%w: role %s", simplecms.ErrForeignKeyViolation, roleID)
	}
	now := time.Now().UTC()
	user, err := simplecms.NewUser(newID(), req.Name, req.IconURL, *role, now, now)
	if err != nil {
		return nil, err
	}
	r.store.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (r *userRepository) Update(ctx context.Context, req simplecms.UpdateUserRequest) (*simplecms.User, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name == nil && req.IconURL == nil && req.RoleID == nil {
		return nil, simplecms.ErrEmptyUpdate
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, simplecms.ErrUserNotFound
	}
	if req.RoleID != nil {
		roleID, err := parseID(*req.RoleID)
		if err != nil {
			return nil, err
		}
		role, ok := r.store.roles[roleID]
		if !ok {
			return nil, fmt.Errorf("%w: role %s", simplecms.ErrForeignKeyViolation, roleID)
		}
		user.Role = *role
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.IconURL != nil {
		user.IconURL = *req.IconURL
	}
	user.UpdatedAt = time.Now().UTC()
	copied := *user
	return &copied, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[parsed]; !ok {
		return simplecms.ErrUserNotFound
	}
	if r.store.userReferencedLocked(parsed) {
		return fmt.Errorf("%w: users %s is still referenced", simplecms.ErrForeignKeyViolation, parsed)
	}
	delete(r.store.users, parsed)
	return nil
}

type roleRepository struct{ store *Store }

func (r *roleRepository) List(ctx context.Context) ([]*simplecms.Role, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*simplecms.Role, 0, len(r.store.roles))
	for _, role := range r.store.roles {
		copied := *role
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func paginate[T any](items []*T, query simplecms.ListQuery) []*T {
	offset := int(query.Offset)
	if offset >= len(items) {
		return []*T{}
	}
	end := offset + int(query.Limit)
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
