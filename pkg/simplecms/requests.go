package simplecms

import "time"

// Pagination defaults applied by ListQuery.Normalize.
const (
	DefaultListLimit  = 100
	DefaultListOffset = 0
)

// ListQuery carries limit/offset pagination for list operations.
type ListQuery struct {
	Limit  int32
	Offset int32
}

// Normalize returns a copy with defaults applied: limit 100 when unset or
// negative, offset 0 when negative.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = DefaultListOffset
	}
	return q
}

// CreateCategoryRequest contains parameters for creating a category.
type CreateCategoryRequest struct {
	Name          string
	APIIdentifier string
	Description   *string
	CreatedByID   string
	UpdatedByID   string
}

// Validate checks the domain bounds before any I/O is attempted.
func (r CreateCategoryRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateAPIIdentifier(r.APIIdentifier); err != nil {
		return err
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if r.CreatedByID == "" {
		return &ValidationError{Field: "created_by_id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	return nil
}

// UpdateCategoryRequest contains a partial update for a category. Nil fields
// are left unchanged; UpdatedByID is always required.
type UpdateCategoryRequest struct {
	ID            string
	Name          *string
	APIIdentifier *string
	Description   *string
	UpdatedByID   string
}

func (r UpdateCategoryRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if r.APIIdentifier != nil {
		if err := validateAPIIdentifier(*r.APIIdentifier); err != nil {
			return err
		}
	}
	return validateDescription(r.Description)
}

// CreateContentRequest contains parameters for creating a content item.
// TagIDs are stored with set semantics; duplicates collapse.
type CreateContentRequest struct {
	Title       string
	CategoryID  string
	Fields      []Field
	TagIDs      []string
	Status      ContentStatus
	CreatedByID string
	UpdatedByID string
}

func (r CreateContentRequest) Validate() error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	if r.CategoryID == "" {
		return &ValidationError{Field: "category_id", Reason: "must not be empty"}
	}
	if _, err := ParseContentStatus(string(r.Status)); err != nil {
		return err
	}
	if r.CreatedByID == "" {
		return &ValidationError{Field: "created_by_id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	return nil
}

// UpdateContentRequest contains a partial update for a content item. Nil
// means unchanged. A nil TagIDs leaves associations alone; an empty non-nil
// slice clears them. PublishedAt is set verbatim when present.
type UpdateContentRequest struct {
	ID          string
	Title       *string
	CategoryID  *string
	Fields      []Field
	TagIDs      []string
	Status      *ContentStatus
	PublishedAt *time.Time
	UpdatedByID string
}

func (r UpdateContentRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	if r.Title != nil {
		if err := validateTitle(*r.Title); err != nil {
			return err
		}
	}
	if r.CategoryID != nil && *r.CategoryID == "" {
		return &ValidationError{Field: "category_id", Reason: "must not be empty"}
	}
	if r.Status != nil {
		if _, err := ParseContentStatus(string(*r.Status)); err != nil {
			return err
		}
	}
	return nil
}

// CreateContentModelRequest contains parameters for creating a content model.
type CreateContentModelRequest struct {
	Name          string
	APIIdentifier string
	Description   *string
	Fields        []FieldMeta
	CreatedByID   string
	UpdatedByID   string
}

func (r CreateContentModelRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateAPIIdentifier(r.APIIdentifier); err != nil {
		return err
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if _, err := ParseFieldType(string(f.Type)); err != nil {
			return err
		}
	}
	if r.CreatedByID == "" {
		return &ValidationError{Field: "created_by_id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	return nil
}

// UpdateContentModelRequest contains a partial update for a content model.
type UpdateContentModelRequest struct {
	ID            string
	Name          *string
	APIIdentifier *string
	Description   *string
	Fields        []FieldMeta
	UpdatedByID   string
}

func (r UpdateContentModelRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.UpdatedByID == "" {
		return &ValidationError{Field: "updated_by_id", Reason: "must not be empty"}
	}
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if r.APIIdentifier != nil {
		if err := validateAPIIdentifier(*r.APIIdentifier); err != nil {
			return err
		}
	}
	for _, f := range r.Fields {
		if _, err := ParseFieldType(string(f.Type)); err != nil {
			return err
		}
	}
	return validateDescription(r.Description)
}

// CreateTagRequest contains parameters for creating a tag.
type CreateTagRequest struct {
	Name        string
	Description *string
}

func (r CreateTagRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	return validateDescription(r.Description)
}

// UpdateTagRequest contains a partial update for a tag. Tags carry no audit
// column, so at least one field must be present.
type UpdateTagRequest struct {
	ID          string
	Name        *string
	Description *string
}

func (r UpdateTagRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.Name == nil && r.Description == nil {
		return &ValidationError{Field: "update", Reason: "no fields to update"}
	}
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	return validateDescription(r.Description)
}

// CreateUserRequest contains parameters for creating a user.
type CreateUserRequest struct {
	Name    string
	IconURL string
	RoleID  string
}

func (r CreateUserRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateIconURL(r.IconURL); err != nil {
		return err
	}
	if r.RoleID == "" {
		return &ValidationError{Field: "role_id", Reason: "must not be empty"}
	}
	return nil
}

// UpdateUserRequest contains a partial update for a user. At least one field
// must be present.
type UpdateUserRequest struct {
	ID      string
	Name    *string
	IconURL *string
	RoleID  *string
}

func (r UpdateUserRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.Name == nil && r.IconURL == nil && r.RoleID == nil {
		return &ValidationError{Field: "update", Reason: "no fields to update"}
	}
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if r.IconURL != nil {
		if err := validateIconURL(*r.IconURL); err != nil {
			return err
		}
	}
	if r.RoleID != nil && *r.RoleID == "" {
		return &ValidationError{Field: "role_id", Reason: "must not be empty"}
	}
	return nil
}
