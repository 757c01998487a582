package simplecms

import (
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"
)

// ContentStatus represents the publication state of a content item.
type ContentStatus string

const (
	ContentStatusDraft       ContentStatus = "draft"
	ContentStatusPublished   ContentStatus = "published"
	ContentStatusReserved    ContentStatus = "reserved"
	ContentStatusUnpublished ContentStatus = "unpublished"
)

// ParseContentStatus converts a string into a ContentStatus. Unknown values
// are rejected rather than mapped to a catch-all.
func ParseContentStatus(s string) (ContentStatus, error) {
	switch ContentStatus(s) {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusReserved, ContentStatusUnpublished:
		return ContentStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown content status %q", s)}
}

// FieldType enumerates the value types a content field can hold.
type FieldType string

const (
	FieldTypeShortText FieldType = "short_text"
	FieldTypeLongText  FieldType = "long_text"
	FieldTypeRichText  FieldType = "rich_text"
	FieldTypeNumber    FieldType = "number"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeDateTime  FieldType = "date_time"
	FieldTypeMedia     FieldType = "media"
)

// ParseFieldType converts a string into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeRichText,
		FieldTypeNumber, FieldTypeBoolean, FieldTypeDateTime, FieldTypeMedia:
		return FieldType(s), nil
	}
	return "", &ValidationError{Field: "field_type", Reason: fmt.Sprintf("unknown field type %q", s)}
}

// Field is a single typed value on a content item. Content fields are stored
// as an ordered JSON array and must round-trip without reordering.
type Field struct {
	Type  FieldType `json:"field_type"`
	Value string    `json:"value"`
}

// FieldMeta describes one field of a content model schema.
type FieldMeta struct {
	Name       string    `json:"name"`
	FieldID    string    `json:"field_id"`
	Type       FieldType `json:"field_type"`
	IsRequired bool      `json:"is_required"`
}

// Author is a lightweight reference to the user who created or last
// modified an entity, resolved by join at read time.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagRef is a lightweight reference to a tag attached to a content item.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is the denormalized category projection carried by a content
// item.
type CategoryRef struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	APIIdentifier string  `json:"api_identifier"`
	Description   *string `json:"description,omitempty"`
}

// Category groups content items.
type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	APIIdentifier string    `json:"api_identifier"`
	Description   *string   `json:"description,omitempty"`
	CreatedBy     Author    `json:"created_by"`
	UpdatedBy     Author    `json:"updated_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Content is a single content item with its denormalized category, ordered
// field values and associated tags.
type Content struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Category    CategoryRef   `json:"category"`
	Status      ContentStatus `json:"status"`
	Fields      []Field       `json:"fields"`
	Tags        []TagRef      `json:"tags"`
	CreatedBy   Author        `json:"created_by"`
	UpdatedBy   Author        `json:"updated_by"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ContentModel defines the schema content items of a kind conform to. The
// schema is advisory at the data layer.
type ContentModel struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	APIIdentifier string      `json:"api_identifier"`
	Description   *string     `json:"description,omitempty"`
	Fields        []FieldMeta `json:"fields"`
	CreatedBy     Author      `json:"created_by"`
	UpdatedBy     Author      `json:"updated_by"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Tag labels content items across categories.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role is a named permission group. Role is a plain runtime value on User;
// permission checks are runtime lookups.
type Role struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Description          *string `json:"description,omitempty"`
	IsSuperAdministrator bool    `json:"is_super_administrator"`
}

// User is an account that authors content.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconURL   string    `json:"icon_url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validation bounds shared by constructors and update commands. Lengths are
// counted in runes, not bytes.
const (
	maxNameLength          = 50
	maxAPIIdentifierLength = 64
	maxDescriptionLength   = 500
	maxTitleLength         = 50
)

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if n > maxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	return nil
}

func validateAPIIdentifier(id string) error {
	n := utf8.RuneCountInString(id)
	if n == 0 {
		return &ValidationError{Field: "api_identifier", Reason: "must not be empty"}
	}
	if n > maxAPIIdentifierLength {
		return &ValidationError{Field: "api_identifier", Reason: fmt.Sprintf("must be at most %d characters", maxAPIIdentifierLength)}
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc == nil {
		return nil
	}
	if utf8.RuneCountInString(*desc) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if n > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	return nil
}

func validateIconURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "icon_url", Reason: "must be a valid absolute URL"}
	}
	return nil
}

// NewCategory builds a Category, enforcing the name, api identifier and
// description bounds.
func NewCategory(id, name, apiIdentifier string, description *string, createdBy, updatedBy Author, createdAt, updatedAt time.Time) (*Category, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateAPIIdentifier(apiIdentifier); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	return &Category{
		ID:            id,
		Name:          name,
		APIIdentifier: apiIdentifier,
		Description:   description,
		CreatedBy:     createdBy,
		UpdatedBy:     updatedBy,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// NewCategoryRef builds the denormalized category projection used on Content.
func NewCategoryRef(id, name, apiIdentifier string, description *string) (CategoryRef, error) {
	if err := validateName(name); err != nil {
		return CategoryRef{}, err
	}
	if err := validateAPIIdentifier(apiIdentifier); err != nil {
		return CategoryRef{}, err
	}
	if err := validateDescription(description); err != nil {
		return CategoryRef{}, err
	}
	return CategoryRef{ID: id, Name: name, APIIdentifier: apiIdentifier, Description: description}, nil
}

// NewTag builds a Tag, enforcing the name and description bounds.
func NewTag(id, name string, description *string, createdAt, updatedAt time.Time) (*Tag, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	return &Tag{ID: id, Name: name, Description: description, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

// NewUser builds a User, enforcing the name bound and icon URL shape.
func NewUser(id, name, iconURL string, role Role, createdAt, updatedAt time.Time) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateIconURL(iconURL); err != nil {
		return nil, err
	}
	return &User{ID: id, Name: name, IconURL: iconURL, Role: role, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

// NewContentModel builds a ContentModel, enforcing the shared bounds.
func NewContentModel(id, name, apiIdentifier string, description *string, fields []FieldMeta, createdBy, updatedBy Author, createdAt, updatedAt time.Time) (*ContentModel, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateAPIIdentifier(apiIdentifier); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	return &ContentModel{
		ID:            id,
		Name:          name,
		APIIdentifier: apiIdentifier,
		Description:   description,
		Fields:        fields,
		CreatedBy:     createdBy,
		UpdatedBy:     updatedBy,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
