package simplecms

import (
	"errors"
	"fmt"
)

// Common errors returned by repositories and services.
var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrContentNotFound      = errors.New("content not found")
	ErrContentModelNotFound = errors.New("content model not found")
	ErrTagNotFound          = errors.New("tag not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")

	// ErrInvalidID indicates an identifier that does not parse as a UUID.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrEmptyUpdate indicates an update command that would produce zero
	// column assignments.
	ErrEmptyUpdate = errors.New("update contains no assignments")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrForeignKeyViolation indicates a referenced row does not exist.
	ErrForeignKeyViolation = errors.New("referenced row does not exist")

	// ErrStorageNotConfigured indicates media operations were requested
	// without a configured media store.
	ErrStorageNotConfigured = errors.New("media storage not configured")
)

// ValidationError reports a domain invariant violated before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) one of the not-found
// sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrContentModelNotFound) ||
		errors.Is(err, ErrTagNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoleNotFound)
}

// CategoryError wraps an error with category operation context.
type CategoryError struct {
	CategoryID string
	Op         string
	Err        error
}

func (e *CategoryError) Error() string {
	if e.CategoryID == "" {
		return fmt.Sprintf("category %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("category %s (id: %s): %v", e.Op, e.CategoryID, e.Err)
}

func (e *CategoryError) Unwrap() error { return e.Err }

// ContentError wraps an error with content operation context.
type ContentError struct {
	ContentID string
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	if e.ContentID == "" {
		return fmt.Sprintf("content %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("content %s (id: %s): %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// ContentModelError wraps an error with content model operation context.
type ContentModelError struct {
	ContentModelID string
	Op             string
	Err            error
}

func (e *ContentModelError) Error() string {
	if e.ContentModelID == "" {
		return fmt.Sprintf("content model %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("content model %s (id: %s): %v", e.Op, e.ContentModelID, e.Err)
}

func (e *ContentModelError) Unwrap() error { return e.Err }

// TagError wraps an error with tag operation context.
type TagError struct {
	TagID string
	Op    string
	Err   error
}

func (e *TagError) Error() string {
	if e.TagID == "" {
		return fmt.Sprintf("tag %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tag %s (id: %s): %v", e.Op, e.TagID, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// UserError wraps an error with user operation context.
type UserError struct {
	UserID string
	Op     string
	Err    error
}

func (e *UserError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("user %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("user %s (id: %s): %v", e.Op, e.UserID, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// StorageError wraps an error from the media store with operation context.
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s (bucket: %s, key: %s): %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s (bucket: %s): %v", e.Op, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
