package postgres

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// newID generates a time-ordered (version 7) uuid for inserts.
func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// parseID rejects malformed identifiers before any query is issued.
func parseID(field, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", simplecms.ErrInvalidID, field, id)
	}
	return parsed, nil
}

// parseIDs parses a list of identifiers, failing on the first malformed one.
func parseIDs(field string, ids []string) ([]uuid.UUID, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		p, err := parseID(field, id)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}
	return parsed, nil
}
