package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

const tagColumns = `id, name, description, created_at, updated_at`

type tagRepository struct {
	db DBTX
}

// NewTagRepository creates a PostgreSQL-backed tag repository.
func NewTagRepository(db DBTX) simplecms.TagRepository {
	return &tagRepository{db: db}
}

func scanTag(row rowScanner) (*simplecms.Tag, error) {
	var (
		id                   uuid.UUID
		name                 string
		description          *string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return simplecms.NewTag(id.String(), name, description, createdAt, updatedAt)
}

func (r *tagRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Tag, error) {
	q := query.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+tagColumns+`
		FROM tags
		ORDER BY created_at
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset)
	if err != nil {
		return nil, handlePostgresError(err, "list tags", simplecms.ErrTagNotFound)
	}
	defer rows.Close()

	var tags []*simplecms.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, &simplecms.TagError{Op: "list", Err: err}
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list tags", simplecms.ErrTagNotFound)
	}
	return tags, nil
}

func (r *tagRepository) Create(ctx context.Context, req simplecms.CreateTagRequest) (*simplecms.Tag, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO tags (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+tagColumns, id, req.Name, req.Description)

	tag, err := scanTag(row)
	if err != nil {
		return nil, handlePostgresError(err, "create tag", simplecms.ErrTagNotFound)
	}
	return tag, nil
}

func (r *tagRepository) Update(ctx context.Context, req simplecms.UpdateTagRequest) (*simplecms.Tag, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	// Tags have no mandatory audit column, so an update with no fields set
	// is rejected by the builder before any SQL reaches the store.
	b := newUpdateBuilder("tags")
	if req.Name != nil {
		b.Set("name", *req.Name)
	}
	if req.Description != nil {
		b.Set("description", *req.Description)
	}
	if !b.Empty() {
		b.Set("updated_at", time.Now().UTC())
	}

	idPh := b.Bind(id)
	query, args, err := b.Build(`WHERE id = ` + idPh + ` RETURNING ` + tagColumns)
	if err != nil {
		return nil, &simplecms.TagError{TagID: req.ID, Op: "update", Err: err}
	}

	tag, err := scanTag(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handlePostgresError(err, "update tag", simplecms.ErrTagNotFound)
	}
	return tag, nil
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID("id", id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, parsed)
	if err != nil {
		return handlePostgresError(err, "delete tag", simplecms.ErrTagNotFound)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrTagNotFound
	}
	return nil
}
