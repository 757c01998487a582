package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

const contentModelColumns = `content_model.id, content_model.name, content_model.api_identifier,
		content_model.description, content_model.fields,
		content_model.created_at, content_model.updated_at,
		cu.id, cu.name, uu.id, uu.name`

type contentModelRepository struct {
	db DBTX
}

// NewContentModelRepository creates a PostgreSQL-backed content model
// repository.
func NewContentModelRepository(db DBTX) simplecms.ContentModelRepository {
	return &contentModelRepository{db: db}
}

func scanContentModel(row rowScanner) (*simplecms.ContentModel, error) {
	var (
		id, createdByID, updatedByID uuid.UUID
		name, apiIdentifier          string
		description                  *string
		fieldJSON                    []byte
		createdAt, updatedAt         time.Time
		createdByName, updatedByName string
	)
	if err := row.Scan(&id, &name, &apiIdentifier, &description, &fieldJSON,
		&createdAt, &updatedAt,
		&createdByID, &createdByName, &updatedByID, &updatedByName); err != nil {
		return nil, err
	}
	// Schema decode failures propagate; the row is never defaulted.
	var fields []simplecms.FieldMeta
	if err := json.Unmarshal(fieldJSON, &fields); err != nil {
		return nil, fmt.Errorf("decode content model fields: %w", err)
	}
	return simplecms.NewContentModel(
		id.String(), name, apiIdentifier, description, fields,
		simplecms.Author{ID: createdByID.String(), Name: createdByName},
		simplecms.Author{ID: updatedByID.String(), Name: updatedByName},
		createdAt, updatedAt,
	)
}

func (r *contentModelRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.ContentModel, error) {
	q := query.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+contentModelColumns+`
		FROM content_model
		JOIN users AS cu ON content_model.created_by = cu.id
		JOIN users AS uu ON content_model.updated_by = uu.id
		ORDER BY content_model.created_at
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset)
	if err != nil {
		return nil, handlePostgresError(err, "list content models", simplecms.ErrContentModelNotFound)
	}
	defer rows.Close()

	var models []*simplecms.ContentModel
	for rows.Next() {
		model, err := scanContentModel(rows)
		if err != nil {
			return nil, &simplecms.ContentModelError{Op: "list", Err: err}
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list content models", simplecms.ErrContentModelNotFound)
	}
	return models, nil
}

func (r *contentModelRepository) Create(ctx context.Context, req simplecms.CreateContentModelRequest) (*simplecms.ContentModel, error) {
	createdBy, err := parseID("created_by_id", req.CreatedByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	fields := req.Fields
	if fields == nil {
		fields = []simplecms.FieldMeta{}
	}
	fieldJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, &simplecms.ContentModelError{Op: "create", Err: err}
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO content_model (id, name, api_identifier, description, fields, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT inserted.id, inserted.name, inserted.api_identifier,
			inserted.description, inserted.fields,
			inserted.created_at, inserted.updated_at,
			cu.id, cu.name, uu.id, uu.name
		FROM inserted
		JOIN users AS cu ON inserted.created_by = cu.id
		JOIN users AS uu ON inserted.updated_by = uu.id`,
		id, req.Name, req.APIIdentifier, req.Description, fieldJSON, createdBy, updatedBy)

	model, err := scanContentModel(row)
	if err != nil {
		return nil, handlePostgresError(err, "create content model", simplecms.ErrContentModelNotFound)
	}
	return model, nil
}

func (r *contentModelRepository) Update(ctx context.Context, req simplecms.UpdateContentModelRequest) (*simplecms.ContentModel, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}

	b := newUpdateBuilder("content_model")
	if req.Name != nil {
		b.Set("name", *req.Name)
	}
	if req.APIIdentifier != nil {
		b.Set("api_identifier", *req.APIIdentifier)
	}
	if req.Description != nil {
		b.Set("description", *req.Description)
	}
	if req.Fields != nil {
		fieldJSON, err := json.Marshal(req.Fields)
		if err != nil {
			return nil, &simplecms.ContentModelError{ContentModelID: req.ID, Op: "update", Err: err}
		}
		b.Set("fields", fieldJSON)
	}
	b.Set("updated_by", updatedBy)
	b.Set("updated_at", time.Now().UTC())

	idPh := b.Bind(id)
	updPh := b.Bind(updatedBy)
	query, args, err := b.Build(`
		FROM users AS cu, users AS uu
		WHERE content_model.id = ` + idPh + `
		AND cu.id = content_model.created_by
		AND uu.id = ` + updPh + `
		RETURNING ` + contentModelColumns)
	if err != nil {
		return nil, &simplecms.ContentModelError{ContentModelID: req.ID, Op: "update", Err: err}
	}

	model, err := scanContentModel(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handlePostgresError(err, "update content model", simplecms.ErrContentModelNotFound)
	}
	return model, nil
}

func (r *contentModelRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID("id", id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM content_model WHERE id = $1`, parsed)
	if err != nil {
		return handlePostgresError(err, "delete content model", simplecms.ErrContentModelNotFound)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrContentModelNotFound
	}
	return nil
}
