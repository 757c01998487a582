package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// categoryColumns is the joined projection shared by every category query.
// cu/uu are the users rows for created_by/updated_by.
const categoryColumns = `category.id, category.name, category.api_identifier, category.description,
		category.created_at, category.updated_at,
		cu.id, cu.name, uu.id, uu.name`

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a PostgreSQL-backed category repository.
func NewCategoryRepository(db DBTX) simplecms.CategoryRepository {
	return &categoryRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*simplecms.Category, error) {
	var (
		id, createdByID, updatedByID uuid.UUID
		name, apiIdentifier          string
		description                  *string
		createdAt, updatedAt         time.Time
		createdByName, updatedByName string
	)
	if err := row.Scan(&id, &name, &apiIdentifier, &description, &createdAt, &updatedAt,
		&createdByID, &createdByName, &updatedByID, &updatedByName); err != nil {
		return nil, err
	}
	return simplecms.NewCategory(
		id.String(), name, apiIdentifier, description,
		simplecms.Author{ID: createdByID.String(), Name: createdByName},
		simplecms.Author{ID: updatedByID.String(), Name: updatedByName},
		createdAt, updatedAt,
	)
}

func (r *categoryRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Category, error) {
	q := query.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM category
		JOIN users AS cu ON category.created_by = cu.id
		JOIN users AS uu ON category.updated_by = uu.id
		ORDER BY category.created_at
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset)
	if err != nil {
		return nil, handlePostgresError(err, "list categories", simplecms.ErrCategoryNotFound)
	}
	defer rows.Close()

	var categories []*simplecms.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, &simplecms.CategoryError{Op: "list", Err: err}
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list categories", simplecms.ErrCategoryNotFound)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, req simplecms.CreateCategoryRequest) (*simplecms.Category, error) {
	createdBy, err := parseID("created_by_id", req.CreatedByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO category (id, name, api_identifier, description, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT inserted.id, inserted.name, inserted.api_identifier, inserted.description,
			inserted.created_at, inserted.updated_at,
			cu.id, cu.name, uu.id, uu.name
		FROM inserted
		JOIN users AS cu ON inserted.created_by = cu.id
		JOIN users AS uu ON inserted.updated_by = uu.id`,
		id, req.Name, req.APIIdentifier, req.Description, createdBy, updatedBy)

	category, err := scanCategory(row)
	if err != nil {
		return nil, handlePostgresError(err, "create category", simplecms.ErrCategoryNotFound)
	}
	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, req simplecms.UpdateCategoryRequest) (*simplecms.Category, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}

	b := newUpdateBuilder("category")
	if req.Name != nil {
		b.Set("name", *req.Name)
	}
	if req.APIIdentifier != nil {
		b.Set("api_identifier", *req.APIIdentifier)
	}
	if req.Description != nil {
		b.Set("description", *req.Description)
	}
	// Audit assignments always follow the optional fields.
	b.Set("updated_by", updatedBy)
	b.Set("updated_at", time.Now().UTC())

	idPh := b.Bind(id)
	updPh := b.Bind(updatedBy)
	query, args, err := b.Build(`
		FROM users AS cu, users AS uu
		WHERE category.id = ` + idPh + `
		AND cu.id = category.created_by
		AND uu.id = ` + updPh + `
		RETURNING ` + categoryColumns)
	if err != nil {
		return nil, &simplecms.CategoryError{CategoryID: req.ID, Op: "update", Err: err}
	}

	category, err := scanCategory(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handlePostgresError(err, "update category", simplecms.ErrCategoryNotFound)
	}
	return category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID("id", id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM category WHERE id = $1`, parsed)
	if err != nil {
		return handlePostgresError(err, "delete category", simplecms.ErrCategoryNotFound)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrCategoryNotFound
	}
	return nil
}
