package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// contentColumns is the joined projection for content queries: the content
// row, the denormalized category, and the created_by/updated_by users.
const contentColumns = `contents.id, contents.title, contents.fields, contents.status::text,
		contents.published_at, contents.created_at, contents.updated_at,
		category.id, category.name, category.api_identifier, category.description,
		cu.id, cu.name, uu.id, uu.name`

type contentRepository struct {
	db DBTX
}

// NewContentRepository creates a PostgreSQL-backed content repository.
func NewContentRepository(db DBTX) simplecms.ContentRepository {
	return &contentRepository{db: db}
}

// Store-level content_status enum values. The mapping to the domain enum is
// bijective; unknown values on either side are hard errors.
var statusToRow = map[simplecms.ContentStatus]string{
	simplecms.ContentStatusDraft:       "Draft",
	simplecms.ContentStatusPublished:   "Published",
	simplecms.ContentStatusReserved:    "Reserved",
	simplecms.ContentStatusUnpublished: "Unpublished",
}

var statusFromRow = map[string]simplecms.ContentStatus{
	"Draft":       simplecms.ContentStatusDraft,
	"Published":   simplecms.ContentStatusPublished,
	"Reserved":    simplecms.ContentStatusReserved,
	"Unpublished": simplecms.ContentStatusUnpublished,
}

func rowStatus(status simplecms.ContentStatus) (string, error) {
	s, ok := statusToRow[status]
	if !ok {
		return "", fmt.Errorf("unknown content status %q", status)
	}
	return s, nil
}

func domainStatus(raw string) (simplecms.ContentStatus, error) {
	s, ok := statusFromRow[raw]
	if !ok {
		return "", fmt.Errorf("unknown stored content status %q", raw)
	}
	return s, nil
}

// contentRow is the flat scan target before reshaping into the domain
// entity.
type contentRow struct {
	id			uuid.UUID
	title			string
	fields			[]byte
	status			string
	publishedAt		*time.Time
	createdAt		time.Time
	updatedAt		time.Time
	categoryID		uuid.UUID
	categoryName		string
	categoryAPIIdentifier	string
	categoryDescription	*string
	createdByID		uuid.UUID
	createdByName		string
	updatedByID		uuid.UUID
	updatedByName		string
}

func scanContentRow(row rowScanner) (*contentRow, error) {
	var cr contentRow
	if err := row.Scan(&cr.id, &cr.title, &cr.fields, &cr.status,
		&cr.publishedAt, &cr.createdAt, &cr.updatedAt,
		&cr.categoryID, &cr.categoryName, &cr.categoryAPIIdentifier, &cr.categoryDescription,
		&cr.createdByID, &cr.createdByName, &cr.updatedByID, &cr.updatedByName); err != nil {
		return nil, err
	}
	return &cr, nil
}

// toContent reshapes the flat row into the nested entity. A fields column
// that fails to decode is a hard error, not a defaulted value. The absence
// or presence of published_at is preserved exactly.
func (cr *contentRow) toContent(tags []simplecms.TagRef) (*simplecms.Content, error) {
	status, err := domainStatus(cr.status)
	if err != nil {
		return nil, err
	}
	var fields []simplecms.Field
	if err := json.Unmarshal(cr.fields, &fields); err != nil {
		return nil, fmt.Errorf("decode content fields: %w", err)
	}
	category, err := simplecms.NewCategoryRef(cr.categoryID.String(), cr.categoryName, cr.categoryAPIIdentifier, cr.categoryDescription)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []simplecms.TagRef{}
	}
	return &simplecms.Content{
		ID:          cr.id.String(),
		Title:       cr.title,
		Category:    category,
		Status:      status,
		Fields:      fields,
		Tags:        tags,
		CreatedBy:   simplecms.Author{ID: cr.createdByID.String(), Name: cr.createdByName},
		UpdatedBy:   simplecms.Author{ID: cr.updatedByID.String(), Name: cr.updatedByName},
		PublishedAt: cr.publishedAt,
		CreatedAt:   cr.createdAt,
		UpdatedAt:   cr.updatedAt,
	}, nil
}

func (r *contentRepository) List(ctx context.Context, query simplecms.ListQuery) ([]*simplecms.Content, error) {
	q := query.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+contentColumns+`,
			COALESCE(json_agg(json_build_object('id', tags.id, 'name', tags.name) ORDER BY tags.name)
				FILTER (WHERE tags.id IS NOT NULL), '[]') AS tags
		FROM contents
		JOIN category ON contents.category_id = category.id
		JOIN users AS cu ON contents.created_by = cu.id
		JOIN users AS uu ON contents.updated_by = uu.id
		LEFT JOIN content_tags ON content_tags.content_id = contents.id
		LEFT JOIN tags ON tags.id = content_tags.tag_id
		GROUP BY contents.id, category.id, cu.id, uu.id
		ORDER BY contents.created_at
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset)
	if err != nil {
		return nil, handlePostgresError(err, "list contents", simplecms.ErrContentNotFound)
	}
	defer rows.Close()

	var contents []*simplecms.Content
	for rows.Next() {
		var (
			cr      contentRow
			tagJSON []byte
		)
		if err := rows.Scan(&cr.id, &cr.title, &cr.fields, &cr.status,
			&cr.publishedAt, &cr.createdAt, &cr.updatedAt,
			&cr.categoryID, &cr.categoryName, &cr.categoryAPIIdentifier, &cr.categoryDescription,
			&cr.createdByID, &cr.createdByName, &cr.updatedByID, &cr.updatedByName,
			&tagJSON); err != nil {
			return nil, &simplecms.ContentError{Op: "list", Err: err}
		}
		var tags []simplecms.TagRef
		if err := json.Unmarshal(tagJSON, &tags); err != nil {
			return nil, &simplecms.ContentError{Op: "list", Err: fmt.Errorf("decode tag aggregation: %w", err)}
		}
		content, err := cr.toContent(tags)
		if err != nil {
			return nil, &simplecms.ContentError{Op: "list", Err: err}
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError(err, "list contents", simplecms.ErrContentNotFound)
	}
	return contents, nil
}

func (r *contentRepository) Create(ctx context.Context, req simplecms.CreateContentRequest) (*simplecms.Content, error) {
	categoryID, err := parseID("category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	createdBy, err := parseID("created_by_id", req.CreatedByID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	tagIDs, err := parseIDs("tag_ids", req.TagIDs)
	if err != nil {
		return nil, err
	}
	status, err := rowStatus(req.Status)
	if err != nil {
		return nil, &simplecms.ContentError{Op: "create", Err: err}
	}
	fields := req.Fields
	if fields == nil {
		fields = []simplecms.Field{}
	}
	fieldJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, &simplecms.ContentError{Op: "create", Err: err}
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handlePostgresError(err, "create content", simplecms.ErrContentNotFound)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO contents (id, title, category_id, fields, status, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT inserted.id, inserted.title, inserted.fields, inserted.status::text,
			inserted.published_at, inserted.created_at, inserted.updated_at,
			category.id, category.name, category.api_identifier, category.description,
			cu.id, cu.name, uu.id, uu.name
		FROM inserted
		JOIN category ON inserted.category_id = category.id
		JOIN users AS cu ON inserted.created_by = cu.id
		JOIN users AS uu ON inserted.updated_by = uu.id`,
		id, req.Title, categoryID, fieldJSON, status, createdBy, updatedBy)

	cr, err := scanContentRow(row)
	if err != nil {
		return nil, handlePostgresError(err, "create content", simplecms.ErrContentNotFound)
	}

	if err := replaceTagAssociations(ctx, tx, id, tagIDs); err != nil {
		return nil, handlePostgresError(err, "create content tags", simplecms.ErrContentNotFound)
	}
	tags, err := readTagRefs(ctx, tx, id)
	if err != nil {
		return nil, handlePostgresError(err, "create content tags", simplecms.ErrContentNotFound)
	}

	content, err := cr.toContent(tags)
	if err != nil {
		return nil, &simplecms.ContentError{ContentID: id.String(), Op: "create", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, handlePostgresError(err, "create content", simplecms.ErrContentNotFound)
	}
	return content, nil
}

func (r *contentRepository) Update(ctx context.Context, req simplecms.UpdateContentRequest) (*simplecms.Content, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := parseID("updated_by_id", req.UpdatedByID)
	if err != nil {
		return nil, err
	}
	// Parse every tag id before any write happens.
	var tagIDs []uuid.UUID
	if req.TagIDs != nil {
		tagIDs, err = parseIDs("tag_ids", req.TagIDs)
		if err != nil {
			return nil, err
		}
	}

	b := newUpdateBuilder("contents")
	categoryJoin := "category.id = contents.category_id"
	var newCategoryID *uuid.UUID
	if req.Title != nil {
		b.Set("title", *req.Title)
	}
	if req.CategoryID != nil {
		categoryID, err := parseID("category_id", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		newCategoryID = &categoryID
		b.Set("category_id", categoryID)
		// Join on the new category id; contents.category_id in the WHERE
		// clause of UPDATE ... FROM still refers to the old row.
		categoryJoin = "category.id = " + b.Bind(categoryID)
	}
	if req.Fields != nil {
		fieldJSON, err := json.Marshal(req.Fields)
		if err != nil {
			return nil, &simplecms.ContentError{ContentID: req.ID, Op: "update", Err: err}
		}
		b.Set("fields", fieldJSON)
	}
	if req.Status != nil {
		status, err := rowStatus(*req.Status)
		if err != nil {
			return nil, &simplecms.ContentError{ContentID: req.ID, Op: "update", Err: err}
		}
		b.Set("status", status)
	}
	if req.PublishedAt != nil {
		b.Set("published_at", *req.PublishedAt)
	}
	b.Set("updated_by", updatedBy)
	b.Set("updated_at", time.Now().UTC())

	idPh := b.Bind(id)
	updPh := b.Bind(updatedBy)
	query, args, err := b.Build(`
		FROM category, users AS cu, users AS uu
		WHERE contents.id = ` + idPh + `
		AND ` + categoryJoin + `
		AND cu.id = contents.created_by
		AND uu.id = ` + updPh + `
		RETURNING ` + contentColumns)
	if err != nil {
		return nil, &simplecms.ContentError{ContentID: req.ID, Op: "update", Err: err}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handlePostgresError(err, "update content", simplecms.ErrContentNotFound)
	}
	defer tx.Rollback(ctx)

	cr, err := scanContentRow(tx.QueryRow(ctx, query, args...))
	if err != nil {
		err = handlePostgresError(err, "update content", simplecms.ErrContentNotFound)
		if errors.Is(err, simplecms.ErrContentNotFound) {
			err = resolveContentUpdateMiss(ctx, tx, id, newCategoryID, updatedBy, err)
		}
		return nil, err
	}

	if req.TagIDs != nil {
		if err := replaceTagAssociations(ctx, tx, id, tagIDs); err != nil {
			return nil, handlePostgresError(err, "update content tags", simplecms.ErrContentNotFound)
		}
	}
	tags, err := readTagRefs(ctx, tx, id)
	if err != nil {
		return nil, handlePostgresError(err, "update content tags", simplecms.ErrContentNotFound)
	}

	content, err := cr.toContent(tags)
	if err != nil {
		return nil, &simplecms.ContentError{ContentID: req.ID, Op: "update", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, handlePostgresError(err, "update content", simplecms.ErrContentNotFound)
	}
	return content, nil
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	parsed, err := parseID("id", id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, parsed)
	if err != nil {
		return handlePostgresError(err, "delete content", simplecms.ErrContentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrContentNotFound
	}
	return nil
}

// resolveContentUpdateMiss decides why the joined update matched no rows.
// The content itself may be gone, or one of the joined references may be
// missing; a missing reference is a foreign key violation, not a missing
// content, so both store backends report the same error.
func resolveContentUpdateMiss(ctx context.Context, q querier, id uuid.UUID, categoryID *uuid.UUID, updatedBy uuid.UUID, notFound error) error {
	exists, err := rowExists(ctx, q, "contents", id)
	if err != nil || !exists {
		return notFound
	}
	if categoryID != nil {
		ok, err := rowExists(ctx, q, "category", *categoryID)
		if err == nil && !ok {
			return fmt.Errorf("update content: %w: category %s", simplecms.ErrForeignKeyViolation, categoryID)
		}
	}
	ok, err := rowExists(ctx, q, "users", updatedBy)
	if err == nil && !ok {
		return fmt.Errorf("update content: %w: users %s", simplecms.ErrForeignKeyViolation, updatedBy)
	}
	return notFound
}

// replaceTagAssociations rewrites the content_tags rows for a content id
// with set semantics: delete everything, then bulk-insert the new list.
func replaceTagAssociations(ctx context.Context, tx pgx.Tx, contentID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM content_tags WHERE content_id = $1`, contentID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO content_tags (content_id, tag_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, contentID, tagIDs)
	return err
}

// readTagRefs loads the tag rows associated with a content id for response
// assembly.
func readTagRefs(ctx context.Context, q querier, contentID uuid.UUID) ([]simplecms.TagRef, error) {
	rows, err := q.Query(ctx, `
		SELECT tags.id, tags.name
		FROM tags
		JOIN content_tags ON content_tags.tag_id = tags.id
		WHERE content_tags.content_id = $1
		ORDER BY tags.name`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []simplecms.TagRef{}
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		refs = append(refs, simplecms.TagRef{ID: id.String(), Name: name})
	}
	return refs, rows.Err()
}
