package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// ContentHandler serves the /contents resource.
type ContentHandler struct {
	service simplecms.Service
}

// NewContentHandler creates a content handler.
func NewContentHandler(service simplecms.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the content router.
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type createContentRequest struct {
	Title       string            `json:"title"`
	CategoryID  string            `json:"category_id"`
	Fields      []simplecms.Field `json:"fields"`
	TagIDs      []string          `json:"tag_ids"`
	Status      string            `json:"status"`
	CreatedByID string            `json:"created_by_id"`
	UpdatedByID string            `json:"updated_by_id"`
}

type updateContentRequest struct {
	Title       *string           `json:"title"`
	CategoryID  *string           `json:"category_id"`
	Fields      []simplecms.Field `json:"fields"`
	TagIDs      []string          `json:"tag_ids"`
	Status      *string           `json:"status"`
	PublishedAt *time.Time        `json:"published_at"`
	UpdatedByID string            `json:"updated_by_id"`
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.ListContents(r.Context(), parseListQuery(r))
	if err != nil {
		respondError(w, r, "list contents", err)
		return
	}
	if contents == nil {
		contents = []*simplecms.Content{}
	}
	render.JSON(w, r, contents)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	status := simplecms.ContentStatusDraft
	if req.Status != "" {
		parsed, err := simplecms.ParseContentStatus(req.Status)
		if err != nil {
			respondError(w, r, "create content", err)
			return
		}
		status = parsed
	}

	content, err := h.service.CreateContent(r.Context(), simplecms.CreateContentRequest{
		Title:       req.Title,
		CategoryID:  req.CategoryID,
		Fields:      req.Fields,
		TagIDs:      req.TagIDs,
		Status:      status,
		CreatedByID: req.CreatedByID,
		UpdatedByID: req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "create content", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, content)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var status *simplecms.ContentStatus
	if req.Status != nil {
		parsed, err := simplecms.ParseContentStatus(*req.Status)
		if err != nil {
			respondError(w, r, "update content", err)
			return
		}
		status = &parsed
	}

	content, err := h.service.UpdateContent(r.Context(), simplecms.UpdateContentRequest{
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		CategoryID:  req.CategoryID,
		Fields:      req.Fields,
		TagIDs:      req.TagIDs,
		Status:      status,
		PublishedAt: req.PublishedAt,
		UpdatedByID: req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "update content", err)
		return
	}
	render.JSON(w, r, content)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteContent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "delete content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
