package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// TagHandler serves the /tags resource.
type TagHandler struct {
	service simplecms.Service
}

// NewTagHandler creates a tag handler.
func NewTagHandler(service simplecms.Service) *TagHandler {
	return &TagHandler{service: service}
}

// Routes returns the tag router.
func (h *TagHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type createTagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type updateTagRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context(), parseListQuery(r))
	if err != nil {
		respondError(w, r, "list tags", err)
		return
	}
	if tags == nil {
		tags = []*simplecms.Tag{}
	}
	render.JSON(w, r, tags)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tag, err := h.service.CreateTag(r.Context(), simplecms.CreateTagRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, "create tag", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tag)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tag, err := h.service.UpdateTag(r.Context(), simplecms.UpdateTagRequest{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, "update tag", err)
		return
	}
	render.JSON(w, r, tag)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
