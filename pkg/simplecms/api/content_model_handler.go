package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// ContentModelHandler serves the /content_models resource.
type ContentModelHandler struct {
	service simplecms.Service
}

// NewContentModelHandler creates a content model handler.
func NewContentModelHandler(service simplecms.Service) *ContentModelHandler {
	return &ContentModelHandler{service: service}
}

// Routes returns the content model router.
func (h *ContentModelHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type createContentModelRequest struct {
	Name          string                `json:"name"`
	APIIdentifier string                `json:"api_identifier"`
	Description   *string               `json:"description"`
	Fields        []simplecms.FieldMeta `json:"fields"`
	CreatedByID   string                `json:"created_by_id"`
	UpdatedByID   string                `json:"updated_by_id"`
}

type updateContentModelRequest struct {
	Name          *string               `json:"name"`
	APIIdentifier *string               `json:"api_identifier"`
	Description   *string               `json:"description"`
	Fields        []simplecms.FieldMeta `json:"fields"`
	UpdatedByID   string                `json:"updated_by_id"`
}

func (h *ContentModelHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.ListContentModels(r.Context(), parseListQuery(r))
	if err != nil {
		respondError(w, r, "list content models", err)
		return
	}
	if models == nil {
		models = []*simplecms.ContentModel{}
	}
	render.JSON(w, r, models)
}

func (h *ContentModelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContentModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	model, err := h.service.CreateContentModel(r.Context(), simplecms.CreateContentModelRequest{
		Name:          req.Name,
		APIIdentifier: req.APIIdentifier,
		Description:   req.Description,
		Fields:        req.Fields,
		CreatedByID:   req.CreatedByID,
		UpdatedByID:   req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "create content model", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, model)
}

func (h *ContentModelHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateContentModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	model, err := h.service.UpdateContentModel(r.Context(), simplecms.UpdateContentModelRequest{
		ID:            chi.URLParam(r, "id"),
		Name:          req.Name,
		APIIdentifier: req.APIIdentifier,
		Description:   req.Description,
		Fields:        req.Fields,
		UpdatedByID:   req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "update content model", err)
		return
	}
	render.JSON(w, r, model)
}

func (h *ContentModelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteContentModel(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "delete content model", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
