package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// CategoryHandler serves the /categories resource.
type CategoryHandler struct {
	service simplecms.Service
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(service simplecms.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Routes returns the category router.
func (h *CategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type createCategoryRequest struct {
	Name          string  `json:"name"`
	APIIdentifier string  `json:"api_identifier"`
	Description   *string `json:"description"`
	CreatedByID   string  `json:"created_by_id"`
	UpdatedByID   string  `json:"updated_by_id"`
}

type updateCategoryRequest struct {
	Name          *string `json:"name"`
	APIIdentifier *string `json:"api_identifier"`
	Description   *string `json:"description"`
	UpdatedByID   string  `json:"updated_by_id"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), parseListQuery(r))
	if err != nil {
		respondError(w, r, "list categories", err)
		return
	}
	if categories == nil {
		categories = []*simplecms.Category{}
	}
	render.JSON(w, r, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), simplecms.CreateCategoryRequest{
		Name:          req.Name,
		APIIdentifier: req.APIIdentifier,
		Description:   req.Description,
		CreatedByID:   req.CreatedByID,
		UpdatedByID:   req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "create category", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), simplecms.UpdateCategoryRequest{
		ID:            chi.URLParam(r, "id"),
		Name:          req.Name,
		APIIdentifier: req.APIIdentifier,
		Description:   req.Description,
		UpdatedByID:   req.UpdatedByID,
	})
	if err != nil {
		respondError(w, r, "update category", err)
		return
	}
	render.JSON(w, r, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
