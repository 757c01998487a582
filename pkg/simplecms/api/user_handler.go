package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// UserHandler serves the /users and /roles resources.
type UserHandler struct {
	service simplecms.Service
}

// NewUserHandler creates a user handler.
func NewUserHandler(service simplecms.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Routes returns the user router.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Find)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// RoleRoutes returns the role router.
func (h *UserHandler) RoleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRoles)
	return r
}

type createUserRequest struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
	RoleID  string `json:"role_id"`
}

type updateUserRequest struct {
	Name    *string `json:"name"`
	IconURL *string `json:"icon_url"`
	RoleID  *string `json:"role_id"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), parseListQuery(r))
	if err != nil {
		respondError(w, r, "list users", err)
		return
	}
	if users == nil {
		users = []*simplecms.User{}
	}
	render.JSON(w, r, users)
}

func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "find user", err)
		return
	}
	render.JSON(w, r, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(r.Context(), simplecms.CreateUserRequest{
		Name:    req.Name,
		IconURL: req.IconURL,
		RoleID:  req.RoleID,
	})
	if err != nil {
		respondError(w, r, "create user", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), simplecms.UpdateUserRequest{
		ID:      chi.URLParam(r, "id"),
		Name:    req.Name,
		IconURL: req.IconURL,
		RoleID:  req.RoleID,
	})
	if err != nil {
		respondError(w, r, "update user", err)
		return
	}
	render.JSON(w, r, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		respondError(w, r, "list roles", err)
		return
	}
	if roles == nil {
		roles = []*simplecms.Role{}
	}
	render.JSON(w, r, roles)
}
