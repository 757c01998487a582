package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// MediaHandler serves the /medias resource: bucket management and object
// upload/download against the configured object store.
type MediaHandler struct {
	service simplecms.Service
}

// NewMediaHandler creates a media handler.
func NewMediaHandler(service simplecms.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// Routes returns the media router. Object keys may contain slashes, so the
// object routes use a wildcard parameter.
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/buckets", h.CreateBucket)
	r.Delete("/buckets/{name}", h.DeleteBucket)
	r.Put("/objects/*", h.Upload)
	r.Get("/objects/*", h.DownloadURL)
	r.Get("/download/*", h.Download)
	r.Delete("/objects/*", h.Delete)
	return r
}

type createBucketRequest struct {
	Name string `json:"name"`
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

func (h *MediaHandler) CreateBucket(w http.ResponseWriter, r *http.Request) {
	var req createBucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.service.CreateMediaBucket(r.Context(), req.Name); err != nil {
		respondError(w, r, "create bucket", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *MediaHandler) DeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMediaBucket(r.Context(), chi.URLParam(r, "name")); err != nil {
		respondError(w, r, "delete bucket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	defer r.Body.Close()
	if err := h.service.UploadMedia(r.Context(), key, r.Body, r.Header.Get("Content-Type")); err != nil {
		respondError(w, r, "upload media", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *MediaHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	url, err := h.service.MediaDownloadURL(r.Context(), key)
	if err != nil {
		respondError(w, r, "media download url", err)
		return
	}
	render.JSON(w, r, downloadURLResponse{URL: url})
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := h.service.DeleteMedia(r.Context(), key); err != nil {
		respondError(w, r, "delete media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download streams the object body directly; kept for callers that cannot
// follow presigned URLs.
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	body, err := h.service.DownloadMedia(r.Context(), key)
	if err != nil {
		respondError(w, r, "download media", err)
		return
	}
	defer body.Close()
	if _, err := io.Copy(w, body); err != nil {
		respondError(w, r, "download media", err)
	}
}
