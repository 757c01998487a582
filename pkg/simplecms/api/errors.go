package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps service errors onto HTTP statuses: validation and
// identifier problems are 400, missing entities 404, everything else a
// generic 500. The specific cause of a 500 is logged, not exposed.
func respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case simplecms.IsValidation(err),
		errors.Is(err, simplecms.ErrInvalidID),
		errors.Is(err, simplecms.ErrEmptyUpdate):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
	case simplecms.IsNotFound(err):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "op", op, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: op + " failed"})
	}
}

// parseListQuery reads limit/offset query parameters, leaving defaults to
// ListQuery.Normalize.
func parseListQuery(r *http.Request) simplecms.ListQuery {
	var q simplecms.ListQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 32); err == nil {
			q.Limit = int32(limit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.ParseInt(raw, 10, 32); err == nil {
			q.Offset = int32(offset)
		}
	}
	return q
}
