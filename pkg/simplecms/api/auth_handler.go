package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
)

// AuthHandler issues development JWTs and provides the verification
// middleware for mutating routes. This is token plumbing only; there is no
// permission engine behind it.
type AuthHandler struct {
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates an auth handler signing HS256 tokens with secret.
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil),
		tokenTTL:  24 * time.Hour,
	}
}

// Routes returns the auth router.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/token", h.IssueToken)
	return r
}

// Middleware verifies and requires a valid token.
func (h *AuthHandler) Middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		jwtauth.Verifier(h.tokenAuth),
		jwtauth.Authenticator,
	}
}

type tokenRequest struct {
	UserID string `json:"user_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	claims := map[string]interface{}{"sub": req.UserID}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, h.tokenTTL)

	_, token, err := h.tokenAuth.Encode(claims)
	if err != nil {
		slog.Error("token encoding failed", "error", err)
		http.Error(w, "token issuance failed", http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, tokenResponse{Token: token})
}
