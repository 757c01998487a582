package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto/simple-cms/pkg/simplecms"
	memoryrepo "github.com/hokuto/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/hokuto/simple-cms/pkg/simplecms/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, simplecms.Service) {
	t.Helper()
	store := memoryrepo.NewStore()
	service, err := simplecms.New(
		simplecms.WithCategoryRepository(store.CategoryRepository()),
		simplecms.WithContentRepository(store.ContentRepository()),
		simplecms.WithContentModelRepository(store.ContentModelRepository()),
		simplecms.WithTagRepository(store.TagRepository()),
		simplecms.WithUserRepository(store.UserRepository()),
		simplecms.WithRoleRepository(store.RoleRepository()),
		simplecms.WithMediaStore(memorystorage.New()),
	)
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(service, RouterConfig{}))
	t.Cleanup(server.Close)
	return server, service
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// createTestUser provisions a user through the API using a seeded role.
func createTestUser(t *testing.T, baseURL, name string) *simplecms.User {
	t.Helper()
	resp := doJSON(t, http.MethodGet, baseURL+"/roles", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var roles []*simplecms.Role
	decodeInto(t, resp, &roles)
	require.NotEmpty(t, roles)

	resp = doJSON(t, http.MethodPost, baseURL+"/users", map[string]string{
		"name":     name,
		"icon_url": "https://example.com/" + name + ".png",
		"role_id":  roles[0].ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user simplecms.User
	decodeInto(t, resp, &user)
	return &user
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeInto(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCategoryEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	user := createTestUser(t, server.URL, "alice")

	t.Run("create echoes the category", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/categories", map[string]any{
			"name":           "news",
			"api_identifier": "news",
			"description":    "all the news",
			"created_by_id":  user.ID,
			"updated_by_id":  user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var category simplecms.Category
		decodeInto(t, resp, &category)
		assert.NotEmpty(t, category.ID)
		assert.Equal(t, "news", category.Name)
		assert.Equal(t, user.ID, category.CreatedBy.ID)
		require.NotNil(t, category.Description)
		assert.Equal(t, "all the news", *category.Description)
	})

	t.Run("create with invalid name is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/categories", map[string]any{
			"name":           strings.Repeat("x", 51),
			"api_identifier": "too-long",
			"created_by_id":  user.ID,
			"updated_by_id":  user.ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/categories", map[string]any{
			"name":           "blog",
			"api_identifier": "blog",
			"created_by_id":  user.ID,
			"updated_by_id":  user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created simplecms.Category
		decodeInto(t, resp, &created)

		resp = doJSON(t, http.MethodPut, server.URL+"/categories/"+created.ID, map[string]any{
			"name":          "weblog",
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated simplecms.Category
		decodeInto(t, resp, &updated)
		assert.Equal(t, "weblog", updated.Name)
		assert.Equal(t, "blog", updated.APIIdentifier)
	})

	t.Run("update of unknown id is a 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, server.URL+"/categories/0198a000-0000-7000-8000-000000000000", map[string]any{
			"name":          "ghost",
			"updated_by_id": user.ID,
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, server.URL+"/categories/not-a-uuid", map[string]any{
			"name":          "ghost",
			"updated_by_id": user.ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete then list", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/categories", map[string]any{
			"name":           "temp",
			"api_identifier": "temp",
			"created_by_id":  user.ID,
			"updated_by_id":  user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created simplecms.Category
		decodeInto(t, resp, &created)

		resp = doJSON(t, http.MethodDelete, server.URL+"/categories/"+created.ID, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, http.MethodDelete, server.URL+"/categories/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, server.URL+"/categories", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var categories []*simplecms.Category
		decodeInto(t, resp, &categories)
		for _, c := range categories {
			assert.NotEqual(t, created.ID, c.ID)
		}
	})
}

func TestContentEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	user := createTestUser(t, server.URL, "alice")

	resp := doJSON(t, http.MethodPost, server.URL+"/categories", map[string]any{
		"name":           "news",
		"api_identifier": "news",
		"created_by_id":  user.ID,
		"updated_by_id":  user.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category simplecms.Category
	decodeInto(t, resp, &category)

	var tagIDs []string
	for _, name := range []string{"go", "http"} {
		resp := doJSON(t, http.MethodPost, server.URL+"/tags", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var tag simplecms.Tag
		decodeInto(t, resp, &tag)
		tagIDs = append(tagIDs, tag.ID)
	}

	t.Run("create with fields and tags", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/contents", map[string]any{
			"title":       "first post",
			"category_id": category.ID,
			"fields": []map[string]any{
				{"field_type": "short_text", "value": "hello"},
			},
			"tag_ids":       tagIDs,
			"status":        "draft",
			"created_by_id": user.ID,
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var content simplecms.Content
		decodeInto(t, resp, &content)
		assert.Equal(t, "first post", content.Title)
		assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
		assert.Equal(t, category.ID, content.Category.ID)
		require.Len(t, content.Fields, 1)
		assert.Equal(t, simplecms.FieldTypeShortText, content.Fields[0].Type)
		require.Len(t, content.Tags, 2)
	})

	t.Run("missing status defaults to draft", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/contents", map[string]any{
			"title":         "statusless",
			"category_id":   category.ID,
			"created_by_id": user.ID,
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var content simplecms.Content
		decodeInto(t, resp, &content)
		assert.Equal(t, simplecms.ContentStatusDraft, content.Status)
	})

	t.Run("unknown status is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/contents", map[string]any{
			"title":         "bad status",
			"category_id":   category.ID,
			"status":        "archived",
			"created_by_id": user.ID,
			"updated_by_id": user.ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("update replaces the tag set", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/contents", map[string]any{
			"title":         "tagged",
			"category_id":   category.ID,
			"tag_ids":       tagIDs,
			"created_by_id": user.ID,
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created simplecms.Content
		decodeInto(t, resp, &created)
		require.Len(t, created.Tags, 2)

		resp = doJSON(t, http.MethodPut, server.URL+"/contents/"+created.ID, map[string]any{
			"tag_ids":       []string{tagIDs[1]},
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated simplecms.Content
		decodeInto(t, resp, &updated)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, tagIDs[1], updated.Tags[0].ID)
	})

	t.Run("publish transition", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/contents", map[string]any{
			"title":         "publish me",
			"category_id":   category.ID,
			"created_by_id": user.ID,
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created simplecms.Content
		decodeInto(t, resp, &created)
		assert.Nil(t, created.PublishedAt)

		resp = doJSON(t, http.MethodPut, server.URL+"/contents/"+created.ID, map[string]any{
			"status":        "published",
			"published_at":  "2026-08-01T09:00:00Z",
			"updated_by_id": user.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated simplecms.Content
		decodeInto(t, resp, &updated)
		assert.Equal(t, simplecms.ContentStatusPublished, updated.Status)
		require.NotNil(t, updated.PublishedAt)
		assert.Equal(t, "2026-08-01T09:00:00Z", updated.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
	})
}

func TestTagEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/tags", map[string]any{"name": "go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag simplecms.Tag
	decodeInto(t, resp, &tag)

	t.Run("empty update is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, server.URL+"/tags/"+tag.ID, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rename", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, server.URL+"/tags/"+tag.ID, map[string]any{"name": "golang"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated simplecms.Tag
		decodeInto(t, resp, &updated)
		assert.Equal(t, "golang", updated.Name)
	})
}

func TestUserEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	user := createTestUser(t, server.URL, "alice")

	t.Run("find", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/users/"+user.ID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var found simplecms.User
		decodeInto(t, resp, &found)
		assert.Equal(t, "alice", found.Name)
		assert.NotEmpty(t, found.Role.ID)
	})

	t.Run("create with relative icon url is a 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/roles", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var roles []*simplecms.Role
		decodeInto(t, resp, &roles)

		resp = doJSON(t, http.MethodPost, server.URL+"/users", map[string]any{
			"name":     "bob",
			"icon_url": "/icons/bob.png",
			"role_id":  roles[0].ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("roles are seeded", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/roles", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var roles []*simplecms.Role
		decodeInto(t, resp, &roles)
		require.Len(t, roles, 2)
		assert.Equal(t, "administrator", roles[0].Name)
		assert.True(t, roles[0].IsSuperAdministrator)
	})
}

func TestMediaEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/medias/buckets", map[string]any{"name": "media"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("upload and download", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, server.URL+"/medias/objects/posts/hero.png", strings.NewReader("fake image bytes"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "image/png")
		uploadResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer uploadResp.Body.Close()
		require.Equal(t, http.StatusCreated, uploadResp.StatusCode)

		downloadResp, err := http.Get(server.URL + "/medias/download/posts/hero.png")
		require.NoError(t, err)
		defer downloadResp.Body.Close()
		require.Equal(t, http.StatusOK, downloadResp.StatusCode)
		body, err := io.ReadAll(downloadResp.Body)
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(body))
	})

	t.Run("delete object", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, server.URL+"/medias/objects/tmp/x.bin", strings.NewReader("x"))
		require.NoError(t, err)
		uploadResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		uploadResp.Body.Close()
		require.Equal(t, http.StatusCreated, uploadResp.StatusCode)

		resp := doJSON(t, http.MethodDelete, server.URL+"/medias/objects/tmp/x.bin", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestAuthProtectedRoutes(t *testing.T) {
	store := memoryrepo.NewStore()
	service, err := simplecms.New(
		simplecms.WithCategoryRepository(store.CategoryRepository()),
		simplecms.WithContentRepository(store.ContentRepository()),
		simplecms.WithContentModelRepository(store.ContentModelRepository()),
		simplecms.WithTagRepository(store.TagRepository()),
		simplecms.WithUserRepository(store.UserRepository()),
		simplecms.WithRoleRepository(store.RoleRepository()),
	)
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(service, RouterConfig{JWTSecret: "test-secret"}))
	t.Cleanup(server.Close)

	t.Run("request without token is a 401", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/tags")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("issued token grants access", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/auth/token", map[string]any{"user_id": "u1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var token struct {
			Token string `json:"token"`
		}
		decodeInto(t, resp, &token)
		require.NotEmpty(t, token.Token)

		req, err := http.NewRequest(http.MethodGet, server.URL+"/tags", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.Token))
		authed, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer authed.Body.Close()
		assert.Equal(t, http.StatusOK, authed.StatusCode)
	})

	t.Run("token issuance requires a user id", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/auth/token", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("health stays open", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
