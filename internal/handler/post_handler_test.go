package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func createPostOverHTTP(t *testing.T, engine *gin.Engine, admin *http.Cookie, title string) uint {
	t.Helper()

	w := doJSON(t, engine, http.MethodPost, "/admin/posts", gin.H{
		"title":   title,
		"content": "Body of " + title,
	}, admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post %q: status %d, body %s", title, w.Code, w.Body.String())
	}

	var resp struct {
		Post struct {
			ID uint `json:"id"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Post.ID
}

func TestPublicListingHidesDrafts(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	visibleID := createPostOverHTTP(t, engine, admin, "Visible Post")
	createPostOverHTTP(t, engine, admin, "Hidden Draft")

	publish := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/admin/posts/%d/publish", visibleID), nil, admin)
	if publish.Code != http.StatusOK {
		t.Fatalf("publish: status %d, body %s", publish.Code, publish.Body.String())
	}

	list := doJSON(t, engine, http.MethodGet, "/posts", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list: status %d", list.Code)
	}
	if strings.Contains(list.Body.String(), "Hidden Draft") {
		t.Fatalf("draft leaked into public listing: %s", list.Body.String())
	}
	if !strings.Contains(list.Body.String(), "Visible Post") {
		t.Fatalf("published post missing from listing: %s", list.Body.String())
	}

	detail := doJSON(t, engine, http.MethodGet, "/posts/visible-post", nil)
	if detail.Code != http.StatusOK {
		t.Fatalf("detail: status %d, body %s", detail.Code, detail.Body.String())
	}
	var detailResp struct {
		Post struct {
			Content string `json:"content"`
		} `json:"post"`
	}
	if err := json.Unmarshal(detail.Body.Bytes(), &detailResp); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detailResp.Post.Content != "<p>Body of Visible Post</p>" {
		t.Fatalf("expected normalized content, got %q", detailResp.Post.Content)
	}

	missing := doJSON(t, engine, http.MethodGet, "/posts/hidden-draft", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft slug, got %d", missing.Code)
	}
}

func TestUnpublishKeepsPublishedAt(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	id := createPostOverHTTP(t, engine, admin, "Cycled Post")

	if w := doJSON(t, engine, http.MethodPut, fmt.Sprintf("/admin/posts/%d/publish", id), nil, admin); w.Code != http.StatusOK {
		t.Fatalf("publish: status %d", w.Code)
	}

	w := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/admin/posts/%d/publish", id), nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("unpublish: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Post struct {
			Published   bool    `json:"published"`
			PublishedAt *string `json:"publishedAt"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Post.Published {
		t.Fatal("expected post to be unpublished")
	}
	if resp.Post.PublishedAt == nil {
		t.Fatal("expected original publication timestamp to survive unpublish")
	}
}

func TestCreatePostConflictsOnSlug(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	createPostOverHTTP(t, engine, admin, "Unique Title")

	w := doJSON(t, engine, http.MethodPost, "/admin/posts", gin.H{"title": "Unique Title"}, admin)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "SLUG_TAKEN") {
		t.Fatalf("expected SLUG_TAKEN code, got %s", w.Body.String())
	}
}

func TestReorderEndpointValidatesPayload(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	first := createPostOverHTTP(t, engine, admin, "Alpha")
	second := createPostOverHTTP(t, engine, admin, "Beta")

	empty := doJSON(t, engine, http.MethodPut, "/admin/posts/reorder", gin.H{"postOrders": []any{}}, admin)
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", empty.Code)
	}

	unknown := doJSON(t, engine, http.MethodPut, "/admin/posts/reorder", gin.H{
		"postOrders": []gin.H{{"id": first, "order": 1}, {"id": 9999, "order": 0}},
	}, admin)
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d %s", unknown.Code, unknown.Body.String())
	}

	valid := doJSON(t, engine, http.MethodPut, "/admin/posts/reorder", gin.H{
		"postOrders": []gin.H{{"id": first, "order": 1}, {"id": second, "order": 0}},
	}, admin)
	if valid.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", valid.Code, valid.Body.String())
	}
}

func TestDeletePostOverHTTP(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	id := createPostOverHTTP(t, engine, admin, "Doomed Post")

	w := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/admin/posts/%d", id), nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}

	again := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/admin/posts/%d", id), nil, admin)
	if again.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", again.Code)
	}
}

func TestPostContentIsSanitized(t *testing.T) {
	engine, _ := setupAPITest(t)
	admin := registerTestUser(t, engine, "admin@example.com")

	w := doJSON(t, engine, http.MethodPost, "/admin/posts", gin.H{
		"title":   "Scripted",
		"content": "<p>hello <script>alert(1)</script>world</p>",
	}, admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Post struct {
			Content string `json:"content"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.Contains(resp.Post.Content, "script") || strings.Contains(resp.Post.Content, "alert") {
		t.Fatalf("expected script content to be stripped, got %q", resp.Post.Content)
	}
	if !strings.Contains(resp.Post.Content, "hello") {
		t.Fatalf("expected surviving text, got %q", resp.Post.Content)
	}
}
