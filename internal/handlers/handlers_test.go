package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/notify"
	"collab-match-backend/internal/repository"
	"collab-match-backend/internal/services"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	store := repository.NewStore(nil)
	limits := services.DefaultLimits()
	collab := services.NewCollaborationService(store)
	chat := services.NewChatService(store, collab, limits)
	matches := services.NewMatchService(store, collab, chat, notify.Nop{})
	tasks := services.NewTaskService(store, collab, limits)
	users := services.NewUserService(store.Users, "", limits)
	avatars, err := services.NewAvatarService(context.Background(), store.Users, services.S3Options{})
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}

	rt := Router{
		Users:          NewUserHandler(users, avatars),
		Listings:       NewListingHandler(services.NewListingService(store, limits), services.NewSwipeService(store, matches)),
		Matches:        NewMatchHandler(matches, chat, tasks),
		Tasks:          NewTaskHandler(tasks, matches),
		System:         NewSystemHandler(store),
		Auth:           users,
		AllowedOrigins: []string{"*"},
	}

	server := httptest.NewServer(rt.Handler())
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

// do sends a request as userID and decodes the JSON response into out when non-nil
func (c *apiClient) do(method, path, userID string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *apiClient) mustDo(method, path, userID string, body any, out any, want int) {
	c.t.Helper()
	if got := c.do(method, path, userID, body, out); got != want {
		c.t.Fatalf("%s %s as %q: status %d, want %d", method, path, userID, got, want)
	}
}

func TestHealthIsPublic(t *testing.T) {
	api := newAPI(t)
	var body map[string]any
	api.mustDo(http.MethodGet, "/health", "", nil, &body, http.StatusOK)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestAPIRequiresIdentity(t *testing.T) {
	api := newAPI(t)
	var body ErrorResponse
	api.mustDo(http.MethodGet, "/api/v1/matches", "", nil, &body, http.StatusUnauthorized)
	if body.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestCollaborationFlow(t *testing.T) {
	api := newAPI(t)

	api.mustDo(http.MethodPost, "/api/v1/users", "alice", map[string]string{"display_name": "Alice"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/users", "bob", map[string]string{"display_name": "Bob"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/users", "carol", map[string]string{"display_name": "Carol"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/users", "alice", map[string]string{"display_name": "Again"}, nil, http.StatusConflict)

	var l1, l2 models.Listing
	api.mustDo(http.MethodPost, "/api/v1/listings", "alice", map[string]any{"title": "Recipe App"}, &l1, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/listings", "bob", map[string]any{"title": "Garden Network"}, &l2, http.StatusCreated)

	var feed struct {
		Listings []models.Listing `json:"listings"`
	}
	api.mustDo(http.MethodGet, "/api/v1/listings", "alice", nil, &feed, http.StatusOK)
	if len(feed.Listings) != 1 || feed.Listings[0].ID != l2.ID {
		t.Fatalf("unexpected feed %+v", feed.Listings)
	}

	api.mustDo(http.MethodPost, "/api/v1/swipes", "alice", map[string]string{"listing_id": l1.ID, "direction": "right"}, nil, http.StatusUnprocessableEntity)

	var first services.SwipeResult
	api.mustDo(http.MethodPost, "/api/v1/swipes", "alice", map[string]string{"listing_id": l2.ID, "direction": "right"}, &first, http.StatusCreated)
	if first.Match != nil {
		t.Fatal("no match expected yet")
	}
	var second services.SwipeResult
	api.mustDo(http.MethodPost, "/api/v1/swipes", "bob", map[string]string{"listing_id": l1.ID, "direction": "right"}, &second, http.StatusCreated)
	if second.Match == nil {
		t.Fatal("expected match")
	}
	matchPath := "/api/v1/matches/" + second.Match.ID

	var matchList struct {
		Matches []models.Match `json:"matches"`
	}
	api.mustDo(http.MethodGet, "/api/v1/matches", "alice", nil, &matchList, http.StatusOK)
	if len(matchList.Matches) != 1 {
		t.Fatalf("expected 1 match, got %+v", matchList.Matches)
	}

	var detail struct {
		CounterpartID string `json:"counterpart_id"`
	}
	api.mustDo(http.MethodGet, matchPath, "alice", nil, &detail, http.StatusOK)
	if detail.CounterpartID != "bob" {
		t.Fatalf("counterpart = %q", detail.CounterpartID)
	}
	api.mustDo(http.MethodGet, matchPath, "carol", nil, nil, http.StatusForbidden)

	api.mustDo(http.MethodPost, matchPath+"/messages", "alice", map[string]string{"content": "Hi!"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, matchPath+"/messages", "alice", map[string]string{"content": "   "}, nil, http.StatusUnprocessableEntity)
	api.mustDo(http.MethodPost, matchPath+"/messages", "carol", map[string]string{"content": "let me in"}, nil, http.StatusForbidden)

	var thread struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	api.mustDo(http.MethodGet, matchPath+"/messages?limit=10", "bob", nil, &thread, http.StatusOK)
	if len(thread.Messages) != 2 || thread.Messages[0].Kind != models.MessageSystem || thread.Messages[1].Content != "Hi!" {
		t.Fatalf("unexpected thread %+v", thread.Messages)
	}

	var task models.Task
	api.mustDo(http.MethodPost, matchPath+"/tasks", "alice", map[string]any{"title": "Design mockup", "assigned_to": "bob"}, &task, http.StatusCreated)
	api.mustDo(http.MethodPost, matchPath+"/tasks", "alice", map[string]any{"title": "Nope", "assigned_to": "carol"}, nil, http.StatusUnprocessableEntity)

	var updated models.Task
	api.mustDo(http.MethodPatch, "/api/v1/tasks/"+task.ID, "bob", map[string]any{"status": "completed"}, &updated, http.StatusOK)
	if updated.Status != models.TaskCompleted {
		t.Fatalf("unexpected task %+v", updated)
	}
	api.mustDo(http.MethodPatch, "/api/v1/tasks/"+task.ID, "carol", map[string]any{"status": "pending"}, nil, http.StatusForbidden)

	api.mustDo(http.MethodDelete, "/api/v1/tasks/"+task.ID, "alice", nil, nil, http.StatusNoContent)
	api.mustDo(http.MethodDelete, "/api/v1/tasks/"+task.ID, "alice", nil, nil, http.StatusNotFound)

	var stats repository.Stats
	api.mustDo(http.MethodGet, "/api/v1/stats", "alice", nil, &stats, http.StatusOK)
	if stats.Matches != 1 || stats.Messages != 2 || stats.Users != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	api.mustDo(http.MethodPost, matchPath+"/archive", "bob", nil, nil, http.StatusOK)
	api.mustDo(http.MethodPost, matchPath+"/messages", "alice", map[string]string{"content": "hello?"}, nil, http.StatusGone)
	api.mustDo(http.MethodGet, matchPath+"/tasks", "alice", nil, nil, http.StatusGone)
}

func TestListingOwnership(t *testing.T) {
	api := newAPI(t)
	api.mustDo(http.MethodPost, "/api/v1/users", "alice", map[string]string{"display_name": "Alice"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/users", "bob", map[string]string{"display_name": "Bob"}, nil, http.StatusCreated)

	var l models.Listing
	api.mustDo(http.MethodPost, "/api/v1/listings", "alice", map[string]any{"title": "Recipe App"}, &l, http.StatusCreated)

	api.mustDo(http.MethodPatch, "/api/v1/listings/"+l.ID, "bob", map[string]any{"title": "Mine now"}, nil, http.StatusForbidden)
	api.mustDo(http.MethodPatch, "/api/v1/listings/"+l.ID, "alice", map[string]any{"status": "paused"}, nil, http.StatusOK)
	api.mustDo(http.MethodGet, "/api/v1/listings/missing", "alice", nil, nil, http.StatusNotFound)

	var mine struct {
		Listings []models.Listing `json:"listings"`
	}
	api.mustDo(http.MethodGet, "/api/v1/listings/mine", "alice", nil, &mine, http.StatusOK)
	if len(mine.Listings) != 1 || mine.Listings[0].Status != models.ListingPaused {
		t.Fatalf("unexpected listings %+v", mine.Listings)
	}
}

func TestAvatarUploadDisabled(t *testing.T) {
	api := newAPI(t)
	api.mustDo(http.MethodPost, "/api/v1/users", "alice", map[string]string{"display_name": "Alice"}, nil, http.StatusCreated)
	api.mustDo(http.MethodPost, "/api/v1/users/me/avatar", "alice", map[string]string{"content_type": "image/png"}, nil, http.StatusServiceUnavailable)
	api.mustDo(http.MethodPost, "/api/v1/users/me/avatar", "alice", map[string]string{}, nil, http.StatusBadRequest)
}

func TestInvalidBody(t *testing.T) {
	api := newAPI(t)
	req, _ := http.NewRequest(http.MethodPost, api.server.URL+"/api/v1/listings", bytes.NewBufferString("{"))
	req.Header.Set("X-User-ID", "alice")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
