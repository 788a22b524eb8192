package handlers

import (
	"net/http"
	"strconv"

	"collab-match-backend/internal/middleware"
	"collab-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MatchHandler handles matches and the chat and tasks scoped to them
type MatchHandler struct {
	matchService *services.MatchService
	chatService  *services.ChatService
	taskService  *services.TaskService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(
	matchService *services.MatchService,
	chatService *services.ChatService,
	taskService *services.TaskService,
) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		chatService:  chatService,
		taskService:  taskService,
	}
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matches, err := h.matchService.ListMatchesForUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list matches")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// GetMatch handles GET /api/v1/matches/{match_id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	match, err := h.matchService.GetMatch(ctx, chi.URLParam(r, "match_id"), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get match")
		return
	}
	counterpart, err := h.matchService.ResolveCounterpart(ctx, match.ID, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get match")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"match":          match,
		"counterpart_id": counterpart,
	})
}

// ArchiveMatch handles POST /api/v1/matches/{match_id}/archive
func (h *MatchHandler) ArchiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	match, err := h.matchService.ArchiveMatch(ctx, chi.URLParam(r, "match_id"), middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to archive match")
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// ListMessages handles GET /api/v1/matches/{match_id}/messages
func (h *MatchHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := chi.URLParam(r, "match_id")

	if _, err := h.matchService.GetMatch(ctx, matchID, middleware.GetUserID(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to list messages")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	messages, err := h.chatService.ListMessages(ctx, matchID, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// PostMessage handles POST /api/v1/matches/{match_id}/messages
func (h *MatchHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req postMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.chatService.PostMessage(ctx, chi.URLParam(r, "match_id"), userID, req.Content)
	if err != nil {
		respondServiceError(w, r, err, "Failed to post message")
		return
	}

	log.Debug().
		Str("match_id", msg.MatchID).
		Str("sender_id", userID).
		Msg("Message posted")

	respondJSON(w, http.StatusCreated, msg)
}

// ListTasks handles GET /api/v1/matches/{match_id}/tasks
func (h *MatchHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := chi.URLParam(r, "match_id")

	if _, err := h.matchService.GetMatch(ctx, matchID, middleware.GetUserID(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to list tasks")
		return
	}

	tasks, err := h.taskService.ListTasks(ctx, matchID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list tasks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// CreateTask handles POST /api/v1/matches/{match_id}/tasks
func (h *MatchHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := chi.URLParam(r, "match_id")

	var in services.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if _, err := h.matchService.GetMatch(ctx, matchID, middleware.GetUserID(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to create task")
		return
	}

	task, err := h.taskService.CreateTask(ctx, matchID, in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}
