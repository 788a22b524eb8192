package handlers

import (
	"net/http"

	"collab-match-backend/internal/middleware"
	"collab-match-backend/internal/models"
	"collab-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService   *services.UserService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		avatarService: avatarService,
	}
}

// createUserRequest is the profile body; the id always comes from the caller's identity
type createUserRequest struct {
	ExternalID  string  `json:"external_id"`
	DisplayName string  `json:"display_name"`
	Bio         string  `json:"bio"`
	AvatarRef   string  `json:"avatar_ref"`
	PushToken   *string `json:"push_token"`
}

type createUserResponse struct {
	*models.User
	Token string `json:"token,omitempty"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(ctx, services.UserInput{
		ID:          userID,
		ExternalID:  req.ExternalID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarRef:   req.AvatarRef,
		PushToken:   req.PushToken,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to create user")
		return
	}

	resp := createUserResponse{User: user}
	if h.userService.TokensEnabled() {
		token, err := h.userService.GenerateJWT(user.ID)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		}
		resp.Token = token
	}

	log.Info().
		Str("user_id", user.ID).
		Msg("User created")

	respondJSON(w, http.StatusCreated, resp)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch services.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	user, err := h.userService.UpdateUser(ctx, middleware.GetUserID(ctx), patch)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type avatarRequest struct {
	ContentType string `json:"content_type"`
}

// UploadAvatar handles POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req avatarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ContentType == "" {
		respondError(w, "content_type is required", http.StatusBadRequest)
		return
	}

	upload, err := h.avatarService.PresignUpload(ctx, middleware.GetUserID(ctx), req.ContentType)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate upload URL")
		return
	}
	respondJSON(w, http.StatusOK, upload)
}
