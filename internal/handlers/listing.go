package handlers

import (
	"net/http"

	"collab-match-backend/internal/middleware"
	"collab-match-backend/internal/models"
	"collab-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListingHandler handles listing and swipe HTTP requests
type ListingHandler struct {
	listingService *services.ListingService
	swipeService   *services.SwipeService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *services.ListingService, swipeService *services.SwipeService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		swipeService:   swipeService,
	}
}

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in services.ListingInput
	if !decodeJSON(w, r, &in) {
		return
	}

	listing, err := h.listingService.CreateListing(ctx, middleware.GetUserID(ctx), in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create listing")
		return
	}
	respondJSON(w, http.StatusCreated, listing)
}

// Discover handles GET /api/v1/listings
func (h *ListingHandler) Discover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := h.listingService.Discover(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load listings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

// Mine handles GET /api/v1/listings/mine
func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := h.listingService.ListByOwner(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load listings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

// GetListing handles GET /api/v1/listings/{listing_id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingService.GetListing(r.Context(), chi.URLParam(r, "listing_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get listing")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// UpdateListing handles PATCH /api/v1/listings/{listing_id}
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch services.ListingPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	listing, err := h.listingService.UpdateListing(ctx, chi.URLParam(r, "listing_id"), middleware.GetUserID(ctx), patch)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update listing")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

type swipeRequest struct {
	ListingID string                `json:"listing_id"`
	Direction models.SwipeDirection `json:"direction"`
}

// Swipe handles POST /api/v1/swipes
func (h *ListingHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req swipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ListingID == "" {
		respondError(w, "listing_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.swipeService.RecordSwipe(ctx, middleware.GetUserID(ctx), req.ListingID, req.Direction)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record swipe")
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
