package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/notify"
	"collab-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const notifyTimeout = 10 * time.Second

// MatchService detects mutual interest and manages the resulting matches
type MatchService struct {
	store    *repository.Store
	collab   *CollaborationService
	chat     *ChatService
	notifier notify.Notifier
	locks    *pairLocks
}

// NewMatchService creates a new match service. A nil notifier disables notifications.
func NewMatchService(
	store *repository.Store,
	collab *CollaborationService,
	chat *ChatService,
	notifier notify.Notifier,
) *MatchService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &MatchService{
		store:    store,
		collab:   collab,
		chat:     chat,
		notifier: notifier,
		locks:    newPairLocks(),
	}
}

// Resolve checks whether the owner of listingID has already swiped right on one of
// swiperID's listings and, if so, creates the match. It returns nil when no new
// match was created.
func (s *MatchService) Resolve(ctx context.Context, swiperID, listingID string) (*models.Match, error) {
	listing, err := s.store.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, notFound("listing", listingID)
	}
	ownerID := listing.OwnerID
	if ownerID == swiperID {
		return nil, ErrSelfInteraction
	}

	own := s.store.Listings.ListByOwner(ctx, swiperID)
	if len(own) == 0 {
		return nil, nil
	}

	// Candidates come out oldest first, so the earliest qualifying listing wins.
	latest := s.store.Swipes.LatestBySwiper(ctx, ownerID)
	for i := range own {
		swipe, ok := latest[own[i].ID]
		if !ok || swipe.Direction != models.SwipeRight {
			continue
		}

		match, err := s.createOnce(ctx, listing, &own[i])
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}
	return nil, nil
}

// createOnce creates the match for the pair unless one already exists
func (s *MatchService) createOnce(ctx context.Context, swiped, counterpart *models.Listing) (*models.Match, error) {
	unlock := s.locks.lock(swiped.ID, counterpart.ID)
	defer unlock()

	if _, err := s.store.Matches.FindByPair(ctx, swiped.ID, counterpart.ID); err == nil {
		return nil, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	match := &models.Match{
		ListingAID: swiped.ID,
		ListingBID: counterpart.ID,
		Status:     models.MatchActive,
	}
	if err := s.store.Matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	owner, err := s.store.Users.GetByID(ctx, swiped.OwnerID)
	if err != nil {
		return nil, notFound("user", swiped.OwnerID)
	}
	swiper, err := s.store.Users.GetByID(ctx, counterpart.OwnerID)
	if err != nil {
		return nil, notFound("user", counterpart.OwnerID)
	}

	notice := fmt.Sprintf("You matched with %s on %q!", owner.DisplayName, swiped.Title)
	if _, err := s.chat.postSystemMessage(ctx, match.ID, notice); err != nil {
		return nil, err
	}

	log.Info().
		Str("match_id", match.ID).
		Str("listing_a_id", match.ListingAID).
		Str("listing_b_id", match.ListingBID).
		Msg("Match created")

	s.notifyAsync(notify.MatchEvent{
		MatchID:   match.ID,
		CreatedAt: match.CreatedAt,
		Recipients: []notify.Recipient{
			{UserID: owner.ID, DisplayName: owner.DisplayName, ListingID: swiped.ID, ListingTitle: swiped.Title, PushToken: owner.PushToken},
			{UserID: swiper.ID, DisplayName: swiper.DisplayName, ListingID: counterpart.ID, ListingTitle: counterpart.Title, PushToken: swiper.PushToken},
		},
	})

	return match, nil
}

func (s *MatchService) notifyAsync(event notify.MatchEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.MatchCreated(ctx, event); err != nil {
			log.Error().Err(err).Str("match_id", event.MatchID).Msg("Failed to deliver match notification")
		}
	}()
}

// GetMatch returns a match the user takes part in, whatever its status
func (s *MatchService) GetMatch(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := s.collab.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	ok, err := s.collab.IsParticipant(ctx, match, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return match, nil
}

// ListMatchesForUser returns every match involving one of the user's listings
func (s *MatchService) ListMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	if !s.store.Users.Exists(ctx, userID) {
		return nil, notFound("user", userID)
	}
	own := s.store.Listings.ListByOwner(ctx, userID)
	ids := make([]string, 0, len(own))
	for _, l := range own {
		ids = append(ids, l.ID)
	}
	return s.store.Matches.ListByListings(ctx, ids), nil
}

// ArchiveMatch closes the collaboration; chat and tasks become unavailable
func (s *MatchService) ArchiveMatch(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if _, err := s.collab.RequireParticipant(ctx, matchID, userID); err != nil {
		return nil, err
	}
	match, err := s.store.Matches.UpdateStatus(ctx, matchID, models.MatchArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to archive match: %w", err)
	}
	log.Info().Str("match_id", matchID).Str("user_id", userID).Msg("Match archived")
	return match, nil
}

// ActiveMatch returns the match if it exists and is still active
func (s *MatchService) ActiveMatch(ctx context.Context, matchID string) (*models.Match, error) {
	return s.collab.ActiveMatch(ctx, matchID)
}

// ResolveCounterpart returns the other participant of the match
func (s *MatchService) ResolveCounterpart(ctx context.Context, matchID, userID string) (string, error) {
	return s.collab.ResolveCounterpart(ctx, matchID, userID)
}

// Participants returns the owners of both matched listings
func (s *MatchService) Participants(ctx context.Context, match *models.Match) (string, string, error) {
	return s.collab.Participants(ctx, match)
}
