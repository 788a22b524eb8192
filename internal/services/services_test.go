package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/notify"
	"collab-match-backend/internal/repository"
)

// recordingNotifier captures match events delivered on the notifier goroutine
type recordingNotifier struct {
	events chan notify.MatchEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan notify.MatchEvent, 64)}
}

func (r *recordingNotifier) MatchCreated(_ context.Context, event notify.MatchEvent) error {
	r.events <- event
	return nil
}

func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type fixture struct {
	store    *repository.Store
	collab   *CollaborationService
	chat     *ChatService
	matches  *MatchService
	swipes   *SwipeService
	tasks    *TaskService
	users    *UserService
	listings *ListingService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := tickingClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	store := repository.NewStore(clock)
	limits := DefaultLimits()

	collab := NewCollaborationService(store)
	chat := NewChatService(store, collab, limits)
	chat.Now = clock
	notifier := newRecordingNotifier()
	matches := NewMatchService(store, collab, chat, notifier)

	return &fixture{
		store:    store,
		collab:   collab,
		chat:     chat,
		matches:  matches,
		swipes:   NewSwipeService(store, matches),
		tasks:    NewTaskService(store, collab, limits),
		users:    NewUserService(store.Users, "test-secret", limits),
		listings: NewListingService(store, limits),
		notifier: notifier,
	}
}

func (f *fixture) user(t *testing.T, id, name string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), UserInput{ID: id, DisplayName: name})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", id, err)
	}
	return u
}

func (f *fixture) listing(t *testing.T, ownerID, title string) *models.Listing {
	t.Helper()
	l, err := f.listings.CreateListing(context.Background(), ownerID, ListingInput{Title: title})
	if err != nil {
		t.Fatalf("CreateListing(%s): %v", title, err)
	}
	return l
}

func (f *fixture) swipe(t *testing.T, swiperID, listingID string, dir models.SwipeDirection) *SwipeResult {
	t.Helper()
	res, err := f.swipes.RecordSwipe(context.Background(), swiperID, listingID, dir)
	if err != nil {
		t.Fatalf("RecordSwipe(%s -> %s): %v", swiperID, listingID, err)
	}
	return res
}

// matched builds two users with one listing each and a match between them
func (f *fixture) matched(t *testing.T) (*models.Match, *models.Listing, *models.Listing) {
	t.Helper()
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "Bob")
	l1 := f.listing(t, "alice", "Recipe App")
	l2 := f.listing(t, "bob", "Garden Network")

	f.swipe(t, "alice", l2.ID, models.SwipeRight)
	res := f.swipe(t, "bob", l1.ID, models.SwipeRight)
	if res.Match == nil {
		t.Fatal("expected a match")
	}
	return res.Match, l1, l2
}

func strPtr(s string) *string { return &s }
