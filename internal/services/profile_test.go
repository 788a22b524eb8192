package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, UserInput{ID: "fc-42", ExternalID: "farcaster:42", DisplayName: " Dana "})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != "fc-42" || u.DisplayName != "Dana" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := f.users.CreateUser(ctx, UserInput{ID: "fc-42", DisplayName: "Again"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate id, got %v", err)
	}
	if _, err := f.users.CreateUser(ctx, UserInput{ExternalID: "farcaster:42", DisplayName: "Twin"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate external id, got %v", err)
	}
	if _, err := f.users.CreateUser(ctx, UserInput{DisplayName: "Long", Bio: strings.Repeat("b", 201)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long bio, got %v", err)
	}
	if _, err := f.users.CreateUser(ctx, UserInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}

	generated, err := f.users.CreateUser(ctx, UserInput{DisplayName: "Anon"})
	if err != nil || !strings.HasPrefix(generated.ID, "user_") {
		t.Fatalf("expected generated id, got %+v, %v", generated, err)
	}

	found, err := f.users.GetUserByExternalID(ctx, "farcaster:42")
	if err != nil || found.ID != "fc-42" {
		t.Fatalf("GetUserByExternalID = %+v, %v", found, err)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice", "Alice")

	u, err := f.users.UpdateUser(ctx, "alice", UserPatch{Bio: strPtr("Designer"), PushToken: strPtr("device-1")})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Bio != "Designer" || u.PushToken == nil || *u.PushToken != "device-1" || u.DisplayName != "Alice" {
		t.Fatalf("unexpected user %+v", u)
	}

	u, _ = f.users.UpdateUser(ctx, "alice", UserPatch{PushToken: strPtr("")})
	if u.PushToken != nil {
		t.Fatal("empty push token should clear it")
	}

	if _, err := f.users.UpdateUser(ctx, "ghost", UserPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.users.UpdateUser(ctx, "alice", UserPatch{DisplayName: strPtr("  ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	f := newFixture(t)

	token, err := f.users.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	userID, err := f.users.ValidateJWT(token)
	if err != nil || userID != "alice" {
		t.Fatalf("ValidateJWT = %q, %v", userID, err)
	}

	other := NewUserService(f.store.Users, "other-secret", DefaultLimits())
	if _, err := other.ValidateJWT(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}

	disabled := NewUserService(f.store.Users, "", DefaultLimits())
	if _, err := disabled.GenerateJWT("alice"); err == nil {
		t.Fatal("expected error without a secret")
	}
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "Bob")

	l, err := f.listings.CreateListing(ctx, "alice", ListingInput{
		Title:  " Recipe App ",
		Skills: []string{"Design", " design ", "", "Go"},
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if l.Title != "Recipe App" || l.Status != models.ListingActive || len(l.Skills) != 2 {
		t.Fatalf("unexpected listing %+v", l)
	}

	owner, _ := f.users.GetUser(ctx, "alice")
	if len(owner.ListingIDs) != 1 || owner.ListingIDs[0] != l.ID {
		t.Fatalf("owner should reference the listing, got %+v", owner.ListingIDs)
	}

	if _, err := f.listings.CreateListing(ctx, "ghost", ListingInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.listings.CreateListing(ctx, "alice", ListingInput{Title: strings.Repeat("t", 101)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := f.listings.UpdateListing(ctx, l.ID, "bob", ListingPatch{Title: strPtr("Hijack")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	paused := models.ListingPaused
	updated, err := f.listings.UpdateListing(ctx, l.ID, "alice", ListingPatch{Status: &paused, Vision: strPtr("Cook more")})
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if updated.Status != models.ListingPaused || updated.Vision != "Cook more" || updated.Title != "Recipe App" {
		t.Fatalf("unexpected listing %+v", updated)
	}
	bad := models.ListingStatus("deleted")
	if _, err := f.listings.UpdateListing(ctx, l.ID, "alice", ListingPatch{Status: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "Bob")
	f.user(t, "carol", "Carol")
	f.listing(t, "alice", "Mine")
	seen := f.listing(t, "bob", "Seen")
	fresh := f.listing(t, "carol", "Fresh")
	paused := f.listing(t, "carol", "Paused")

	status := models.ListingPaused
	if _, err := f.listings.UpdateListing(ctx, paused.ID, "carol", ListingPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	f.swipe(t, "alice", seen.ID, models.SwipeLeft)

	feed, err := f.listings.Discover(ctx, "alice")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != fresh.ID {
		t.Fatalf("unexpected feed %+v", feed)
	}
}

func TestSeed(t *testing.T) {
	store := repository.NewStore(nil)
	ctx := context.Background()

	if err := Seed(ctx, store); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, store); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	stats := store.Stats()
	if stats.Users != 3 || stats.Listings != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	u, err := store.Users.GetByID(ctx, "user1")
	if err != nil || u.DisplayName != "Alex Chen" || len(u.ListingIDs) != 1 {
		t.Fatalf("unexpected seeded user %+v, %v", u, err)
	}
}

type fakePresigner struct {
	input *s3.PutObjectInput
	err   error
}

func (p *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.input = in
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.example.com/" + *in.Key + "?sig=1",
		Method: http.MethodPut,
	}, nil
}

func TestAvatarService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice", "Alice")

	presigner := &fakePresigner{}
	avatars := NewAvatarServiceWithPresigner(f.store.Users, presigner, "bucket", "https://cdn.example.com/")

	upload, err := avatars.PresignUpload(ctx, "alice", "image/png")
	if err != nil {
		t.Fatalf("PresignUpload: %v", err)
	}
	key := *presigner.input.Key
	if !strings.HasPrefix(key, "avatars/alice/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}
	if upload.AvatarRef != "https://cdn.example.com/"+key || upload.ExpiresIn != 300 {
		t.Fatalf("unexpected upload %+v", upload)
	}
	u, _ := f.users.GetUser(ctx, "alice")
	if u.AvatarRef != upload.AvatarRef {
		t.Fatalf("avatar not recorded, got %q", u.AvatarRef)
	}

	if _, err := avatars.PresignUpload(ctx, "alice", "application/pdf"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := avatars.PresignUpload(ctx, "ghost", "image/png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	disabled, err := NewAvatarService(ctx, f.store.Users, S3Options{})
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	if _, err := disabled.PresignUpload(ctx, "alice", "image/png"); !errors.Is(err, ErrUploadsDisabled) {
		t.Fatalf("expected ErrUploadsDisabled, got %v", err)
	}
}
