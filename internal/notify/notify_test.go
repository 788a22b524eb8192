package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sideshow/apns2"
)

type fakePusher struct {
	sent   []*apns2.Notification
	status int
	err    error
}

func (f *fakePusher) PushWithContext(_ apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, n)
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &apns2.Response{StatusCode: status, ApnsID: "apns-1"}, nil
}

func strPtr(s string) *string { return &s }

func sampleEvent() MatchEvent {
	return MatchEvent{
		MatchID:   "match-1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Recipients: []Recipient{
			{UserID: "alice", DisplayName: "Alice", ListingID: "l1", ListingTitle: "Recipe App", PushToken: strPtr("token-a")},
			{UserID: "bob", DisplayName: "Bob", ListingID: "l2", ListingTitle: "Garden Network"},
		},
	}
}

func TestAPNs_SkipsRecipientsWithoutToken(t *testing.T) {
	pusher := &fakePusher{}
	n := NewAPNsWithClient(pusher, "com.example.collab")

	if err := n.MatchCreated(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("MatchCreated returned error: %v", err)
	}
	if len(pusher.sent) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pusher.sent))
	}
	got := pusher.sent[0]
	if got.DeviceToken != "token-a" || got.Topic != "com.example.collab" {
		t.Fatalf("unexpected notification: %+v", got)
	}

	body, err := json.Marshal(got.Payload)
	if err != nil {
		t.Fatalf("payload not serializable: %v", err)
	}
	if !json.Valid(body) {
		t.Fatalf("invalid payload JSON: %s", body)
	}
}

func TestAPNs_ReportsRejectedPush(t *testing.T) {
	pusher := &fakePusher{status: http.StatusBadRequest}
	n := NewAPNsWithClient(pusher, "topic")

	if err := n.MatchCreated(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error for rejected push")
	}
}

func TestJetStream_PublishesEnvelope(t *testing.T) {
	var gotSubject string
	var gotPayload []byte

	n := NewJetStream(func(_ context.Context, subject string, payload []byte) error {
		gotSubject = subject
		gotPayload = payload
		return nil
	}, "collab")
	n.NewID = func() string { return "evt-1" }
	n.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC) }

	if err := n.MatchCreated(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("MatchCreated returned error: %v", err)
	}
	if gotSubject != "collab.match.created" {
		t.Fatalf("unexpected subject %q", gotSubject)
	}

	var env envelope
	if err := json.Unmarshal(gotPayload, &env); err != nil {
		t.Fatalf("payload invalid JSON: %v", err)
	}
	if env.EventID != "evt-1" || env.EventType != "match.created" || env.Match.MatchID != "match-1" || len(env.Match.Recipients) != 2 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := NewJetStream(func(context.Context, string, []byte) error { return boom }, "")
	pusher := &fakePusher{}

	err := Multi{Nop{}, NewAPNsWithClient(pusher, "topic"), failing}.MatchCreated(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
	if len(pusher.sent) != 1 {
		t.Fatalf("expected other notifiers to still run, got %d pushes", len(pusher.sent))
	}
}
