package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"collab-match-backend/internal/models"
)

func TestPostMessage_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _, _ := f.matched(t)
	f.user(t, "carol", "Carol")

	tests := []struct {
		name    string
		match   string
		sender  string
		content string
		want    error
	}{
		{name: "empty", match: m.ID, sender: "alice", content: "", want: ErrEmptyContent},
		{name: "whitespace", match: m.ID, sender: "alice", content: " \n\t ", want: ErrEmptyContent},
		{name: "too long", match: m.ID, sender: "alice", content: strings.Repeat("x", 2001), want: ErrInvalidInput},
		{name: "outsider", match: m.ID, sender: "carol", content: "hello", want: ErrNotParticipant},
		{name: "unknown match", match: "nope", sender: "alice", content: "hello", want: ErrMatchNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.chat.PostMessage(ctx, tc.match, tc.sender, tc.content); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	msg, err := f.chat.PostMessage(ctx, m.ID, "bob", "  trimmed  ")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if msg.Content != "trimmed" || msg.Kind != models.MessageText {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestListMessages_TimestampsNeverGoBackwards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _, _ := f.matched(t)

	// a clock that jumps backwards on every other call
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	f.chat.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls%2 == 0 {
			return base.Add(-time.Hour)
		}
		return base.Add(time.Duration(calls) * time.Second)
	}

	posted := map[string]bool{}
	for i := 0; i < 20; i++ {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		msg, err := f.chat.PostMessage(ctx, m.ID, sender, strings.Repeat("m", i+1))
		if err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
		posted[msg.ID] = true
	}

	msgs, err := f.chat.ListMessages(ctx, m.ID, 100)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("message %d is older than message %d", i, i-1)
		}
	}
	for _, msg := range msgs[1:] {
		if !posted[msg.ID] {
			t.Fatalf("listed message %s was never posted", msg.ID)
		}
	}
}

func TestListMessages_LimitReturnsMostRecent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _, _ := f.matched(t)

	for i := 0; i < 5; i++ {
		if _, err := f.chat.PostMessage(ctx, m.ID, "alice", string(rune('a'+i))); err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
	}

	msgs, err := f.chat.ListMessages(ctx, m.ID, 2)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "d" || msgs[1].Content != "e" {
		t.Fatalf("expected the last two messages, got %+v", msgs)
	}

	all, _ := f.chat.ListMessages(ctx, m.ID, 0)
	if len(all) != 6 {
		t.Fatalf("default limit should return all 6 messages, got %d", len(all))
	}
}

func TestListMessages_ConcurrentPostsKeepOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, _, _ := f.matched(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := "alice"
			if i%2 == 0 {
				sender = "bob"
			}
			if _, err := f.chat.PostMessage(ctx, m.ID, sender, "ping"); err != nil {
				t.Errorf("PostMessage: %v", err)
			}
		}(i)
	}
	wg.Wait()

	msgs, err := f.chat.ListMessages(ctx, m.ID, 200)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 51 {
		t.Fatalf("expected 51 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("out of order at %d", i)
		}
	}
}
