package notify

import (
	"context"
	"errors"
	"time"
)

// Recipient is one side of a new match
type Recipient struct {
	UserID       string  `json:"user_id"`
	DisplayName  string  `json:"display_name"`
	ListingID    string  `json:"listing_id"`
	ListingTitle string  `json:"listing_title"`
	PushToken    *string `json:"-"`
}

// MatchEvent describes a newly created match
type MatchEvent struct {
	MatchID    string      `json:"match_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Recipients []Recipient `json:"recipients"`
}

// Notifier delivers match events outside the process
type Notifier interface {
	MatchCreated(ctx context.Context, event MatchEvent) error
}

// Nop drops every event
type Nop struct{}

func (Nop) MatchCreated(context.Context, MatchEvent) error { return nil }

// Multi fans an event out to several notifiers and joins their errors
type Multi []Notifier

func (m Multi) MatchCreated(ctx context.Context, event MatchEvent) error {
	var result error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.MatchCreated(ctx, event); err != nil {
			result = errors.Join(result, err)
		}
	}
	return result
}
