package repository

import (
	"context"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
)

// MessageRepository handles storage operations for chat messages
type MessageRepository struct {
	items *Collection[models.ChatMessage]
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(ids *IDGenerator, now func() time.Time) *MessageRepository {
	return &MessageRepository{items: newCollection(schema[models.ChatMessage]{
		prefix: "msg",
		id:     func(m *models.ChatMessage) *string { return &m.ID },
		stamp: func(m *models.ChatMessage, t time.Time) {
			if m.Timestamp.IsZero() {
				m.Timestamp = t
			}
		},
	}, ids, now)}
}

// Create appends a chat message
func (r *MessageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	created, err := r.items.Create(*msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	*msg = created
	return nil
}

// ListByMatch returns every message of a match in insertion order
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) []models.ChatMessage {
	return r.items.Query(func(m *models.ChatMessage) bool { return m.MatchID == matchID })
}
