package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"
)

// ChatService appends and reads the chat thread of a match
type ChatService struct {
	store  *repository.Store
	collab *CollaborationService
	limits Limits

	// Now is the message clock
	Now func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewChatService creates a new chat service
func NewChatService(store *repository.Store, collab *CollaborationService, limits Limits) *ChatService {
	return &ChatService{
		store:  store,
		collab: collab,
		limits: limits.withDefaults(),
		Now:    func() time.Time { return time.Now().UTC() },
		last:   make(map[string]time.Time),
	}
}

// PostMessage adds a text message from senderID to an active match
func (s *ChatService) PostMessage(ctx context.Context, matchID, senderID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.limits.MessageMax {
		return nil, invalidf("message longer than %d characters", s.limits.MessageMax)
	}

	if _, err := s.collab.RequireParticipant(ctx, matchID, senderID); err != nil {
		return nil, err
	}

	return s.append(ctx, matchID, senderID, content, models.MessageText)
}

// ListMessages returns the most recent limit messages of an active match, oldest first.
// limit <= 0 selects the default page size.
func (s *ChatService) ListMessages(ctx context.Context, matchID string, limit int) ([]models.ChatMessage, error) {
	if _, err := s.collab.ActiveMatch(ctx, matchID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.limits.ChatDefaultLimit
	}
	if limit > s.limits.ChatMaxLimit {
		limit = s.limits.ChatMaxLimit
	}

	messages := s.store.Messages.ListByMatch(ctx, matchID)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// postSystemMessage adds a server-generated notice to a match thread
func (s *ChatService) postSystemMessage(ctx context.Context, matchID, content string) (*models.ChatMessage, error) {
	return s.append(ctx, matchID, models.SystemSenderID, content, models.MessageSystem)
}

// append stamps the message so timestamps never go backwards within a match
func (s *ChatService) append(ctx context.Context, matchID, senderID, content string, kind models.MessageKind) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.Now()
	if last, ok := s.last[matchID]; ok && ts.Before(last) {
		ts = last
	}

	msg := &models.ChatMessage{
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		Kind:      kind,
		Timestamp: ts,
	}
	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	s.last[matchID] = ts
	return msg, nil
}
