package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
)

const matchStream = "MATCH_EVENTS"

// PublishFunc publishes a payload on a subject
type PublishFunc func(ctx context.Context, subject string, payload []byte) error

// envelope wraps an event for the stream
type envelope struct {
	EventID    string     `json:"event_id"`
	EventType  string     `json:"event_type"`
	OccurredAt time.Time  `json:"occurred_at"`
	Match      MatchEvent `json:"match"`
}

// JetStream publishes match events to a NATS JetStream subject
type JetStream struct {
	Publish PublishFunc
	Prefix  string
	NewID   func() string
	Now     func() time.Time

	conn *nats.Conn
}

// ConnectJetStream dials NATS, ensures the event stream exists and returns a notifier
func ConnectJetStream(url, prefix string) (*JetStream, error) {
	if prefix == "" {
		prefix = "collab"
	}
	conn, err := nats.Connect(url, nats.Name("collab-match-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open jetstream context: %w", err)
	}
	if err := ensureStream(js, prefix); err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}

	n := NewJetStream(func(ctx context.Context, subject string, payload []byte) error {
		_, err := js.Publish(subject, payload, nats.Context(ctx))
		return err
	}, prefix)
	n.conn = conn
	return n, nil
}

// NewJetStream builds a notifier around an arbitrary publish function
func NewJetStream(publish PublishFunc, prefix string) *JetStream {
	if prefix == "" {
		prefix = "collab"
	}
	return &JetStream{
		Publish: publish,
		Prefix:  prefix,
		NewID:   nuid.Next,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Subject returns the subject match-created events are published on
func (j *JetStream) Subject() string {
	return j.Prefix + ".match.created"
}

// MatchCreated publishes the event
func (j *JetStream) MatchCreated(ctx context.Context, event MatchEvent) error {
	payload, err := json.Marshal(envelope{
		EventID:    j.NewID(),
		EventType:  "match.created",
		OccurredAt: j.Now(),
		Match:      event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal match event: %w", err)
	}
	if err := j.Publish(ctx, j.Subject(), payload); err != nil {
		return fmt.Errorf("failed to publish match event: %w", err)
	}
	return nil
}

// Close drains the underlying connection, if any
func (j *JetStream) Close() {
	if j == nil || j.conn == nil {
		return
	}
	_ = j.conn.Drain()
	j.conn.Close()
}

func ensureStream(js nats.JetStreamContext, prefix string) error {
	if _, err := js.StreamInfo(matchStream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("failed to inspect stream: %w", err)
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:      matchStream,
			Subjects:  []string{prefix + ".match.>"},
			Retention: nats.LimitsPolicy,
			Storage:   nats.FileStorage,
			Replicas:  1,
		}); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}
	return nil
}
