package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Pusher is the subset of apns2.Client used for delivery
type Pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNsConfig holds the token-based credentials for Apple Push Notification service
type APNsConfig struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNs sends a push notification to every match participant that registered a device token
type APNs struct {
	client Pusher
	topic  string
}

// NewAPNs creates a token-authenticated APNs notifier
func NewAPNs(cfg APNsConfig) (*APNs, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return NewAPNsWithClient(client, cfg.Topic), nil
}

// NewAPNsWithClient wraps an existing pusher
func NewAPNsWithClient(client Pusher, topic string) *APNs {
	return &APNs{client: client, topic: topic}
}

// MatchCreated tells each participant who they matched with
func (a *APNs) MatchCreated(ctx context.Context, event MatchEvent) error {
	var result error
	for i, r := range event.Recipients {
		if r.PushToken == nil || *r.PushToken == "" {
			continue
		}
		other := event.Recipients[len(event.Recipients)-1-i]

		notification := &apns2.Notification{
			DeviceToken: *r.PushToken,
			Topic:       a.topic,
			Payload: payload.NewPayload().
				AlertTitle("It's a match!").
				AlertBody(fmt.Sprintf("%s wants to collaborate on %q", other.DisplayName, other.ListingTitle)).
				Sound("default").
				Custom("match_id", event.MatchID),
		}

		res, err := a.client.PushWithContext(ctx, notification)
		if err != nil {
			result = errors.Join(result, fmt.Errorf("failed to push to %s: %w", r.UserID, err))
			continue
		}
		if !res.Sent() {
			result = errors.Join(result, fmt.Errorf("apns rejected push to %s: %d %s", r.UserID, res.StatusCode, res.Reason))
			continue
		}

		log.Debug().
			Str("user_id", r.UserID).
			Str("match_id", event.MatchID).
			Str("apns_id", res.ApnsID).
			Msg("Match push sent")
	}
	return result
}
