package notification

import (
	"context"
	"fmt"

	"busreserve/models"

	"firebase.google.com/go/v4/messaging"
)

// PushDispatcher publishes events to FCM topics. Devices subscribe to trip_<tripID> for the
// trips they ride or drive and to user_<userID> for invitations.
type PushDispatcher struct {
	client *messaging.Client
}

func NewPushDispatcher(client *messaging.Client) *PushDispatcher {
	return &PushDispatcher{client: client}
}

func (p *PushDispatcher) Dispatch(ctx context.Context, event models.Event) error {
	msgs := Messages(event)
	if len(msgs) == 0 {
		return nil
	}
	resp, err := p.client.SendEach(ctx, msgs)
	if err != nil {
		return fmt.Errorf("push %s: failed to send FCM messages: %w", event.Type, err)
	}
	if resp.FailureCount > 0 {
		for _, r := range resp.Responses {
			if !r.Success {
				return fmt.Errorf("push %s: %d of %d messages failed: %w", event.Type, resp.FailureCount, len(msgs), r.Error)
			}
		}
	}
	return nil
}

// Messages maps an event to the FCM messages it produces. Invitations addressed only by email
// produce none; the mail dispatcher covers them.
func Messages(event models.Event) []*messaging.Message {
	var topics []string
	switch event.Type {
	case models.EventGroupInvite:
		if event.MemberUserID != "" {
			topics = append(topics, "user_"+event.MemberUserID)
		}
	default:
		if event.TripID != "" {
			topics = append(topics, "trip_"+event.TripID)
		}
		if event.UserID != "" {
			topics = append(topics, "user_"+event.UserID)
		}
	}

	title, body := Render(event)
	msgs := make([]*messaging.Message, 0, len(topics))
	for _, topic := range topics {
		msg := &messaging.Message{
			Topic: topic,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: Data(event),
		}
		if event.Severity == models.SeverityHigh {
			msg.Android = &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "high_priority",
					Sound:     "default",
				},
			}
			msg.APNS = &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-priority":  "10",
					"apns-push-type": "alert",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: "default"},
				},
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
