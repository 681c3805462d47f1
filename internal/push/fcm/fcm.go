// Package fcm sends push notifications through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/mykocapp/notifier/internal/config"
	"github.com/mykocapp/notifier/internal/push"
	"github.com/mykocapp/notifier/pkg/logger"
)

// Delivery hints shared with the Flutter client. The channel id must match
// the channel created on the Android side exactly.
const (
	androidChannelID   = "mykoc_channel"
	androidClickAction = "FLUTTER_NOTIFICATION_CLICK"
)

type Sender struct {
	client *messaging.Client
	logger *logger.Logger
}

// NewSender creates an FCM sender from a service account credentials file.
func NewSender(ctx context.Context, cfg config.FCMConfig, log *logger.Logger) (*Sender, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("fcm credentials file is required")
	}

	firebaseConfig := &firebase.Config{}
	if cfg.ProjectID != "" {
		firebaseConfig.ProjectID = cfg.ProjectID
	}

	app, err := firebase.NewApp(ctx, firebaseConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &Sender{client: client, logger: log}, nil
}

// Send delivers msg to one device token.
func (s *Sender) Send(ctx context.Context, token string, msg push.Message) error {
	messageID, err := s.client.Send(ctx, buildMessage(token, msg))
	if err != nil {
		s.logSendError(token, err)
		return err
	}

	s.logger.Debug("push sent", "message_id", messageID, "token", truncateToken(token))
	return nil
}

// SendMulticast delivers msg to all tokens in one call. Per-token partial
// failures in the batch response are not inspected.
func (s *Sender) SendMulticast(ctx context.Context, tokens []string, msg push.Message) error {
	resp, err := s.client.SendEachForMulticast(ctx, buildMulticastMessage(tokens, msg))
	if err != nil {
		s.logger.Error(err, "multicast send failed", "tokens", len(tokens))
		return err
	}

	s.logger.Debug("multicast sent", "success", resp.SuccessCount, "failure", resp.FailureCount)
	return nil
}

// logSendError classifies FCM errors for operational logs. Stale tokens are
// routine: the app re-registers on next launch.
func (s *Sender) logSendError(token string, err error) {
	snippet := truncateToken(token)

	if messaging.IsUnregistered(err) {
		s.logger.Debug("device token no longer registered", "token", snippet)
		return
	}
	if messaging.IsInvalidArgument(err) {
		s.logger.Debug("device token rejected as invalid", "token", snippet)
		return
	}

	s.logger.Error(err, "push send failed", "token", snippet)
}

func buildMessage(token string, msg push.Message) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:    msg.Data,
		Android: androidConfig(msg.CollapseTag),
		APNS:    apnsConfig(),
	}
}

func buildMulticastMessage(tokens []string, msg push.Message) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:    msg.Data,
		Android: androidConfig(msg.CollapseTag),
		APNS:    apnsConfig(),
	}
}

func androidConfig(tag string) *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			DefaultSound:          true,
			DefaultVibrateTimings: true,
			ClickAction:           androidClickAction,
			ChannelID:             androidChannelID,
			Tag:                   tag,
		},
	}
}

func apnsConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Badge: &badge,
				CriticalSound: &messaging.CriticalSound{
					Critical: true,
					Name:     "default",
					Volume:   1.0,
				},
			},
		},
	}
}

// truncateToken shortens a device token for logging. Tokens are opaque
// credentials and must not be logged in full.
func truncateToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:6] + "..." + token[len(token)-6:]
}
