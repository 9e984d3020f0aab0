package push

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
)

// FCMSender delivers pushes via Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	log    *logrus.Logger
}

// NewFCMSender wraps an initialized messaging client.
func NewFCMSender(client *messaging.Client, log *logrus.Logger) *FCMSender {
	return &FCMSender{client: client, log: log}
}

// Send dispatches one FCM message. An empty token is a silent skip so
// callers do not need to special-case recipients without a device.
func (s *FCMSender) Send(ctx context.Context, msg Message) error {
	if s == nil || msg.Token == "" {
		return nil
	}
	fcmMsg := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.client.Send(ctx, fcmMsg); err != nil {
		s.log.WithError(err).Warn("push: fcm send failed")
		return err
	}
	return nil
}
