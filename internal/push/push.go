// Package push dispatches mobile push messages. Delivery is best-effort:
// no confirmation is consumed and failures are logged, never retried.
package push

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a single outbound push. Data carries routing hints the client
// uses for deep-linking (type, actor_id, post_id).
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a push message to a device token.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the fallback Sender used when Firebase messaging is not
// configured. It only logs what would have been sent.
type LogSender struct {
	Log *logrus.Logger
}

// Send logs the message and succeeds.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Log.WithFields(logrus.Fields{
		"title": msg.Title,
		"type":  msg.Data["type"],
	}).Debug("push: dry-run send")
	return nil
}
