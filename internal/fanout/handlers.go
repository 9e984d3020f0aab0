package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/push"
)

// defaultLookupTimeout bounds the point reads inside handlers so a hung
// read degrades to a logged skip instead of blocking the pipeline.
const defaultLookupTimeout = 3 * time.Second

// UserStore is the profile lookup surface handlers need.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// NotificationStore is the notification write surface handlers need.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	DeleteFollowNotifications(ctx context.Context, recipientID, actorID string) (int64, error)
}

// Handlers holds the per-event-type fan-out handlers. Construct once and
// register against a Dispatcher; everything is injected, no globals.
type Handlers struct {
	users         UserStore
	notifications NotificationStore
	sender        push.Sender
	log           *logrus.Logger
	lookupTimeout time.Duration
}

// NewHandlers wires the handler set.
func NewHandlers(users UserStore, notifications NotificationStore, sender push.Sender, log *logrus.Logger) *Handlers {
	return &Handlers{
		users:         users,
		notifications: notifications,
		sender:        sender,
		log:           log,
		lookupTimeout: defaultLookupTimeout,
	}
}

// RegisterAll attaches every handler to the dispatcher. The comment and
// reply handlers are registered independently for the same event type, so
// one comment action can produce both notifications, each self-suppressed
// on its own.
func (h *Handlers) RegisterAll(d *Dispatcher) {
	d.Register(event.TypeFollowCreated, "follow", h.HandleFollowCreated)
	d.Register(event.TypeFollowDeleted, "unfollow", h.HandleFollowDeleted)
	d.Register(event.TypeAmenCreated, "amen", h.HandleAmenCreated)
	d.Register(event.TypeCommentCreated, "comment", h.HandleCommentCreated)
	d.Register(event.TypeCommentCreated, "reply", h.HandleReplyCreated)
	d.Register(event.TypeRepostCreated, "repost", h.HandleRepostCreated)
	d.Register(event.TypePostCreated, "mention", h.HandleMentions)
	d.Register(event.TypeMessageSent, "message", h.HandleMessageSent)
	d.Register(event.TypeFollowRequestAccepted, "follow-request-accepted", h.HandleFollowRequestAccepted)
}

// HandleFollowCreated notifies the followee.
func (h *Handlers) HandleFollowCreated(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.FollowCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.FolloweeID,
		ActorID:     data.FollowerID,
		Type:        models.NotificationTypeFollow,
		BodyFormat:  "%s started following you",
	})
	return nil
}

// HandleFollowDeleted performs the compensating delete: every follow
// notification the removed follower produced for the followee is removed.
// Written as delete-many since record uniqueness is not enforced.
func (h *Handlers) HandleFollowDeleted(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.FollowDeletedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	deleted, err := h.notifications.DeleteFollowNotifications(ctx, data.FolloweeID, data.FollowerID)
	if err != nil {
		return fmt.Errorf("delete follow notifications: %w", err)
	}
	if deleted > 0 {
		h.log.WithFields(logrus.Fields{
			"recipient_id": data.FolloweeID,
			"actor_id":     data.FollowerID,
			"deleted":      deleted,
		}).Info("fanout: removed follow notifications after unfollow")
	}
	return nil
}

// HandleAmenCreated notifies the post author of an amen reaction.
func (h *Handlers) HandleAmenCreated(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.AmenCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.PostAuthorID,
		ActorID:     data.UserID,
		Type:        models.NotificationTypeAmen,
		SubjectID:   data.PostID,
		BodyFormat:  "%s said Amen to your post",
	})
	return nil
}

// HandleCommentCreated notifies the post author.
func (h *Handlers) HandleCommentCreated(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.CommentCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.PostAuthorID,
		ActorID:     data.AuthorID,
		Type:        models.NotificationTypeComment,
		SubjectID:   data.PostID,
		Preview:     previewOf(data.Text),
		BodyFormat:  "%s commented on your post",
	})
	return nil
}

// HandleReplyCreated additionally notifies the parent comment's author
// when the comment is a reply. Runs for every CommentCreated event and
// no-ops when there is no parent. Intentionally does not dedup against
// the comment notification: if post author and parent author are the same
// non-actor user, both records are produced.
func (h *Handlers) HandleReplyCreated(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.CommentCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	if data.ParentAuthorID == "" {
		return nil
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.ParentAuthorID,
		ActorID:     data.AuthorID,
		Type:        models.NotificationTypeReply,
		SubjectID:   data.PostID,
		Preview:     previewOf(data.Text),
		BodyFormat:  "%s replied to your comment",
	})
	return nil
}

// HandleRepostCreated notifies the post author of a repost.
func (h *Handlers) HandleRepostCreated(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.RepostCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.PostAuthorID,
		ActorID:     data.UserID,
		Type:        models.NotificationTypeRepost,
		SubjectID:   data.PostID,
		BodyFormat:  "%s reposted your post",
	})
	return nil
}

// HandleMentions scans newly created post text for @username tokens and
// notifies each resolvable mentioned user. Unresolved usernames are
// silently skipped. Fires on create only; edits are never re-scanned.
func (h *Handlers) HandleMentions(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.PostCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	for _, username := range ScanMentions(data.Text) {
		lookupCtx, cancel := context.WithTimeout(ctx, h.lookupTimeout)
		mentioned, err := h.users.GetUserByUsername(lookupCtx, username)
		cancel()
		if err != nil || mentioned == nil {
			continue
		}
		h.notify(ctx, notifyParams{
			RecipientID: mentioned.ID,
			ActorID:     data.AuthorID,
			Type:        models.NotificationTypeMention,
			SubjectID:   data.PostID,
			Preview:     previewOf(data.Text),
			BodyFormat:  "%s mentioned you in a post",
		})
	}
	return nil
}

// HandleMessageSent notifies the message recipient.
func (h *Handlers) HandleMessageSent(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.MessageSentData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.RecipientID,
		ActorID:     data.SenderID,
		Type:        models.NotificationTypeMessage,
		Preview:     previewOf(data.Preview),
		BodyFormat:  "New message from %s",
	})
	return nil
}

// HandleFollowRequestAccepted notifies the requester.
func (h *Handlers) HandleFollowRequestAccepted(ctx context.Context, ev event.Event) error {
	data, ok := ev.Payload.(event.FollowRequestAcceptedData)
	if !ok {
		return fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	h.notify(ctx, notifyParams{
		RecipientID: data.RequesterID,
		ActorID:     data.AccepterID,
		Type:        models.NotificationTypeFollowRequestAccepted,
		BodyFormat:  "%s accepted your follow request",
	})
	return nil
}

type notifyParams struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	SubjectID   string
	Preview     string
	BodyFormat  string // one %s verb for the actor display name
}

// notify applies the uniform per-event contract: self-action suppression,
// actor point-read under timeout, record write, push attempt. The record
// write and the push are not transactional with each other; either can
// fail without rolling back the other.
func (h *Handlers) notify(ctx context.Context, p notifyParams) {
	if p.RecipientID == "" || p.ActorID == p.RecipientID {
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, h.lookupTimeout)
	actor, lookupErr := h.users.GetUserByID(lookupCtx, p.ActorID)
	cancel()

	actorName := "Someone"
	if lookupErr != nil || actor == nil {
		h.log.WithFields(logrus.Fields{
			"actor_id": p.ActorID,
			"type":     p.Type,
		}).WithError(lookupErr).Warn("fanout: actor lookup failed, skipping notification write")
	} else {
		actorName = actor.DisplayName
		n := &models.Notification{
			RecipientID:      p.RecipientID,
			Type:             p.Type,
			ActorID:          p.ActorID,
			ActorDisplayName: actorName,
			SubjectID:        p.SubjectID,
			Preview:          p.Preview,
		}
		if err := h.notifications.CreateNotification(ctx, n); err != nil {
			h.log.WithFields(logrus.Fields{
				"recipient_id": p.RecipientID,
				"type":         p.Type,
			}).WithError(err).Warn("fanout: notification write failed")
		}
	}

	h.pushTo(ctx, p, actorName)
}

// pushTo looks up the recipient's device token and attempts delivery.
// A missing token is a skip, not an error.
func (h *Handlers) pushTo(ctx context.Context, p notifyParams, actorName string) {
	lookupCtx, cancel := context.WithTimeout(ctx, h.lookupTimeout)
	recipient, err := h.users.GetUserByID(lookupCtx, p.RecipientID)
	cancel()
	if err != nil || recipient == nil {
		h.log.WithField("recipient_id", p.RecipientID).WithError(err).Warn("fanout: recipient lookup failed, skipping push")
		return
	}
	if recipient.FCMToken == "" {
		h.log.WithField("recipient_id", p.RecipientID).Debug("fanout: no device token, skipping push")
		return
	}

	data := map[string]string{
		"type":     string(p.Type),
		"actor_id": p.ActorID,
	}
	if p.SubjectID != "" {
		data["post_id"] = p.SubjectID
	}
	body := fmt.Sprintf(p.BodyFormat, actorName)
	if p.Preview != "" {
		body = body + ": " + p.Preview
	}
	msg := push.Message{
		Token: recipient.FCMToken,
		Title: "AMENAPP",
		Body:  body,
		Data:  data,
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		h.log.WithField("recipient_id", p.RecipientID).WithError(err).Warn("fanout: push dispatch failed")
	}
}

const previewLimit = 80

func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit])
}
