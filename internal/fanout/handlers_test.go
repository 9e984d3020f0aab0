package fanout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/models"
)

func newTestHandlers(users *fakeUserStore, notifications *fakeNotificationStore, sender *fakeSender) *Handlers {
	return NewHandlers(users, notifications, sender, testLogger())
}

func TestHandleFollowCreated(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice", FCMToken: "token-alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	ev := event.New(event.TypeFollowCreated, "follows/1", event.FollowCreatedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowCreated(context.Background(), ev))

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].RecipientID)
	assert.Equal(t, models.NotificationTypeFollow, records[0].Type)
	assert.Equal(t, "alice", records[0].ActorID)
	assert.Equal(t, "Alice", records[0].ActorDisplayName)
	assert.False(t, records[0].IsRead)

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "token-bob", sent[0].Token)
	assert.Equal(t, "Alice started following you", sent[0].Body)
	assert.Equal(t, string(models.NotificationTypeFollow), sent[0].Data["type"])
	assert.Equal(t, "alice", sent[0].Data["actor_id"])
}

func TestSelfActionSuppressed(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice", FCMToken: "token-alice"},
	)

	cases := []struct {
		name string
		run  func(h *Handlers) error
	}{
		{"follow", func(h *Handlers) error {
			return h.HandleFollowCreated(context.Background(), event.New(event.TypeFollowCreated, "follows/1",
				event.FollowCreatedData{FollowerID: "alice", FolloweeID: "alice"}))
		}},
		{"amen own post", func(h *Handlers) error {
			return h.HandleAmenCreated(context.Background(), event.New(event.TypeAmenCreated, "posts/p1/amens/1",
				event.AmenCreatedData{PostID: "p1", PostAuthorID: "alice", UserID: "alice"}))
		}},
		{"comment on own post", func(h *Handlers) error {
			return h.HandleCommentCreated(context.Background(), event.New(event.TypeCommentCreated, "comments/1",
				event.CommentCreatedData{PostID: "p1", PostAuthorID: "alice", AuthorID: "alice", Text: "hi"}))
		}},
		{"reply to own comment", func(h *Handlers) error {
			return h.HandleReplyCreated(context.Background(), event.New(event.TypeCommentCreated, "comments/2",
				event.CommentCreatedData{PostID: "p1", PostAuthorID: "bob", AuthorID: "alice", Text: "hi", ParentAuthorID: "alice"}))
		}},
		{"repost own post", func(h *Handlers) error {
			return h.HandleRepostCreated(context.Background(), event.New(event.TypeRepostCreated, "reposts/1",
				event.RepostCreatedData{PostID: "p1", PostAuthorID: "alice", UserID: "alice"}))
		}},
		{"self mention", func(h *Handlers) error {
			return h.HandleMentions(context.Background(), event.New(event.TypePostCreated, "posts/p1",
				event.PostCreatedData{PostID: "p1", AuthorID: "alice", Text: "note to @alice"}))
		}},
		{"message to self", func(h *Handlers) error {
			return h.HandleMessageSent(context.Background(), event.New(event.TypeMessageSent, "messages/1",
				event.MessageSentData{SenderID: "alice", RecipientID: "alice", Preview: "hi"}))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notifications := newFakeNotificationStore()
			sender := &fakeSender{}
			h := newTestHandlers(users, notifications, sender)
			require.NoError(t, tc.run(h))
			assert.Empty(t, notifications.all())
			assert.Empty(t, sender.sent())
		})
	}
}

func TestHandleFollowDeleted(t *testing.T) {
	users := newFakeUserStore()
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	// Two follow records from the same follower plus records that must
	// survive the compensating delete.
	seed := []models.Notification{
		{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
		{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
		{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "carol"},
		{RecipientID: "bob", Type: models.NotificationTypeAmen, ActorID: "alice"},
		{RecipientID: "dave", Type: models.NotificationTypeFollow, ActorID: "alice"},
	}
	for i := range seed {
		require.NoError(t, notifications.CreateNotification(context.Background(), &seed[i]))
	}

	ev := event.New(event.TypeFollowDeleted, "follows/alice:bob", event.FollowDeletedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowDeleted(context.Background(), ev))

	remaining := notifications.all()
	require.Len(t, remaining, 3)
	for _, n := range remaining {
		isTarget := n.RecipientID == "bob" && n.ActorID == "alice" && n.Type == models.NotificationTypeFollow
		assert.False(t, isTarget)
	}
	assert.Empty(t, sender.sent())
}

func TestCommentWithParentProducesTwoRecords(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob"},
		&models.User{ID: "carol", Username: "carol", DisplayName: "Carol"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	d := NewDispatcher(testLogger())
	h.RegisterAll(d)

	// alice replies under carol's comment on bob's post.
	ev := event.New(event.TypeCommentCreated, "comments/5", event.CommentCreatedData{
		PostID:         "p1",
		PostAuthorID:   "bob",
		CommentID:      "5",
		AuthorID:       "alice",
		Text:           "well said",
		ParentAuthorID: "carol",
	})
	d.Deliver(context.Background(), ev)

	records := notifications.all()
	require.Len(t, records, 2)

	byType := map[models.NotificationType]models.Notification{}
	for _, n := range records {
		byType[n.Type] = n
	}
	require.Contains(t, byType, models.NotificationTypeComment)
	require.Contains(t, byType, models.NotificationTypeReply)
	assert.Equal(t, "bob", byType[models.NotificationTypeComment].RecipientID)
	assert.Equal(t, "carol", byType[models.NotificationTypeReply].RecipientID)
}

func TestReplyToPostAuthorNotDeduped(t *testing.T) {
	// bob authored both the post and the parent comment, so bob receives a
	// comment record and a reply record for the same action.
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	d := NewDispatcher(testLogger())
	h.RegisterAll(d)

	ev := event.New(event.TypeCommentCreated, "comments/6", event.CommentCreatedData{
		PostID:         "p1",
		PostAuthorID:   "bob",
		CommentID:      "6",
		AuthorID:       "alice",
		Text:           "agreed",
		ParentAuthorID: "bob",
	})
	d.Deliver(context.Background(), ev)

	records := notifications.all()
	require.Len(t, records, 2)
	assert.Equal(t, "bob", records[0].RecipientID)
	assert.Equal(t, "bob", records[1].RecipientID)
	types := []models.NotificationType{records[0].Type, records[1].Type}
	assert.ElementsMatch(t, []models.NotificationType{models.NotificationTypeComment, models.NotificationTypeReply}, types)
}

func TestTopLevelCommentSkipsReply(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	d := NewDispatcher(testLogger())
	h.RegisterAll(d)

	ev := event.New(event.TypeCommentCreated, "comments/7", event.CommentCreatedData{
		PostID:       "p1",
		PostAuthorID: "bob",
		CommentID:    "7",
		AuthorID:     "alice",
		Text:         "first",
	})
	d.Deliver(context.Background(), ev)

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.NotificationTypeComment, records[0].Type)
}

func TestHandleMentions(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "carol", Username: "carol", DisplayName: "Carol", FCMToken: "token-carol"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	// @carol resolves, @nobody does not and is silently skipped.
	ev := event.New(event.TypePostCreated, "posts/p2", event.PostCreatedData{
		PostID:   "p2",
		AuthorID: "alice",
		Text:     "shoutout to @carol and @nobody",
	})
	require.NoError(t, h.HandleMentions(context.Background(), ev))

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Equal(t, "carol", records[0].RecipientID)
	assert.Equal(t, models.NotificationTypeMention, records[0].Type)
	assert.Equal(t, "p2", records[0].SubjectID)

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "p2", sent[0].Data["post_id"])
}

func TestActorLookupFailureSkipsRecordStillPushes(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	users.failLookup["alice"] = true
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	ev := event.New(event.TypeFollowCreated, "follows/9", event.FollowCreatedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowCreated(context.Background(), ev))

	assert.Empty(t, notifications.all())

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Someone started following you", sent[0].Body)
}

func TestNoDeviceTokenSkipsPushOnly(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob"}, // no token
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	ev := event.New(event.TypeFollowCreated, "follows/10", event.FollowCreatedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowCreated(context.Background(), ev))

	assert.Len(t, notifications.all(), 1)
	assert.Empty(t, sender.sent())
}

func TestPushFailureKeepsRecord(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{fail: true}
	h := newTestHandlers(users, notifications, sender)

	ev := event.New(event.TypeFollowCreated, "follows/11", event.FollowCreatedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowCreated(context.Background(), ev))

	assert.Len(t, notifications.all(), 1)
}

func TestRecordWriteFailureStillPushes(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	notifications := newFakeNotificationStore()
	notifications.failCreate = true
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	ev := event.New(event.TypeFollowCreated, "follows/12", event.FollowCreatedData{FollowerID: "alice", FolloweeID: "bob"})
	require.NoError(t, h.HandleFollowCreated(context.Background(), ev))

	assert.Empty(t, notifications.all())
	require.Len(t, sender.sent(), 1)
	assert.Equal(t, "Alice started following you", sender.sent()[0].Body)
}

func TestMessagePreviewTruncated(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	long := strings.Repeat("x", 200)
	ev := event.New(event.TypeMessageSent, "messages/3", event.MessageSentData{
		SenderID:    "alice",
		RecipientID: "bob",
		Preview:     long,
	})
	require.NoError(t, h.HandleMessageSent(context.Background(), ev))

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Len(t, records[0].Preview, previewLimit)
	assert.Equal(t, models.NotificationTypeMessage, records[0].Type)

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "New message from Alice: "+strings.Repeat("x", previewLimit), sent[0].Body)
}

func TestHandleFollowRequestAccepted(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: "alice", Username: "alice", DisplayName: "Alice"},
		&models.User{ID: "bob", Username: "bob", DisplayName: "Bob", FCMToken: "token-bob"},
	)
	notifications := newFakeNotificationStore()
	sender := &fakeSender{}
	h := newTestHandlers(users, notifications, sender)

	// alice accepts bob's request, so bob is notified.
	ev := event.New(event.TypeFollowRequestAccepted, "follow_requests/4", event.FollowRequestAcceptedData{
		RequesterID: "bob",
		AccepterID:  "alice",
	})
	require.NoError(t, h.HandleFollowRequestAccepted(context.Background(), ev))

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].RecipientID)
	assert.Equal(t, models.NotificationTypeFollowRequestAccepted, records[0].Type)
	require.Len(t, sender.sent(), 1)
	assert.Equal(t, "Alice accepted your follow request", sender.sent()[0].Body)
}
