package fanout

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/push"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var errUnavailable = errors.New("store unavailable")

type fakeUserStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	failLookup map[string]bool
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{
		users:      make(map[string]*models.User),
		failLookup: make(map[string]bool),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLookup[id] {
		return nil, errUnavailable
	}
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

type fakeNotificationStore struct {
	mu         sync.Mutex
	records    []models.Notification
	nextID     uint
	failCreate bool
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{nextID: 1}
}

func (s *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errUnavailable
	}
	n.ID = s.nextID
	s.nextID++
	s.records = append(s.records, *n)
	return nil
}

func (s *fakeNotificationStore) DeleteFollowNotifications(_ context.Context, recipientID, actorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.Notification
	var deleted int64
	for _, n := range s.records {
		if n.RecipientID == recipientID && n.ActorID == actorID && n.Type == models.NotificationTypeFollow {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.records = kept
	return deleted, nil
}

func (s *fakeNotificationStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.records...)
}

type fakeSender struct {
	mu       sync.Mutex
	messages []push.Message
	fail     bool
}

func (s *fakeSender) Send(_ context.Context, msg push.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errUnavailable
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeSender) sent() []push.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]push.Message(nil), s.messages...)
}
