package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amenapp/backend/internal/models"
)

// memNotificationRepo is an in-memory NotificationRepository for handler tests.
type memNotificationRepo struct {
	mu             sync.Mutex
	records        []models.Notification
	nextID         uint
	failUnreadCall bool
}

func newMemNotificationRepo(seed ...models.Notification) *memNotificationRepo {
	r := &memNotificationRepo{nextID: 1}
	for _, n := range seed {
		n.ID = r.nextID
		r.nextID++
		r.records = append(r.records, n)
	}
	return r
}

func (r *memNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	r.records = append(r.records, *n)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.records {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memNotificationRepo) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUnreadCall {
		return 0, errors.New("count query failed")
	}
	var count int64
	for _, n := range r.records {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, recipientID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].RecipientID == recipientID && r.records[i].ID == id {
			r.records[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].RecipientID == recipientID {
			r.records[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) DeleteNotification(_ context.Context, recipientID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Notification
	for _, n := range r.records {
		if n.RecipientID == recipientID && n.ID == id {
			continue
		}
		kept = append(kept, n)
	}
	r.records = kept
	return nil
}

func (r *memNotificationRepo) DeleteFollowNotifications(_ context.Context, recipientID, actorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Notification
	var deleted int64
	for _, n := range r.records {
		if n.RecipientID == recipientID && n.ActorID == actorID && n.Type == models.NotificationTypeFollow {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.records = kept
	return deleted, nil
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("firebaseUID", userID)
	return c
}

func TestGetNotifications(t *testing.T) {
	repo := newMemNotificationRepo(
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeAmen, ActorID: "carol", IsRead: true},
		models.Notification{RecipientID: "dave", Type: models.NotificationTypeFollow, ActorID: "alice"},
	)
	h := NewNotificationHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")

	require.NoError(t, h.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int64                 `json:"unreadCount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Notifications, 2)
	assert.Equal(t, int64(1), resp.Data.UnreadCount)
}

func TestGetNotificationsUnreadCountFailure(t *testing.T) {
	// A failed count query is an error, not a silent zero next to real data.
	repo := newMemNotificationRepo(
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
	)
	repo.failUnreadCall = true
	h := NewNotificationHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")

	err := h.GetNotifications(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestGetNotificationsUnauthenticated(t *testing.T) {
	h := NewNotificationHandler(newMemNotificationRepo())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.GetNotifications(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestMarkAsRead(t *testing.T) {
	repo := newMemNotificationRepo(
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
	)
	h := NewNotificationHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPut, "/notifications/1/read", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.MarkAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAsReadInvalidID(t *testing.T) {
	h := NewNotificationHandler(newMemNotificationRepo())
	e := echo.New()

	req := httptest.NewRequest(http.MethodPut, "/notifications/abc/read", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.MarkAsRead(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newMemNotificationRepo(
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeAmen, ActorID: "carol"},
		models.Notification{RecipientID: "dave", Type: models.NotificationTypeFollow, ActorID: "alice"},
	)
	h := NewNotificationHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")

	require.NoError(t, h.MarkAllAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	bobCount, _ := repo.GetUnreadCount(context.Background(), "bob")
	daveCount, _ := repo.GetUnreadCount(context.Background(), "dave")
	assert.Equal(t, int64(0), bobCount)
	assert.Equal(t, int64(1), daveCount)
}

func TestDeleteNotification(t *testing.T) {
	repo := newMemNotificationRepo(
		models.Notification{RecipientID: "bob", Type: models.NotificationTypeFollow, ActorID: "alice"},
	)
	h := NewNotificationHandler(repo)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/notifications/1", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "bob")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.DeleteNotification(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	remaining, _ := repo.ListByRecipient(context.Background(), "bob", 100)
	assert.Empty(t, remaining)
}
