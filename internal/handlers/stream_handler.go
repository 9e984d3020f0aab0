package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler upgrades a connection to a standing notification stream.
// Each connection owns one Feed; every snapshot the feed produces is
// written to the socket as a full result set.
type StreamHandler struct {
	store   feed.Store
	signals feed.Signaler
	log     *logrus.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(store feed.Store, signals feed.Signaler, log *logrus.Logger) *StreamHandler {
	return &StreamHandler{store: store, signals: signals, log: log}
}

// RegisterStreamRoutes registers the stream route.
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/notifications/stream", h.StreamNotifications)
}

// streamCommand is a client-to-server message on the stream socket.
type streamCommand struct {
	Action string `json:"action"` // mark_read, mark_all_read
	ID     uint   `json:"id,omitempty"`
}

// StreamNotifications serves one client's notification stream.
func (h *StreamHandler) StreamNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	snapshots := make(chan feed.Snapshot, 8)

	f := feed.New(h.store, h.signals, currentUserID, h.log)
	f.OnChange(func(snap feed.Snapshot) {
		select {
		case snapshots <- snap:
		default:
			// slow socket; the next snapshot carries the full state anyway
		}
	})

	ctx := c.Request().Context()
	f.Start(ctx)
	defer f.Stop()

	// Reader: consume mark-read commands until the client goes away.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var cmd streamCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			switch cmd.Action {
			case "mark_read":
				f.MarkRead(ctx, cmd.ID)
			case "mark_all_read":
				f.MarkAllRead(ctx)
			}
		}
	}()

	// Writer: forward snapshots until the reader or the request ends.
	for {
		select {
		case <-readerDone:
			return nil
		case <-ctx.Done():
			return nil
		case snap := <-snapshots:
			if err := conn.WriteJSON(snap); err != nil {
				return nil
			}
		}
	}
}
