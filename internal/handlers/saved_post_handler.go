package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/repositories"
	"github.com/amenapp/backend/internal/syncbus"
)

// SavedPostHandler handles bookmarking posts. Saving is a private action
// and never produces a notification; only sync-bus patches are published.
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
	bus                 *syncbus.Bus
}

// NewSavedPostHandler creates a new SavedPostHandler.
func NewSavedPostHandler(savedRepo repositories.SavedPostRepository, postRepo repositories.PostRepository, bus *syncbus.Bus) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedRepo,
		postRepository:      postRepo,
		bus:                 bus,
	}
}

// RegisterSavedPostRoutes registers saved-post routes.
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/save", h.SavePost)
	g.DELETE("/posts/:post_id/save", h.UnsavePost)
}

// SavePost bookmarks a post for the current user.
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	isSaved, err := h.savedPostRepository.IsSaved(c.Request().Context(), postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isSaved {
		return echo.NewHTTPError(http.StatusConflict, "Post already saved")
	}

	saved := &models.SavedPost{PostID: postID, UserID: currentUserID}
	if err := h.savedPostRepository.SavePost(c.Request().Context(), saved); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostSaved,
		Payload: syncbus.PostSavedData{PostID: postID, UserID: currentUserID},
	})

	return c.JSON(http.StatusCreated, saved)
}

// UnsavePost removes a bookmark.
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if err := h.savedPostRepository.UnsavePost(c.Request().Context(), postID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostUnsaved,
		Payload: syncbus.PostUnsavedData{PostID: postID, UserID: currentUserID},
	})

	return c.NoContent(http.StatusNoContent)
}
