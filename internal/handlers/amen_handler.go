package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/fanout"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/repositories"
	"github.com/amenapp/backend/internal/syncbus"
)

// AmenHandler handles amen reactions on posts.
type AmenHandler struct {
	amenRepository repositories.AmenRepository
	postRepository repositories.PostRepository
	dispatcher     *fanout.Dispatcher
	bus            *syncbus.Bus
}

// NewAmenHandler creates a new AmenHandler.
func NewAmenHandler(amenRepo repositories.AmenRepository, postRepo repositories.PostRepository, dispatcher *fanout.Dispatcher, bus *syncbus.Bus) *AmenHandler {
	return &AmenHandler{
		amenRepository: amenRepo,
		postRepository: postRepo,
		dispatcher:     dispatcher,
		bus:            bus,
	}
}

// RegisterAmenRoutes registers amen-related routes.
func (h *AmenHandler) RegisterAmenRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/amens", h.AmenPost)
	g.DELETE("/posts/:post_id/amens", h.UnamenPost)
	g.GET("/posts/:post_id/amens/count", h.GetAmensCountForPost)
}

// AmenPost records an amen reaction, dispatches the fan-out event and
// publishes the local sync patch for already-loaded list views.
func (h *AmenHandler) AmenPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	hasAmened, err := h.amenRepository.HasUserAmened(c.Request().Context(), postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasAmened {
		return echo.NewHTTPError(http.StatusConflict, "Post already amened by this user")
	}

	amen := &models.Amen{PostID: postID, UserID: currentUserID}
	if err := h.amenRepository.CreateAmen(c.Request().Context(), amen); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementAmensCount(context.Background(), postID, 1)

	h.dispatcher.Dispatch(event.New(
		event.TypeAmenCreated,
		fmt.Sprintf("posts/%s/amens/%d", postID, amen.ID),
		event.AmenCreatedData{PostID: postID, PostAuthorID: post.AuthorID, UserID: currentUserID},
	))
	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostAmen,
		Payload: syncbus.PostAmenData{PostID: postID, UserID: currentUserID, Delta: 1},
	})

	return c.JSON(http.StatusCreated, amen)
}

// UnamenPost removes an amen reaction. Removing a reaction produces no
// notification; only the local sync patch is published.
func (h *AmenHandler) UnamenPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if err := h.amenRepository.DeleteAmen(c.Request().Context(), postID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementAmensCount(context.Background(), postID, -1)

	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostAmen,
		Payload: syncbus.PostAmenData{PostID: postID, UserID: currentUserID, Delta: -1},
	})

	return c.NoContent(http.StatusNoContent)
}

// GetAmensCountForPost retrieves the amen count for a post.
func (h *AmenHandler) GetAmensCountForPost(c echo.Context) error {
	postID := c.Param("post_id")

	count, err := h.amenRepository.GetAmensCountByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "amens_count": count})
}
