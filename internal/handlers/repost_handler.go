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
)

// RepostHandler handles reposting.
type RepostHandler struct {
	repostRepository repositories.RepostRepository
	postRepository   repositories.PostRepository
	dispatcher       *fanout.Dispatcher
}

// NewRepostHandler creates a new RepostHandler.
func NewRepostHandler(repostRepo repositories.RepostRepository, postRepo repositories.PostRepository, dispatcher *fanout.Dispatcher) *RepostHandler {
	return &RepostHandler{
		repostRepository: repostRepo,
		postRepository:   postRepo,
		dispatcher:       dispatcher,
	}
}

// RegisterRepostRoutes registers repost-related routes.
func (h *RepostHandler) RegisterRepostRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/reposts", h.RepostPost)
	g.DELETE("/posts/:post_id/reposts", h.UnrepostPost)
}

// RepostPost reshares a post to the current user's profile.
func (h *RepostHandler) RepostPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	hasReposted, err := h.repostRepository.HasUserReposted(c.Request().Context(), postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hasReposted {
		return echo.NewHTTPError(http.StatusConflict, "Post already reposted by this user")
	}

	repost := &models.Repost{PostID: postID, UserID: currentUserID}
	if err := h.repostRepository.CreateRepost(c.Request().Context(), repost); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementRepostsCount(context.Background(), postID, 1)

	h.dispatcher.Dispatch(event.New(
		event.TypeRepostCreated,
		fmt.Sprintf("reposts/%d", repost.ID),
		event.RepostCreatedData{PostID: postID, PostAuthorID: post.AuthorID, UserID: currentUserID},
	))

	return c.JSON(http.StatusCreated, repost)
}

// UnrepostPost removes a repost.
func (h *RepostHandler) UnrepostPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if err := h.repostRepository.DeleteRepost(c.Request().Context(), postID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementRepostsCount(context.Background(), postID, -1)

	return c.NoContent(http.StatusNoContent)
}
