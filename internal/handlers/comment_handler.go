package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/fanout"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	dispatcher        *fanout.Dispatcher
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, dispatcher *fanout.Dispatcher) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		dispatcher:        dispatcher,
	}
}

// RegisterCommentRoutes registers comment-related routes.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a comment on a post. When the comment carries a
// parent reference, the parent author is resolved here so the fan-out can
// produce the reply notification alongside the comment notification.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	var parentAuthorID string
	if req.ParentCommentID != nil {
		parent, err := h.commentRepository.GetCommentByID(c.Request().Context(), *req.ParentCommentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to another post")
		}
		parentAuthorID = parent.AuthorID
	}

	comment := &models.Comment{
		PostID:          postID,
		AuthorID:        currentUserID,
		Text:            req.Text,
		ParentCommentID: req.ParentCommentID,
	}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementCommentsCount(context.Background(), postID, 1)

	h.dispatcher.Dispatch(event.New(
		event.TypeCommentCreated,
		fmt.Sprintf("posts/%s/comments/%d", postID, comment.ID),
		event.CommentCreatedData{
			PostID:         postID,
			PostAuthorID:   post.AuthorID,
			CommentID:      strconv.FormatUint(uint64(comment.ID), 10),
			AuthorID:       currentUserID,
			Text:           req.Text,
			ParentAuthorID: parentAuthorID,
		},
	))

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID lists the comments on a post.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes the current user's own comment.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the comment author")
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.IncrementCommentsCount(context.Background(), comment.PostID, -1)

	return c.NoContent(http.StatusNoContent)
}
