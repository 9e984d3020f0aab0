package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/fanout"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/repositories"
	"github.com/amenapp/backend/internal/syncbus"
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	postRepository repositories.PostRepository
	dispatcher     *fanout.Dispatcher
	bus            *syncbus.Bus
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postRepo repositories.PostRepository, dispatcher *fanout.Dispatcher, bus *syncbus.Bus) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		dispatcher:     dispatcher,
		bus:            bus,
	}
}

// RegisterPostRoutes registers post-related routes.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPostByID)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a post. The PostCreated event drives the mention
// scan; the sync-bus publish lets loaded list views insert the post
// without a re-fetch.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		AuthorID: currentUserID,
		Text:     req.Text,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	postID := post.ID.Hex()
	h.dispatcher.Dispatch(event.New(
		event.TypePostCreated,
		fmt.Sprintf("posts/%s", postID),
		event.PostCreatedData{PostID: postID, AuthorID: currentUserID, Text: req.Text},
	))
	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostCreated,
		Payload: syncbus.PostCreatedData{PostID: postID, AuthorID: currentUserID, Text: req.Text},
	})

	return c.JSON(http.StatusCreated, post)
}

// GetPosts lists recent posts with pagination.
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), (page-1)*limit, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": posts}})
}

// GetPostByID retrieves a single post.
func (h *PostHandler) GetPostByID(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes the current user's own post and publishes the
// deletion so every loaded list view drops it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the post author")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bus.Publish(syncbus.Event{
		Topic:   syncbus.TopicPostDeleted,
		Payload: syncbus.PostDeletedData{PostID: postID},
	})

	return c.NoContent(http.StatusNoContent)
}
