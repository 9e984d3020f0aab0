package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amenapp/backend/internal/event"
	"github.com/amenapp/backend/internal/fanout"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow and follow-request HTTP requests.
// Each successful mutation is dispatched as a domain event; notification
// fan-out happens there, not here.
type FollowHandler struct {
	followRepository  repositories.FollowRepository
	requestRepository repositories.FollowRequestRepository
	dispatcher        *fanout.Dispatcher
}

// NewFollowHandler creates a new FollowHandler.
func NewFollowHandler(followRepo repositories.FollowRepository, requestRepo repositories.FollowRequestRepository, dispatcher *fanout.Dispatcher) *FollowHandler {
	return &FollowHandler{
		followRepository:  followRepo,
		requestRepository: requestRepo,
		dispatcher:        dispatcher,
	}
}

// RegisterFollowRoutes registers follow-related routes.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.POST("/users/:id/follow-requests", h.RequestFollow)
	g.PUT("/follow-requests/:requester_id/accept", h.AcceptFollowRequest)
}

// FollowUser follows a user.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	isFollowing, err := h.followRepository.IsFollowing(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{
		FollowerID: currentUserID,
		FolloweeID: targetID,
	}
	if err := h.followRepository.CreateFollow(c.Request().Context(), follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.Dispatch(event.New(
		event.TypeFollowCreated,
		fmt.Sprintf("follows/%d", follow.ID),
		event.FollowCreatedData{FollowerID: currentUserID, FolloweeID: targetID},
	))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user. The follow-notification cleanup is the
// compensating delete performed by the fan-out handler.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if err := h.followRepository.DeleteFollow(c.Request().Context(), currentUserID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.Dispatch(event.New(
		event.TypeFollowDeleted,
		fmt.Sprintf("follows/%s:%s", currentUserID, targetID),
		event.FollowDeletedData{FollowerID: currentUserID, FolloweeID: targetID},
	))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// RequestFollow records a pending follow request against a private profile.
func (h *FollowHandler) RequestFollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot request to follow yourself")
	}

	request := &models.FollowRequest{
		RequesterID: currentUserID,
		TargetID:    targetID,
		Status:      "pending",
	}
	if err := h.requestRepository.CreateRequest(c.Request().Context(), request); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"status": "pending"}})
}

// AcceptFollowRequest accepts a pending request addressed to the current
// user and notifies the requester through the fan-out pipeline.
func (h *FollowHandler) AcceptFollowRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requesterID := c.Param("requester_id")
	if err := h.requestRepository.UpdateStatus(c.Request().Context(), requesterID, currentUserID, "accepted"); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	follow := &models.Follow{FollowerID: requesterID, FolloweeID: currentUserID}
	if err := h.followRepository.CreateFollow(c.Request().Context(), follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.Dispatch(event.New(
		event.TypeFollowRequestAccepted,
		fmt.Sprintf("follows/%d", follow.ID),
		event.FollowRequestAcceptedData{RequesterID: requesterID, AccepterID: currentUserID},
	))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": "accepted"}})
}
