package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/push"
	"github.com/amenapp/backend/internal/repositories"
)

// PushHandler exposes the manual push-send entry point used by operator
// tooling and features outside the reactive fan-out handlers.
type PushHandler struct {
	userRepository repositories.UserRepository
	sender         push.Sender
	log            *logrus.Logger
}

// NewPushHandler creates a new PushHandler.
func NewPushHandler(userRepo repositories.UserRepository, sender push.Sender, log *logrus.Logger) *PushHandler {
	return &PushHandler{userRepository: userRepo, sender: sender, log: log}
}

// RegisterPushRoutes registers push routes.
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.POST("/push/send", h.SendPushNotification)
}

// SendPushRequest defines the request body for a manual push send.
type SendPushRequest struct {
	UserID string            `json:"user_id" validate:"required"`
	Title  string            `json:"title" validate:"required"`
	Body   string            `json:"body" validate:"required"`
	Data   map[string]string `json:"data,omitempty"`
}

// SendPushNotification sends one push to a user's registered device.
// A recipient without a token is reported as skipped, not failed.
func (h *PushHandler) SendPushNotification(c echo.Context) error {
	var req SendPushRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if user.FCMToken == "" {
		h.log.WithField("user_id", req.UserID).Debug("push: manual send skipped, no device token")
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"sent": false, "reason": "no device token"}})
	}

	msg := push.Message{
		Token: user.FCMToken,
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	}
	if err := h.sender.Send(c.Request().Context(), msg); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Push delivery failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"sent": true}})
}
