package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haircarelog/haircarelog-api/internal/adapters/handler/http/middleware"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type setReminderRequest struct {
	ReminderTime  string `json:"reminder_time" binding:"required"`
	EmailReminder *bool  `json:"email_reminder"`
}

type reminderResponse struct {
	ReminderTime  string    `json:"reminder_time"`
	NextReminder  time.Time `json:"next_reminder"`
	EmailReminder bool      `json:"email_reminder"`
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PUT("/me/reminder", h.SetReminder)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	user, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetReminder godoc
// @Summary  Set the daily reminder time (HH:MM)
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body  body      setReminderRequest  true  "reminder"
// @Success  200   {object}  reminderResponse
// @Failure  400   {object}  map[string]string
// @Router   /users/me/reminder [put]
func (h *UserHandler) SetReminder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req setReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `reminder_time is required in "HH:MM" format`})
		return
	}

	user, err := h.svc.SetReminder(c.Request.Context(), services.SetReminderInput{
		UserID:        userID,
		ReminderTime:  req.ReminderTime,
		EmailReminder: req.EmailReminder,
	})
	if err != nil {
		handleUserError(c, err)
		return
	}

	resp := reminderResponse{EmailReminder: user.EmailReminder}
	if user.ReminderTime != nil {
		resp.ReminderTime = *user.ReminderTime
	}
	if user.NextReminder != nil {
		resp.NextReminder = user.NextReminder.UTC()
	}
	c.JSON(http.StatusOK, resp)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidReminder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
