package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/titoride/backend/internal/repositories"
)

// RetentionDays is the fixed horizon of the retention sweep: records older
// than this are deleted, newer ones are never touched.
const RetentionDays = 60

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers the protected notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications/user/:userId", h.GetUserNotifications)
	g.GET("/notifications/user/:userId/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/user/:userId/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/cleanup", h.Cleanup)
}

// GetUserNotifications returns a page of the rider's notifications, newest
// first, with pagination metadata and the unread count across all pages.
func (h *NotificationHandler) GetUserNotifications(c echo.Context) error {
	userID, err := h.authorizedUserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.notificationRepository.GetByUserID(c.Request().Context(), userID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	unreadCount, err := h.notificationRepository.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int64(math.Ceil(float64(total) / float64(limit))),
		},
		"unreadCount": unreadCount,
	})
}

// GetUnreadCount returns the rider's unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := h.authorizedUserID(c)
	if err != nil {
		return err
	}

	unreadCount, err := h.notificationRepository.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch unread count")
	}

	return c.JSON(http.StatusOK, echo.Map{"unreadCount": unreadCount})
}

// MarkAsRead marks a single notification as read. Idempotent: marking an
// already-read record succeeds and returns it unchanged.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notification, err := h.notificationRepository.MarkAsRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification as read")
	}

	return c.JSON(http.StatusOK, notification)
}

// MarkAllAsRead marks every one of the rider's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := h.authorizedUserID(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark all notifications as read")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}

// Cleanup deletes notifications older than the retention horizon. Exposed
// for operators; the same sweep also runs on a daily schedule.
func (h *NotificationHandler) Cleanup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	cutoff := time.Now().AddDate(0, 0, -RetentionDays)
	deleted, err := h.notificationRepository.DeleteOlderThan(c.Request().Context(), cutoff)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to cleanup notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Old notifications cleaned up",
		"deletedCount": deleted,
	})
}

// authorizedUserID parses the :userId path parameter and checks it matches
// the authenticated rider; notifications are owned by their recipient only.
func (h *NotificationHandler) authorizedUserID(c echo.Context) (uint, error) {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if uint(userID) != currentUserID {
		return 0, echo.NewHTTPError(http.StatusForbidden, "Not authorized to access these notifications")
	}
	return uint(userID), nil
}
