package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/titoride/backend/internal/models"
	"github.com/titoride/backend/internal/notify"
	"github.com/titoride/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to ride comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	rideRepository    repositories.RideRepository
	userRepository    repositories.UserRepository
	notifier          *notify.Service
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, rideRepo repositories.RideRepository, userRepo repositories.UserRepository, notifier *notify.Service) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		rideRepository:    rideRepo,
		userRepository:    userRepo,
		notifier:          notifier,
	}
}

// RegisterPublicCommentRoutes registers routes that need no authentication
func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.GET("/rides/:id/comments", h.GetComments)
}

// RegisterCommentRoutes registers the protected comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/rides/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to a ride and notifies the creator and every
// participant except the commenter.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ride, err := h.rideRepository.GetRideByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Ride not found")
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	comment := &models.Comment{
		RideID:       ride.ID,
		UserID:       actor.ID,
		Name:         actor.Name,
		ProfileImage: actor.ProfileImage,
		Text:         req.Text,
	}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.notifier != nil {
		recipients := notify.ForComment(actor.ID, ride)
		h.notifier.NotifyMany(c.Request().Context(), recipients, notify.Payload{
			Type:        models.NotificationCommentPosted,
			RideID:      ride.ID,
			Message:     fmt.Sprintf("💬 %s commented on: %s", actor.Name, ride.Title),
			TriggeredBy: actorSnapshot(actor),
		})
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns all comments for a ride, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByRideID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes a comment owned by the rider
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment removed"})
}
