package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/titoride/backend/internal/models"
	"github.com/titoride/backend/internal/notify"
	"github.com/titoride/backend/internal/repositories"
)

// RideHandler handles ride-related HTTP requests and triggers the
// notification fan-out after each qualifying domain write.
type RideHandler struct {
	rideRepository repositories.RideRepository
	userRepository repositories.UserRepository
	notifier       *notify.Service
}

// NewRideHandler creates a new RideHandler
func NewRideHandler(rideRepo repositories.RideRepository, userRepo repositories.UserRepository, notifier *notify.Service) *RideHandler {
	return &RideHandler{
		rideRepository: rideRepo,
		userRepository: userRepo,
		notifier:       notifier,
	}
}

// RegisterPublicRideRoutes registers routes that need no authentication
func (h *RideHandler) RegisterPublicRideRoutes(g *echo.Group) {
	g.GET("/rides", h.GetRides)
	g.GET("/rides/:id", h.GetRideByID)
}

// RegisterRideRoutes registers the protected ride routes
func (h *RideHandler) RegisterRideRoutes(g *echo.Group) {
	g.POST("/rides", h.CreateRide)
	g.PUT("/rides/:id", h.UpdateRide)
	g.DELETE("/rides/:id", h.DeleteRide)
	g.POST("/rides/:id/join", h.JoinRide)
	g.POST("/rides/:id/unjoin", h.UnjoinRide)
}

// CreateRide creates a new ride and notifies every other registered rider
func (h *RideHandler) CreateRide(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateRideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	ride := &models.Ride{
		Title:          req.Title,
		MeetupTime:     req.MeetupTime,
		MeetupLocation: req.MeetupLocation,
		RideType:       req.RideType,
		RouteLocation:  req.RouteLocation,
		GPXLink:        req.GPXLink,
		Description:    req.Description,
		MaxRiders:      req.MaxRiders,
		Creator: models.UserSnapshot{
			UserID:       actor.ID,
			Name:         actor.Name,
			ProfileImage: actor.ProfileImage,
		},
	}

	if err := h.rideRepository.CreateRide(c.Request().Context(), ride); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Ride is committed; fan-out is best effort and must not fail the request.
	if h.notifier != nil {
		allUserIDs, err := h.userRepository.GetAllUserIDs()
		if err != nil {
			log.Printf("notify: could not load recipients for ride %s, skipping broadcast: %v", ride.ID.Hex(), err)
		} else {
			recipients := notify.ForNewRide(actor.ID, allUserIDs)
			h.notifier.NotifyMany(c.Request().Context(), recipients, notify.Payload{
				Type:        models.NotificationRideCreated,
				RideID:      ride.ID,
				Message:     fmt.Sprintf("🚵 New ride posted: %s", ride.Title),
				TriggeredBy: actorSnapshot(actor),
			})
		}
	}

	return c.JSON(http.StatusCreated, ride)
}

// GetRides returns all rides, soonest meetup first
func (h *RideHandler) GetRides(c echo.Context) error {
	rides, err := h.rideRepository.GetAllRides(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rides)
}

// GetRideByID returns a single ride
func (h *RideHandler) GetRideByID(c echo.Context) error {
	ride, err := h.rideRepository.GetRideByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Ride not found")
	}
	return c.JSON(http.StatusOK, ride)
}

// JoinRide adds the rider to the ride's participants and notifies the creator
func (h *RideHandler) JoinRide(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ride, err := h.rideRepository.GetRideByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Ride not found")
	}

	if ride.Creator.UserID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Creators are part of their own ride")
	}
	if ride.HasParticipant(currentUserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Already joined this ride")
	}
	if ride.IsFull() {
		return echo.NewHTTPError(http.StatusBadRequest, "Ride is full")
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	participant := models.Participant{
		UserID:       actor.ID,
		Name:         actor.Name,
		ProfileImage: actor.ProfileImage,
		JoinedAt:     time.Now(),
	}
	if err := h.rideRepository.AddParticipant(c.Request().Context(), c.Param("id"), participant); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ride.Participants = append(ride.Participants, participant)

	if h.notifier != nil {
		recipients := notify.ForJoin(actor.ID, ride)
		h.notifier.NotifyMany(c.Request().Context(), recipients, notify.Payload{
			Type:        models.NotificationRideJoined,
			RideID:      ride.ID,
			Message:     fmt.Sprintf("👤 %s joined your ride: %s", actor.Name, ride.Title),
			TriggeredBy: actorSnapshot(actor),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Successfully joined ride",
		"participantCount": ride.ParticipantCount(),
		"participants":     ride.Participants,
	})
}

// UnjoinRide removes the rider from the ride's participants. No fan-out.
func (h *RideHandler) UnjoinRide(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ride, err := h.rideRepository.GetRideByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Ride not found")
	}

	if !ride.HasParticipant(currentUserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Not joined this ride")
	}

	if err := h.rideRepository.RemoveParticipant(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	remaining := make([]models.Participant, 0, len(ride.Participants))
	for _, p := range ride.Participants {
		if p.UserID != currentUserID {
			remaining = append(remaining, p)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Successfully left ride",
		"participantCount": len(remaining),
		"participants":     remaining,
	})
}

// UpdateRide updates a ride. Participants are notified only when the meetup
// time and/or location changed; other edits stay silent.
func (h *RideHandler) UpdateRide(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateRideRequest
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

	if ride.Creator.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to update this ride")
	}

	locationChanged := req.MeetupLocation != "" && req.MeetupLocation != ride.MeetupLocation
	timeChanged := req.MeetupTime != nil && !req.MeetupTime.Equal(ride.MeetupTime)

	if req.Title != "" {
		ride.Title = req.Title
	}
	if req.MeetupTime != nil {
		ride.MeetupTime = *req.MeetupTime
	}
	if req.MeetupLocation != "" {
		ride.MeetupLocation = req.MeetupLocation
	}
	if req.RideType != "" {
		ride.RideType = req.RideType
	}
	if req.RouteLocation != "" {
		ride.RouteLocation = req.RouteLocation
	}
	if req.GPXLink != "" {
		ride.GPXLink = req.GPXLink
	}
	if req.Description != "" {
		ride.Description = req.Description
	}
	if req.MaxRiders != nil {
		ride.MaxRiders = *req.MaxRiders
	}

	if err := h.rideRepository.UpdateRide(c.Request().Context(), ride); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.notifier != nil && (locationChanged || timeChanged) {
		recipients := notify.ForRideUpdate(currentUserID, ride)
		if len(recipients) > 0 {
			actor, err := h.userRepository.GetUserByID(currentUserID)
			if err == nil {
				h.notifier.NotifyMany(c.Request().Context(), recipients, notify.Payload{
					Type:        models.NotificationRideUpdated,
					RideID:      ride.ID,
					Message:     rideUpdateMessage(ride.Title, locationChanged, timeChanged),
					TriggeredBy: actorSnapshot(actor),
				})
			}
		}
	}

	return c.JSON(http.StatusOK, ride)
}

// DeleteRide deletes a ride
func (h *RideHandler) DeleteRide(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ride, err := h.rideRepository.GetRideByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Ride not found")
	}

	if ride.Creator.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this ride")
	}

	if err := h.rideRepository.DeleteRide(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Ride removed"})
}

func rideUpdateMessage(title string, locationChanged, timeChanged bool) string {
	switch {
	case locationChanged && timeChanged:
		return fmt.Sprintf("📍 Ride %q changed time and location", title)
	case locationChanged:
		return fmt.Sprintf("📍 Ride %q changed location", title)
	case timeChanged:
		return fmt.Sprintf("🕐 Ride %q changed time", title)
	default:
		return fmt.Sprintf("📍 Ride %q has been updated", title)
	}
}

func actorSnapshot(user *models.User) models.TriggeredBy {
	return models.TriggeredBy{
		UserID:       user.ID,
		Name:         user.Name,
		ProfileImage: user.ProfileImage,
	}
}
