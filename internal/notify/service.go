package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/titoride/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store persists notification records.
type Store interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// RideSource loads ride snapshots for enrichment.
type RideSource interface {
	GetRideByID(ctx context.Context, id string) (*models.Ride, error)
}

// Pusher delivers a record to the recipient's live connections, if any.
type Pusher interface {
	Push(userID uint, n *models.Notification)
}

// Payload is the per-event data shared by all recipients of a fan-out.
// The recipient user ID is injected per record by the service.
type Payload struct {
	Type        string
	RideID      primitive.ObjectID
	Message     string
	TriggeredBy models.TriggeredBy
}

func (p Payload) validate() error {
	if !models.ValidNotificationType(p.Type) {
		return fmt.Errorf("invalid notification type %q", p.Type)
	}
	if p.RideID.IsZero() {
		return fmt.Errorf("notification payload missing ride ID")
	}
	if p.Message == "" {
		return fmt.Errorf("notification payload missing message")
	}
	return nil
}

// Service turns one domain event into N durable records plus N best-effort
// pushes. Delivery is not part of the transactional boundary of the domain
// write: callers invoke it after their own write has committed, and no
// failure here may abort the triggering request.
type Service struct {
	store  Store
	rides  RideSource
	pusher Pusher
}

// NewService creates a fan-out Service.
func NewService(store Store, rides RideSource, pusher Pusher) *Service {
	return &Service{store: store, rides: rides, pusher: pusher}
}

// NotifyOne persists a single notification for the recipient, then pushes it
// to the recipient's open connections. Returns the persisted record.
func (s *Service) NotifyOne(ctx context.Context, recipientID uint, p Payload) (*models.Notification, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	summary := s.rideSummary(ctx, p.RideID)
	return s.notify(ctx, recipientID, p, summary)
}

// NotifyMany performs the equivalent of NotifyOne for each recipient, with
// per-recipient isolation: a persistence or push failure for one recipient is
// logged and does not affect the others, and never propagates to the caller.
// Returns the records that were persisted.
func (s *Service) NotifyMany(ctx context.Context, recipientIDs []uint, p Payload) []models.Notification {
	if len(recipientIDs) == 0 {
		return nil
	}
	if err := p.validate(); err != nil {
		log.Printf("notify: dropping fan-out: %v", err)
		return nil
	}

	// One read-through join per event; the summary is stamped onto every
	// record so later ride edits never rewrite notification text.
	summary := s.rideSummary(ctx, p.RideID)

	created := make([]models.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		n, err := s.notify(ctx, recipientID, p, summary)
		if err != nil {
			log.Printf("notify: failed to notify user %d for ride %s: %v", recipientID, p.RideID.Hex(), err)
			continue
		}
		created = append(created, *n)
	}
	return created
}

func (s *Service) notify(ctx context.Context, recipientID uint, p Payload, summary *models.RideSummary) (*models.Notification, error) {
	n := &models.Notification{
		UserID:      recipientID,
		Type:        p.Type,
		RideID:      p.RideID,
		Message:     p.Message,
		TriggeredBy: p.TriggeredBy,
		Ride:        summary,
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, err
	}
	// Best effort: zero open connections is the expected steady state for
	// offline users, and the transport never reports delivery.
	s.pusher.Push(recipientID, n)
	return n, nil
}

func (s *Service) rideSummary(ctx context.Context, rideID primitive.ObjectID) *models.RideSummary {
	ride, err := s.rides.GetRideByID(ctx, rideID.Hex())
	if err != nil {
		log.Printf("notify: could not load ride %s for enrichment: %v", rideID.Hex(), err)
		return nil
	}
	return &models.RideSummary{
		Title:          ride.Title,
		MeetupLocation: ride.MeetupLocation,
		MeetupTime:     ride.MeetupTime,
	}
}
