package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. One delivery of a domain event to one recipient.
const (
	NotificationRideCreated   = "ride-created"
	NotificationRideUpdated   = "ride-updated"
	NotificationRideJoined    = "ride-joined"
	NotificationCommentPosted = "comment-posted"
)

// ValidNotificationType reports whether t is one of the known types.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationRideCreated, NotificationRideUpdated, NotificationRideJoined, NotificationCommentPosted:
		return true
	}
	return false
}

// TriggeredBy is a snapshot of the actor at event time. It is deliberately
// not a live reference: notification text stays as it was when created.
type TriggeredBy struct {
	UserID       uint   `json:"userId" bson:"user_id"`
	Name         string `json:"name" bson:"name"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
}

// RideSummary is the creation-time snapshot of the related ride embedded in
// each notification record. Later ride edits do not rewrite it.
type RideSummary struct {
	Title          string    `json:"title" bson:"title"`
	MeetupLocation string    `json:"meetupLocation" bson:"meetup_location"`
	MeetupTime     time.Time `json:"meetupTime" bson:"meetup_time"`
}

// Notification represents one delivery of an event to one recipient,
// stored in MongoDB.
type Notification struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID      uint               `json:"userId" bson:"user_id"`
	Type        string             `json:"type" bson:"type"`
	RideID      primitive.ObjectID `json:"rideId" bson:"ride_id"`
	Message     string             `json:"message" bson:"message"`
	IsRead      bool               `json:"isRead" bson:"is_read"`
	TriggeredBy TriggeredBy        `json:"triggeredBy" bson:"triggered_by"`
	Ride        *RideSummary       `json:"ride,omitempty" bson:"ride,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
