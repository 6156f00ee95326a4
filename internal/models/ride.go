package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ride types riders can pick from.
const (
	RideTypeChill    = "Chill"
	RideTypeRacePace = "Race Pace"
)

// UserSnapshot is a denormalized copy of a user's identity taken at write
// time. It is never refreshed when the user later edits their profile.
type UserSnapshot struct {
	UserID       uint   `json:"userId" bson:"user_id"`
	Name         string `json:"name" bson:"name"`
	ProfileImage string `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
}

// Participant is a user who joined a ride.
type Participant struct {
	UserID       uint      `json:"userId" bson:"user_id"`
	Name         string    `json:"name" bson:"name"`
	ProfileImage string    `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
	JoinedAt     time.Time `json:"joinedAt" bson:"joined_at"`
}

// Ride represents a group ride stored in MongoDB.
type Ride struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	MeetupTime     time.Time          `json:"meetupTime" bson:"meetup_time"`
	MeetupLocation string             `json:"meetupLocation" bson:"meetup_location"`
	RideType       string             `json:"rideType" bson:"ride_type"`
	RouteLocation  string             `json:"routeLocation,omitempty" bson:"route_location,omitempty"`
	GPXLink        string             `json:"gpxLink,omitempty" bson:"gpx_link,omitempty"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	MaxRiders      int                `json:"maxRiders,omitempty" bson:"max_riders,omitempty"`
	Creator        UserSnapshot       `json:"creator" bson:"creator"`
	Participants   []Participant      `json:"participants" bson:"participants"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ParticipantCount returns the number of riders who joined.
func (r *Ride) ParticipantCount() int {
	return len(r.Participants)
}

// HasParticipant reports whether the user already joined the ride.
func (r *Ride) HasParticipant(userID uint) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the ride reached its rider limit, if one is set.
func (r *Ride) IsFull() bool {
	return r.MaxRiders > 0 && len(r.Participants) >= r.MaxRiders
}

type CreateRideRequest struct {
	Title          string    `json:"title" validate:"required,min=3,max=100"`
	MeetupTime     time.Time `json:"meetupTime" validate:"required"`
	MeetupLocation string    `json:"meetupLocation" validate:"required,max=200"`
	RideType       string    `json:"rideType" validate:"required,oneof='Chill' 'Race Pace'"`
	RouteLocation  string    `json:"routeLocation,omitempty" validate:"omitempty,max=200"`
	GPXLink        string    `json:"gpxLink,omitempty" validate:"omitempty,url"`
	Description    string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxRiders      int       `json:"maxRiders,omitempty" validate:"omitempty,min=1"`
}

// UpdateRideRequest carries partial updates; nil/zero fields are left as-is.
type UpdateRideRequest struct {
	Title          string     `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	MeetupTime     *time.Time `json:"meetupTime,omitempty"`
	MeetupLocation string     `json:"meetupLocation,omitempty" validate:"omitempty,max=200"`
	RideType       string     `json:"rideType,omitempty" validate:"omitempty,oneof='Chill' 'Race Pace'"`
	RouteLocation  string     `json:"routeLocation,omitempty" validate:"omitempty,max=200"`
	GPXLink        string     `json:"gpxLink,omitempty" validate:"omitempty,url"`
	Description    string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxRiders      *int       `json:"maxRiders,omitempty"`
}
