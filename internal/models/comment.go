package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a ride stored in MongoDB. Author name and
// image are denormalized snapshots taken when the comment was posted.
type Comment struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RideID       primitive.ObjectID `json:"rideId" bson:"ride_id"`
	UserID       uint               `json:"userId" bson:"user_id"`
	Name         string             `json:"name" bson:"name"`
	ProfileImage string             `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
	Text         string             `json:"text" bson:"text"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
