package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/titoride/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrRideNotFound is returned when a ride lookup matches no document.
var ErrRideNotFound = fmt.Errorf("ride not found")

// RideRepository defines the interface for ride data operations
type RideRepository interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRideByID(ctx context.Context, id string) (*models.Ride, error)
	GetAllRides(ctx context.Context) ([]models.Ride, error)
	UpdateRide(ctx context.Context, ride *models.Ride) error
	DeleteRide(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, rideID string, p models.Participant) error
	RemoveParticipant(ctx context.Context, rideID string, userID uint) error
}

// MongoRideRepository implements RideRepository for MongoDB
type MongoRideRepository struct {
	collection *mongo.Collection
}

// NewMongoRideRepository creates a new MongoRideRepository
func NewMongoRideRepository(db *mongo.Database) *MongoRideRepository {
	return &MongoRideRepository{collection: db.Collection("rides")}
}

// CreateRide creates a new ride in MongoDB
func (r *MongoRideRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Participants == nil {
		ride.Participants = []models.Participant{}
	}
	_, err := r.collection.InsertOne(ctx, ride)
	return err
}

// GetRideByID retrieves a ride by ID from MongoDB
func (r *MongoRideRepository) GetRideByID(ctx context.Context, id string) (*models.Ride, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid ride ID format: %w", err)
	}

	var ride models.Ride
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

// GetAllRides retrieves all rides sorted by meetup time, soonest first
func (r *MongoRideRepository) GetAllRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	findOptions := options.Find().SetSort(bson.D{{Key: "meetup_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// UpdateRide persists the mutable fields of an already-loaded ride
func (r *MongoRideRepository) UpdateRide(ctx context.Context, ride *models.Ride) error {
	ride.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":           ride.Title,
			"meetup_time":     ride.MeetupTime,
			"meetup_location": ride.MeetupLocation,
			"ride_type":       ride.RideType,
			"route_location":  ride.RouteLocation,
			"gpx_link":        ride.GPXLink,
			"description":     ride.Description,
			"max_riders":      ride.MaxRiders,
			"updated_at":      ride.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": ride.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRideNotFound
	}
	return nil
}

// DeleteRide deletes a ride by ID from MongoDB
func (r *MongoRideRepository) DeleteRide(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid ride ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrRideNotFound
	}
	return nil
}

// AddParticipant appends a participant snapshot to the ride
func (r *MongoRideRepository) AddParticipant(ctx context.Context, rideID string, p models.Participant) error {
	objID, err := primitive.ObjectIDFromHex(rideID)
	if err != nil {
		return fmt.Errorf("invalid ride ID format: %w", err)
	}
	update := bson.M{
		"$push": bson.M{"participants": p},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRideNotFound
	}
	return nil
}

// RemoveParticipant removes the user's participant entry from the ride
func (r *MongoRideRepository) RemoveParticipant(ctx context.Context, rideID string, userID uint) error {
	objID, err := primitive.ObjectIDFromHex(rideID)
	if err != nil {
		return fmt.Errorf("invalid ride ID format: %w", err)
	}
	update := bson.M{
		"$pull": bson.M{"participants": bson.M{"user_id": userID}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRideNotFound
	}
	return nil
}
