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

// ErrNotificationNotFound is returned when a notification lookup matches no document.
var ErrNotificationNotFound = fmt.Errorf("notification not found")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID uint, page, limit int64) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAsRead(ctx context.Context, id string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uint) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// InsertNotification persists a single notification record
func (r *MongoNotificationRepository) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// GetByUserID retrieves a page of the user's notifications, newest first,
// along with the total record count for that user.
func (r *MongoNotificationRepository) GetByUserID(ctx context.Context, userID uint, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts the user's unread notifications
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// MarkAsRead flips a single notification to read and returns the updated
// record. Marking an already-read record is a no-op, not an error.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// MarkAllAsRead flips every unread notification owned by the user
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	update := bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now()}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"user_id": userID, "is_read": false}, update)
	return err
}

// DeleteOlderThan removes every notification created strictly before cutoff
// and returns the number deleted. This is the only deletion path.
func (r *MongoNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
