package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titoride/backend/internal/models"
	"github.com/titoride/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeNotificationRepository keeps records in memory, newest first by
// insertion order, mirroring the Mongo repository's sort contract.
type fakeNotificationRepository struct {
	records       []models.Notification
	deleteCutoff  time.Time
	deletedReturn int64
}

func (r *fakeNotificationRepository) InsertNotification(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	r.records = append([]models.Notification{*n}, r.records...)
	return nil
}

func (r *fakeNotificationRepository) GetByUserID(_ context.Context, userID uint, page, limit int64) ([]models.Notification, int64, error) {
	owned := []models.Notification{}
	for _, n := range r.records {
		if n.UserID == userID {
			owned = append(owned, n)
		}
	}
	total := int64(len(owned))
	start := (page - 1) * limit
	if start >= total {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (r *fakeNotificationRepository) CountUnread(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range r.records {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepository) MarkAsRead(_ context.Context, id string) (*models.Notification, error) {
	for i := range r.records {
		if r.records[i].ID.Hex() == id {
			r.records[i].IsRead = true
			n := r.records[i]
			return &n, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepository) MarkAllAsRead(_ context.Context, userID uint) error {
	for i := range r.records {
		if r.records[i].UserID == userID {
			r.records[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.deleteCutoff = cutoff
	return r.deletedReturn, nil
}

func seedNotifications(repo *fakeNotificationRepository, userID uint, count int, unread int) {
	for i := 0; i < count; i++ {
		n := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationRideCreated,
			RideID:  primitive.NewObjectID(),
			Message: "🚵 New ride posted: Morning Loop",
			IsRead:  i >= unread,
		}
		_ = repo.InsertNotification(context.Background(), n)
	}
}

func newNotificationContext(t *testing.T, method, target string, authUserID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authUserID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: authUserID})
	}
	return c, rec
}

func TestGetUserNotificationsPaginates(t *testing.T) {
	repo := &fakeNotificationRepository{}
	seedNotifications(repo, 7, 25, 5)
	h := NewNotificationHandler(repo)

	c, rec := newNotificationContext(t, http.MethodGet, "/api/notifications/user/7", 7)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	require.NoError(t, h.GetUserNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []models.Notification `json:"notifications"`
		Pagination    struct {
			Page  int64 `json:"page"`
			Limit int64 `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
		UnreadCount int64 `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Len(t, body.Notifications, 20)
	assert.Equal(t, int64(1), body.Pagination.Page)
	assert.Equal(t, int64(20), body.Pagination.Limit)
	assert.Equal(t, int64(25), body.Pagination.Total)
	assert.Equal(t, int64(2), body.Pagination.Pages)
	// Unread count spans all pages, not just the returned one.
	assert.Equal(t, int64(5), body.UnreadCount)
}

func TestGetUserNotificationsSecondPage(t *testing.T) {
	repo := &fakeNotificationRepository{}
	seedNotifications(repo, 7, 25, 0)
	h := NewNotificationHandler(repo)

	c, rec := newNotificationContext(t, http.MethodGet, "/api/notifications/user/7?page=2", 7)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	require.NoError(t, h.GetUserNotifications(c))

	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Notifications, 5)
}

func TestGetUserNotificationsRejectsOtherUser(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationRepository{})

	c, _ := newNotificationContext(t, http.MethodGet, "/api/notifications/user/8", 7)
	c.SetParamNames("userId")
	c.SetParamValues("8")

	err := h.GetUserNotifications(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestGetUserNotificationsRequiresAuth(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationRepository{})

	c, _ := newNotificationContext(t, http.MethodGet, "/api/notifications/user/7", 0)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	err := h.GetUserNotifications(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGetUnreadCount(t *testing.T) {
	repo := &fakeNotificationRepository{}
	seedNotifications(repo, 7, 4, 3)
	seedNotifications(repo, 8, 2, 2)
	h := NewNotificationHandler(repo)

	c, rec := newNotificationContext(t, http.MethodGet, "/api/notifications/user/7/unread-count", 7)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	require.NoError(t, h.GetUnreadCount(c))
	assert.JSONEq(t, `{"unreadCount":3}`, rec.Body.String())
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	repo := &fakeNotificationRepository{}
	seedNotifications(repo, 7, 1, 1)
	id := repo.records[0].ID.Hex()
	h := NewNotificationHandler(repo)

	for i := 0; i < 2; i++ {
		c, rec := newNotificationContext(t, http.MethodPatch, "/api/notifications/"+id+"/read", 7)
		c.SetParamNames("id")
		c.SetParamValues(id)

		require.NoError(t, h.MarkAsRead(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var n models.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
		assert.True(t, n.IsRead)
	}
}

func TestMarkAsReadUnknownID(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationRepository{})
	id := primitive.NewObjectID().Hex()

	c, _ := newNotificationContext(t, http.MethodPatch, "/api/notifications/"+id+"/read", 7)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.MarkAsRead(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestMarkAllAsReadScopedToUser(t *testing.T) {
	repo := &fakeNotificationRepository{}
	seedNotifications(repo, 7, 3, 3)
	seedNotifications(repo, 8, 2, 2)
	h := NewNotificationHandler(repo)

	c, rec := newNotificationContext(t, http.MethodPatch, "/api/notifications/user/7/read-all", 7)
	c.SetParamNames("userId")
	c.SetParamValues("7")

	require.NoError(t, h.MarkAllAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	ownUnread, _ := repo.CountUnread(context.Background(), 7)
	otherUnread, _ := repo.CountUnread(context.Background(), 8)
	assert.Zero(t, ownUnread)
	assert.Equal(t, int64(2), otherUnread)
}

func TestCleanupUsesRetentionCutoff(t *testing.T) {
	repo := &fakeNotificationRepository{deletedReturn: 12}
	h := NewNotificationHandler(repo)

	c, rec := newNotificationContext(t, http.MethodDelete, "/api/notifications/cleanup", 7)

	require.NoError(t, h.Cleanup(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.DeletedCount)

	wantCutoff := time.Now().AddDate(0, 0, -RetentionDays)
	assert.WithinDuration(t, wantCutoff, repo.deleteCutoff, 5*time.Second)
}
