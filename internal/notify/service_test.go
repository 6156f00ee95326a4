package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titoride/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	inserted []*models.Notification
	failFor  map[uint]bool
}

func (s *fakeStore) InsertNotification(_ context.Context, n *models.Notification) error {
	if s.failFor[n.UserID] {
		return fmt.Errorf("write failed for user %d", n.UserID)
	}
	s.inserted = append(s.inserted, n)
	return nil
}

type fakeRides struct {
	ride *models.Ride
	err  error
}

func (r *fakeRides) GetRideByID(_ context.Context, _ string) (*models.Ride, error) {
	return r.ride, r.err
}

type fakePusher struct {
	pushed map[uint]int
}

func (p *fakePusher) Push(userID uint, _ *models.Notification) {
	if p.pushed == nil {
		p.pushed = make(map[uint]int)
	}
	p.pushed[userID]++
}

func testPayload() Payload {
	return Payload{
		Type:        models.NotificationCommentPosted,
		RideID:      primitive.NewObjectID(),
		Message:     "💬 Dana commented on: Morning Loop",
		TriggeredBy: models.TriggeredBy{UserID: 9, Name: "Dana"},
	}
}

func newTestService(store *fakeStore, rides *fakeRides, pusher *fakePusher) *Service {
	if rides == nil {
		rides = &fakeRides{ride: &models.Ride{Title: "Morning Loop", MeetupLocation: "Trailhead", MeetupTime: time.Now()}}
	}
	return NewService(store, rides, pusher)
}

func TestNotifyManyEmptyRecipientsIsNoOp(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)

	created := svc.NotifyMany(context.Background(), nil, testPayload())

	assert.Nil(t, created)
	assert.Empty(t, store.inserted)
	assert.Empty(t, pusher.pushed)
}

func TestNotifyManyPersistsAndPushesPerRecipient(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)
	p := testPayload()

	created := svc.NotifyMany(context.Background(), []uint{1, 2, 3}, p)

	require.Len(t, created, 3)
	require.Len(t, store.inserted, 3)
	for i, recipient := range []uint{1, 2, 3} {
		assert.Equal(t, recipient, created[i].UserID)
		assert.Equal(t, p.Type, created[i].Type)
		assert.Equal(t, p.Message, created[i].Message)
		assert.Equal(t, p.TriggeredBy, created[i].TriggeredBy)
		assert.False(t, created[i].IsRead)
		assert.Equal(t, 1, pusher.pushed[recipient])
	}
}

func TestNotifyManyIsolatesPerRecipientFailures(t *testing.T) {
	store := &fakeStore{failFor: map[uint]bool{2: true}}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)

	created := svc.NotifyMany(context.Background(), []uint{1, 2, 3}, testPayload())

	require.Len(t, created, 2)
	assert.Equal(t, uint(1), created[0].UserID)
	assert.Equal(t, uint(3), created[1].UserID)
	// The failed recipient gets no push either.
	assert.Zero(t, pusher.pushed[2])
	assert.Equal(t, 1, pusher.pushed[1])
	assert.Equal(t, 1, pusher.pushed[3])
}

func TestNotifyManyDropsInvalidPayload(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)

	p := testPayload()
	p.Type = "bogus"

	assert.Nil(t, svc.NotifyMany(context.Background(), []uint{1}, p))
	assert.Empty(t, store.inserted)
	assert.Empty(t, pusher.pushed)
}

func TestNotifyManyStampsRideSummary(t *testing.T) {
	meetup := time.Date(2026, 9, 12, 7, 30, 0, 0, time.UTC)
	rides := &fakeRides{ride: &models.Ride{
		Title:          "Dawn Patrol",
		MeetupLocation: "North Gate",
		MeetupTime:     meetup,
	}}
	store := &fakeStore{}
	svc := newTestService(store, rides, &fakePusher{})

	created := svc.NotifyMany(context.Background(), []uint{4}, testPayload())

	require.Len(t, created, 1)
	require.NotNil(t, created[0].Ride)
	assert.Equal(t, "Dawn Patrol", created[0].Ride.Title)
	assert.Equal(t, "North Gate", created[0].Ride.MeetupLocation)
	assert.True(t, meetup.Equal(created[0].Ride.MeetupTime))
}

func TestNotifyManySurvivesRideLookupFailure(t *testing.T) {
	rides := &fakeRides{err: fmt.Errorf("ride gone")}
	store := &fakeStore{}
	svc := newTestService(store, rides, &fakePusher{})

	created := svc.NotifyMany(context.Background(), []uint{4}, testPayload())

	require.Len(t, created, 1)
	assert.Nil(t, created[0].Ride)
}

func TestNotifyOnePersistsSingleRecord(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)
	p := testPayload()
	p.Type = models.NotificationRideJoined

	n, err := svc.NotifyOne(context.Background(), 11, p)

	require.NoError(t, err)
	assert.Equal(t, uint(11), n.UserID)
	assert.Equal(t, models.NotificationRideJoined, n.Type)
	assert.Equal(t, 1, pusher.pushed[11])
}

func TestNotifyOneRejectsInvalidPayload(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, &fakePusher{})

	p := testPayload()
	p.Message = ""

	_, err := svc.NotifyOne(context.Background(), 11, p)
	assert.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestNotifyOnePropagatesStoreError(t *testing.T) {
	store := &fakeStore{failFor: map[uint]bool{11: true}}
	pusher := &fakePusher{}
	svc := newTestService(store, nil, pusher)

	_, err := svc.NotifyOne(context.Background(), 11, testPayload())
	assert.Error(t, err)
	assert.Zero(t, pusher.pushed[11])
}
