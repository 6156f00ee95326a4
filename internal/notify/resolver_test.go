package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/titoride/backend/internal/models"
)

func testRide(creatorID uint, participantIDs ...uint) *models.Ride {
	ride := &models.Ride{
		Title:   "Morning Loop",
		Creator: models.UserSnapshot{UserID: creatorID, Name: "Creator"},
	}
	for _, id := range participantIDs {
		ride.Participants = append(ride.Participants, models.Participant{
			UserID:   id,
			JoinedAt: time.Now(),
		})
	}
	return ride
}

func TestForNewRideExcludesActor(t *testing.T) {
	got := ForNewRide(2, []uint{1, 2, 3, 4})
	assert.ElementsMatch(t, []uint{1, 3, 4}, got)
}

func TestForNewRideEmptyUniverse(t *testing.T) {
	assert.Empty(t, ForNewRide(1, nil))
	assert.Empty(t, ForNewRide(1, []uint{1}))
}

func TestForNewRideDeduplicates(t *testing.T) {
	got := ForNewRide(9, []uint{3, 3, 5, 3, 5})
	assert.Equal(t, []uint{3, 5}, got)
}

func TestForRideUpdateParticipantsMinusActor(t *testing.T) {
	ride := testRide(1, 2, 3, 4)
	got := ForRideUpdate(3, ride)
	assert.ElementsMatch(t, []uint{2, 4}, got)
}

func TestForRideUpdateNoParticipants(t *testing.T) {
	assert.Empty(t, ForRideUpdate(1, testRide(1)))
}

func TestForJoinNotifiesCreator(t *testing.T) {
	ride := testRide(1, 2)
	assert.Equal(t, []uint{1}, ForJoin(5, ride))
}

func TestForJoinCreatorIsActor(t *testing.T) {
	ride := testRide(1, 2)
	assert.Empty(t, ForJoin(1, ride))
}

func TestForCommentCreatorAndParticipants(t *testing.T) {
	ride := testRide(1, 2, 3)
	got := ForComment(2, ride)
	assert.ElementsMatch(t, []uint{1, 3}, got)
}

func TestForCommentCreatorAlsoParticipant(t *testing.T) {
	// The creator appearing in the participant list must not produce a
	// duplicate recipient.
	ride := testRide(1, 1, 2)
	got := ForComment(3, ride)
	assert.ElementsMatch(t, []uint{1, 2}, got)
	assert.Len(t, got, 2)
}

func TestForCommentOutsiderActor(t *testing.T) {
	ride := testRide(1, 2)
	got := ForComment(7, ride)
	assert.ElementsMatch(t, []uint{1, 2}, got)
}
