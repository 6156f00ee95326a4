package notify

import "github.com/titoride/backend/internal/models"

// Recipient resolution is pure set arithmetic: given an event's actor and
// the ride snapshot, compute the deduplicated user IDs to notify. The actor
// is always excluded. Resolvers perform no I/O and assume valid input.

// ForNewRide returns every registered user except the actor. The caller
// supplies the full current user-ID universe.
func ForNewRide(actorID uint, allUserIDs []uint) []uint {
	set := newRecipientSet(actorID)
	for _, id := range allUserIDs {
		set.add(id)
	}
	return set.ids
}

// ForRideUpdate returns the ride's participants minus the actor. Callers
// only invoke this when the meetup time and/or location actually changed;
// the resolver does not check what changed.
func ForRideUpdate(actorID uint, ride *models.Ride) []uint {
	set := newRecipientSet(actorID)
	for _, p := range ride.Participants {
		set.add(p.UserID)
	}
	return set.ids
}

// ForJoin returns the ride creator, unless the creator is the actor.
func ForJoin(actorID uint, ride *models.Ride) []uint {
	set := newRecipientSet(actorID)
	set.add(ride.Creator.UserID)
	return set.ids
}

// ForComment returns the ride creator plus every participant, minus the actor.
func ForComment(actorID uint, ride *models.Ride) []uint {
	set := newRecipientSet(actorID)
	set.add(ride.Creator.UserID)
	for _, p := range ride.Participants {
		set.add(p.UserID)
	}
	return set.ids
}

type recipientSet struct {
	exclude uint
	seen    map[uint]struct{}
	ids     []uint
}

func newRecipientSet(exclude uint) *recipientSet {
	return &recipientSet{exclude: exclude, seen: make(map[uint]struct{})}
}

func (s *recipientSet) add(id uint) {
	if id == s.exclude {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}
