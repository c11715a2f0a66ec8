package runtime

import (
	"ipk-chat/domain"
	"ipk-chat/errors"
	"sync"

	"github.com/samber/lo"
)

// RoomRegistry maps every room to its members, in join order, and every
// session to its room. Both indexes are guarded by the same lock so a move
// between rooms is observed as a single step.
type RoomRegistry struct {
	mu          sync.RWMutex
	roomMembers map[domain.RoomName][]*domain.Session
	sessions    map[*domain.Session]domain.RoomName
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		roomMembers: make(map[domain.RoomName][]*domain.Session),
		sessions:    make(map[*domain.Session]domain.RoomName),
	}
}

// Join moves the session to room, removing it from its previous room first.
// The session is appended at the end of the member list.
func (r *RoomRegistry) Join(session *domain.Session, room domain.RoomName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remove(session)
	if lo.Contains(r.roomMembers[room], session) {
		return errors.ErrDuplicateMember
	}
	r.roomMembers[room] = append(r.roomMembers[room], session)
	r.sessions[session] = room
	session.MoveTo(room)
	return nil
}

// Leave removes the session from whichever room lists it.
// It returns false when the session was in no room.
func (r *RoomRegistry) Leave(session *domain.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := r.remove(session)
	session.MoveTo("")
	return left
}

// MembersExcluding returns a snapshot of the room members other than session.
// The caller writes to them after the lock has been released.
func (r *RoomRegistry) MembersExcluding(room domain.RoomName, session *domain.Session) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Filter(r.roomMembers[room], func(member *domain.Session, _ int) bool {
		return member != session
	})
}

func (r *RoomRegistry) Members(room domain.RoomName) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*domain.Session(nil), r.roomMembers[room]...)
}

func (r *RoomRegistry) RoomOf(session *domain.Session) (domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.sessions[session]
	return room, ok
}

// Occupancy counts the members of every non empty room.
func (r *RoomRegistry) Occupancy() map[domain.RoomName]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapValues(r.roomMembers, func(members []*domain.Session, _ domain.RoomName) int {
		return len(members)
	})
}

// remove must be called with the write lock held.
// Empty rooms are dropped so the map doesn't grow with stale entries.
func (r *RoomRegistry) remove(session *domain.Session) bool {
	room, ok := r.sessions[session]
	if !ok {
		return false
	}
	delete(r.sessions, session)

	members := lo.Without(r.roomMembers[room], session)
	if len(members) == 0 {
		delete(r.roomMembers, room)
	} else {
		r.roomMembers[room] = members
	}
	return true
}
