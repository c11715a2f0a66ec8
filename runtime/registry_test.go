package runtime

import (
	"io"
	"ipk-chat/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type discardConn struct{}

func (discardConn) Write(p []byte) (int, error) { return len(p), nil }
func (discardConn) Close() error                { return nil }

var _ io.WriteCloser = discardConn{}

func newSession() *domain.Session {
	return domain.NewSession(discardConn{}, "127.0.0.1:0")
}

func TestRoomRegistry_Join_Keeps_Insertion_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	alice, bob, carol := newSession(), newSession(), newSession()

	// Given no room is populated
	req.Empty(registry.Occupancy())

	// When three sessions join the default room
	req.NoError(registry.Join(alice, domain.DefaultRoom))
	req.NoError(registry.Join(bob, domain.DefaultRoom))
	req.NoError(registry.Join(carol, domain.DefaultRoom))

	// Then they are listed in join order
	req.Equal([]*domain.Session{alice, bob, carol}, registry.Members(domain.DefaultRoom))
	req.Equal(domain.DefaultRoom, alice.Room())
	req.Equal(map[domain.RoomName]int{domain.DefaultRoom: 3}, registry.Occupancy())
}

func TestRoomRegistry_Join_Moves_Between_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	alice, bob := newSession(), newSession()
	req.NoError(registry.Join(alice, domain.DefaultRoom))
	req.NoError(registry.Join(bob, domain.DefaultRoom))

	// When alice moves to the other room
	req.NoError(registry.Join(alice, domain.NonDefaultRoom))

	// Then she is a member of exactly one room
	req.Equal([]*domain.Session{bob}, registry.Members(domain.DefaultRoom))
	req.Equal([]*domain.Session{alice}, registry.Members(domain.NonDefaultRoom))
	room, ok := registry.RoomOf(alice)
	req.True(ok)
	req.Equal(domain.NonDefaultRoom, room)
	req.Equal(domain.NonDefaultRoom, alice.Room())
}

func TestRoomRegistry_Join_Same_Room_Moves_To_The_End(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	alice, bob := newSession(), newSession()
	req.NoError(registry.Join(alice, domain.DefaultRoom))
	req.NoError(registry.Join(bob, domain.DefaultRoom))

	// When alice joins the room she is already in
	req.NoError(registry.Join(alice, domain.DefaultRoom))

	// Then she is listed once, last
	req.Equal([]*domain.Session{bob, alice}, registry.Members(domain.DefaultRoom))
}

func TestRoomRegistry_Leave(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	alice, bob := newSession(), newSession()
	req.NoError(registry.Join(alice, domain.DefaultRoom))

	// When a member leaves
	req.True(registry.Leave(alice))

	// Then the room is gone and the session has no room
	req.Empty(registry.Members(domain.DefaultRoom))
	req.Empty(registry.Occupancy())
	req.Equal(domain.RoomName(""), alice.Room())
	_, ok := registry.RoomOf(alice)
	req.False(ok)

	// And leaving twice, or without having joined, is a no-op
	req.False(registry.Leave(alice))
	req.False(registry.Leave(bob))
}

func TestRoomRegistry_MembersExcluding_Returns_A_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	alice, bob, carol := newSession(), newSession(), newSession()
	req.NoError(registry.Join(alice, domain.DefaultRoom))
	req.NoError(registry.Join(bob, domain.DefaultRoom))
	req.NoError(registry.Join(carol, domain.NonDefaultRoom))

	// When the recipients of alice are computed
	others := registry.MembersExcluding(domain.DefaultRoom, alice)
	req.Equal([]*domain.Session{bob}, others)

	// Then later mutations don't change the snapshot
	req.True(registry.Leave(bob))
	req.Equal([]*domain.Session{bob}, others)
	req.Empty(registry.MembersExcluding(domain.DefaultRoom, alice))
}

func TestRoomRegistry_Concurrent_Moves(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	rooms := domain.KnownRooms()

	sessions := make([]*domain.Session, 50)
	for i := range sessions {
		sessions[i] = newSession()
	}

	// When every session hops between rooms concurrently
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *domain.Session) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = registry.Join(s, rooms[i%len(rooms)])
			}
		}(s)
	}
	wg.Wait()

	// Then every session is listed exactly once
	total := 0
	for _, count := range registry.Occupancy() {
		total += count
	}
	req.Equal(len(sessions), total)
}
