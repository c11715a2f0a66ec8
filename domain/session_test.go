package domain

import (
	"bytes"
	"context"
	"fmt"
	"ipk-chat/errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed int
	err    error
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.writes = append(c.writes, bytes.Clone(p))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func TestSession_Authenticate_Is_One_Way(t *testing.T) {
	req := require.New(t)
	session := NewSession(&fakeConn{}, "127.0.0.1:1")

	// Given a fresh session
	req.False(session.IsAuthenticated())
	req.Empty(session.Room())

	// When it authenticates twice
	session.Authenticate("alice", "Alice")
	session.Authenticate("mallory", "Mallory")

	// Then the first identity is kept
	req.True(session.IsAuthenticated())
	req.Equal("alice", session.UserID())
	req.Equal("Alice", session.DisplayName())

	session.Rename("Ally")
	req.Equal("Ally", session.DisplayName())
	req.Equal("alice", session.UserID())
}

func TestSession_Deliver_Segmented(t *testing.T) {
	req := require.New(t)
	conn := &fakeConn{}
	session := NewSession(conn, "127.0.0.1:1")

	start := time.Now()
	err := session.Deliver(context.Background(), []byte("0123456789ab"), Segmented(5, 10*time.Millisecond))

	req.NoError(err)
	req.Equal([][]byte{[]byte("01234"), []byte("56789"), []byte("ab")}, conn.writes)
	// Two pauses, none after the last chunk
	req.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
}

func TestSession_Write_Error_Is_Wrapped(t *testing.T) {
	req := require.New(t)
	session := NewSession(&fakeConn{err: fmt.Errorf("broken pipe")}, "127.0.0.1:1")

	err := session.Send([]byte("x\r\n"))

	req.ErrorContains(err, "write to 127.0.0.1:1")
	req.ErrorContains(err, "broken pipe")
}

func TestSession_Close_Once(t *testing.T) {
	req := require.New(t)
	conn := &fakeConn{}
	session := NewSession(conn, "127.0.0.1:1")

	req.NoError(session.Close())
	req.NoError(session.Close())

	req.True(session.IsClosed())
	req.Equal(1, conn.closed)
	req.ErrorIs(session.Send([]byte("late\r\n")), errors.ErrSessionClosed)
}

func TestSession_Concurrent_Deliveries_Do_Not_Interleave(t *testing.T) {
	req := require.New(t)
	conn := &fakeConn{}
	session := NewSession(conn, "127.0.0.1:1")

	lines := [][]byte{[]byte("aaaaaaaaaa\r\n"), []byte("bbbbbbbbbb\r\n"), []byte("cccccccccc\r\n")}
	var wg sync.WaitGroup
	for _, line := range lines {
		wg.Add(1)
		go func(line []byte) {
			defer wg.Done()
			_ = session.Deliver(context.Background(), line, Segmented(2, time.Millisecond))
		}(line)
	}
	wg.Wait()

	// Every line is written as one contiguous run of chunks
	stream := bytes.Join(conn.writes, nil)
	req.Len(stream, 3*len(lines[0]))
	for i := 0; i < len(stream); i += len(lines[0]) {
		req.Contains(lines, stream[i:i+len(lines[0])])
	}
}

func TestParseRoom(t *testing.T) {
	req := require.New(t)

	room, ok := ParseRoom("nondefault")
	req.True(ok)
	req.Equal(NonDefaultRoom, room)

	_, ok = ParseRoom("Default")
	req.False(ok)
	req.Len(KnownRooms(), 2)
}
