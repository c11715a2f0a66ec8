// Package domain contains core concepts of the chat system.
// This file defines the Session owned by one connection handler.
// No parsing, registry or transport logic should be added here.
package domain

import (
	"context"
	"fmt"
	"io"
	"ipk-chat/errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state of one connected client.
//
// Identity fields are only touched by the goroutine handling the connection
// (the room is written by the registry, on behalf of that same goroutine).
// Writes to the connection may come from any goroutine broadcasting to the
// session and are serialized by writeMu so that two messages never interleave.
type Session struct {
	ID         uuid.UUID
	RemoteAddr string

	conn    io.WriteCloser
	writeMu sync.Mutex
	closed  atomic.Bool

	userID        string
	displayName   string
	room          RoomName
	authenticated bool
	counted       bool
}

func NewSession(conn io.WriteCloser, remoteAddr string) *Session {
	return &Session{
		ID:         uuid.New(),
		RemoteAddr: remoteAddr,
		conn:       conn,
	}
}

func (s *Session) UserID() string        { return s.userID }
func (s *Session) DisplayName() string   { return s.displayName }
func (s *Session) Room() RoomName        { return s.room }
func (s *Session) IsAuthenticated() bool { return s.authenticated }

// IsCounted reports whether the session was added to the active clients metric.
func (s *Session) IsCounted() bool { return s.counted }

// Authenticate is a one way transition, the user identifier never changes afterwards.
func (s *Session) Authenticate(userID, displayName string) {
	if s.authenticated {
		return
	}
	s.userID = userID
	s.displayName = displayName
	s.authenticated = true
}

func (s *Session) Rename(displayName string) {
	s.displayName = displayName
}

func (s *Session) MarkCounted() {
	s.counted = true
}

// MoveTo records the room the session belongs to.
// Only the room registry calls it, while holding its lock.
func (s *Session) MoveTo(room RoomName) {
	s.room = room
}

// Send writes one encoded line in a single write.
func (s *Session) Send(line []byte) error {
	return s.Deliver(context.Background(), line, Atomic())
}

// Deliver writes payload following the delivery mode.
// The session write lock is held for the whole payload, including the pauses
// between chunks, so concurrent deliveries to this session are queued.
func (s *Session) Deliver(ctx context.Context, payload []byte, delivery Delivery) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for i, chunk := range delivery.Chunks(payload) {
		if i > 0 && delivery.Delay > 0 {
			if err := pause(ctx, delivery.Delay); err != nil {
				return err
			}
		}
		if s.closed.Load() {
			return errors.ErrSessionClosed
		}
		if _, err := s.conn.Write(chunk); err != nil {
			return fmt.Errorf("write to %s: %w", s.RemoteAddr, err)
		}
	}
	return nil
}

// Close closes the underlying connection once. It does not wait for the write
// lock: closing the socket is what unblocks a writer stuck on a stalled peer.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
