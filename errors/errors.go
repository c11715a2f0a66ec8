package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Protocol taxonomy. Each rejection maps to exactly one reply line.
	ErrMalformedFrame       = fmt.Errorf("invalid message format")
	ErrNotAuthenticated     = fmt.Errorf("invalid AUTH format")
	ErrAuthFailed           = fmt.Errorf("authentication failed")
	ErrDisplayNameMismatch  = fmt.Errorf("display name mismatch")
	ErrInappropriateMessage = fmt.Errorf("inappropriate message")
	ErrUnknownRoom          = fmt.Errorf("unexisting room")

	ErrDuplicateMember = fmt.Errorf("session is already a member of the room")
	ErrDelivery        = fmt.Errorf("delivery failed")
	ErrSessionClosed   = fmt.Errorf("session is closed")
)

// Is lets callers importing this package match wrapped sentinels.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
