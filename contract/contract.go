//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"ipk-chat/domain"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IMetrics is the sink for the two server counters.
type IMetrics interface {
	IncrementActiveClients()
	DecrementActiveClients()
	IncrementMessagesSent()
}

// IRegistry tracks which session is in which room.
// Returned member slices are snapshots, safe to use once the lock is released.
type IRegistry interface {
	Join(session *domain.Session, room domain.RoomName) error
	Leave(session *domain.Session) bool
	MembersExcluding(room domain.RoomName, session *domain.Session) []*domain.Session
	Members(room domain.RoomName) []*domain.Session
	RoomOf(session *domain.Session) (domain.RoomName, bool)
	Occupancy() map[domain.RoomName]int
}

// IBroadcaster delivers a line to every other member of the sender's room.
type IBroadcaster interface {
	Broadcast(ctx context.Context, sender *domain.Session, line []byte, delivery domain.Delivery) domain.Report
}
