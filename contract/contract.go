//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/Mohammad-Harkous/chat-app/domain/event"
	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
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

// EventSink receives live events for one connection. Consume must not block
// indefinitely: a slow consumer drops events rather than stalling the
// delivery path.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPresence is the injected presence registry: the sole source of truth for
// "is this user reachable right now". Last-writer-wins per user key; the
// generation returned by Register makes a superseded connection discoverable
// as stale so its handler can close out instead of unregistering the newer
// entry.
type IPresence interface {
	Register(userID uuid.UUID, sink EventSink) (generation uint64)
	Unregister(userID uuid.UUID, generation uint64) bool
	Lookup(userID uuid.UUID) (EventSink, bool)
	Sinks() []EventSink
	Online(userID uuid.UUID) bool
}
