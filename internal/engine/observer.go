package engine

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/devinfo/internal/stack"
)

// EventType names an engine event.
type EventType string

const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"

	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceFailed   EventType = "resource.failed"
	EventResourceDeleting EventType = "resource.deleting"
	EventResourceDeleted  EventType = "resource.deleted"
)

// Phases reported in events.
const (
	PhaseUp      = "up"
	PhaseDestroy = "destroy"
)

// Event is one step of an engine run.
type Event struct {
	Type      EventType
	Phase     string
	URN       string
	Kind      stack.Kind
	ID        string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// Observer receives engine events. Events of one wave may arrive
// concurrently.
type Observer interface {
	Event(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Event implements Observer.
func (f ObserverFunc) Event(e Event) { f(e) }

// LogObserver writes events as structured log lines.
type LogObserver struct {
	log logr.Logger
}

// NewLogObserver returns an Observer logging through log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Event implements Observer.
func (o *LogObserver) Event(e Event) {
	kv := []any{"phase", e.Phase}
	if e.URN != "" {
		kv = append(kv, "urn", e.URN)
	}
	if e.Kind != "" {
		kv = append(kv, "kind", string(e.Kind))
	}
	if e.ID != "" {
		kv = append(kv, "id", e.ID)
	}
	if e.Duration > 0 {
		kv = append(kv, "duration", e.Duration.Round(time.Millisecond).String())
	}

	switch e.Type {
	case EventResourceFailed, EventPhaseFailed:
		o.log.Error(e.Err, string(e.Type), kv...)
	case EventResourceCreating, EventResourceDeleting:
		o.log.V(1).Info(string(e.Type), kv...)
	default:
		o.log.Info(string(e.Type), kv...)
	}
}

// multiObserver fans events out.
type multiObserver []Observer

func (m multiObserver) Event(e Event) {
	for _, o := range m {
		o.Event(e)
	}
}
