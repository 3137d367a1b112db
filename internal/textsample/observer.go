package textsample

import "github.com/mgpai22/chaptrack/internal/track"

type EventKind int

const (
	// a different sample became current
	EventCurrent EventKind = iota + 1
	EventEdited
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCurrent:
		return "current"
	case EventEdited:
		return "edited"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event describes a change to a store. Sample is a copy.
type Event struct {
	Kind    EventKind
	TrackID track.ID
	Index   int
	Sample  TextSample
}

// SampleObserver receives store events. Observers run on the caller's
// goroutine after the store has released its lock.
type SampleObserver interface {
	SampleEvent(Event)
}

// ObserverFunc adapts a function to SampleObserver.
type ObserverFunc func(Event)

func (f ObserverFunc) SampleEvent(e Event) {
	f(e)
}
