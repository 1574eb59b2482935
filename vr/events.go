package vr

import (
	"sync"
	"sync/atomic"
)

// EventKind identifies a Dispatcher event.
type EventKind uint8

const (
	EventDisplaysFound EventKind = iota + 1
	EventDiscoverFailed
	EventPresentResolved
	EventPresentRejected
	EventExitResolved
	EventExitRejected
	EventPresentChange
	EventActivate
	EventDeactivate

	eventKindCount
)

func (k EventKind) String() string {
	switch k {
	case EventDisplaysFound:
		return "displays found"
	case EventDiscoverFailed:
		return "discover failed"
	case EventPresentResolved:
		return "present resolved"
	case EventPresentRejected:
		return "present rejected"
	case EventExitResolved:
		return "exit resolved"
	case EventExitRejected:
		return "exit rejected"
	case EventPresentChange:
		return "present change"
	case EventActivate:
		return "activate"
	case EventDeactivate:
		return "deactivate"
	default:
		return "unknown"
	}
}

// Event is a queued notification or asynchronous result.
type Event struct {
	Kind     EventKind
	Display  Display
	Displays []Display
	Err      error
}

// MailboxSlots is the Dispatcher queue capacity.
const MailboxSlots = 32

// Dispatcher is a fixed-size multi-producer, single-consumer event queue plus
// one handler per event kind.
//
// Post may be called from any goroutine. Handle and Drain belong to the frame goroutine.
type Dispatcher struct {
	_ [0]func() // prevent accidental copying.

	mu    sync.Mutex
	head  uint32
	tail  uint32
	slots [MailboxSlots]Event

	dropped  atomic.Uint64
	handlers [eventKindCount]func(Event)
}

// Handle registers fn for kind, replacing any previous handler.
func (d *Dispatcher) Handle(kind EventKind, fn func(Event)) {
	if kind == 0 || kind >= eventKindCount {
		return
	}
	d.handlers[kind] = fn
}

// Post enqueues ev, returning false if the queue is full.
func (d *Dispatcher) Post(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.head-d.tail >= MailboxSlots {
		d.dropped.Add(1)
		return false
	}
	d.slots[d.head%MailboxSlots] = ev
	d.head++
	return true
}

func (d *Dispatcher) tryRecv() (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tail == d.head {
		return Event{}, false
	}
	i := d.tail % MailboxSlots
	ev := d.slots[i]
	d.slots[i] = Event{}
	d.tail++
	return ev, true
}

// Drain runs the handler of every queued event in FIFO order, including events
// posted by the handlers themselves, and returns how many events it consumed.
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		ev, ok := d.tryRecv()
		if !ok {
			return n
		}
		n++
		if ev.Kind < eventKindCount {
			if fn := d.handlers[ev.Kind]; fn != nil {
				fn(ev)
			}
		}
	}
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.head - d.tail)
}

// Dropped returns how many events were rejected because the queue was full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }
