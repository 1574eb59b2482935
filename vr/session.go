package vr

import (
	"context"
	"errors"
	"fmt"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Platform Platform
	Canvas   Canvas
	Logger   Logger

	// Spawn runs blocking platform calls. Defaults to a new goroutine per call.
	Spawn Spawner

	// OnPresentUI is called on presentation changes of a display with an external
	// screen, so the host can swap its "Enter VR" / "Exit VR" controls.
	OnPresentUI func(presenting bool)
}

// Session owns display discovery and the presentation state.
type Session struct {
	platform Platform
	canvas   Canvas
	log      Logger
	spawn    Spawner
	onUI     func(bool)

	events Dispatcher

	display    Display
	state      SessionState
	discovered bool
	subscribed bool
}

// NewSession creates a session without a display. Call Discover to find one.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		platform: cfg.Platform,
		canvas:   cfg.Canvas,
		log:      cfg.Logger,
		spawn:    cfg.Spawn,
		onUI:     cfg.OnPresentUI,
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	if s.spawn == nil {
		s.spawn = goSpawner
	}

	s.events.Handle(EventDisplaysFound, s.onDisplaysFound)
	s.events.Handle(EventDiscoverFailed, s.onDiscoverFailed)
	s.events.Handle(EventPresentResolved, s.onTransitionResolved)
	s.events.Handle(EventExitResolved, s.onTransitionResolved)
	s.events.Handle(EventPresentRejected, func(ev Event) { s.logf("requestPresent failed: %v", ev.Err) })
	s.events.Handle(EventExitRejected, func(ev Event) { s.logf("exitPresent failed: %v", ev.Err) })
	s.events.Handle(EventPresentChange, func(Event) { s.onPresentationChange() })
	s.events.Handle(EventActivate, func(Event) { s.RequestPresent() })
	s.events.Handle(EventDeactivate, func(Event) { s.ExitPresent() })
	return s
}

// Events returns the session dispatcher.
func (s *Session) Events() *Dispatcher { return &s.events }

// Pump runs pending event handlers on the calling goroutine.
func (s *Session) Pump() int { return s.events.Drain() }

// Display returns the active display or nil.
func (s *Session) Display() Display { return s.display }

// State returns the presentation state.
func (s *Session) State() SessionState { return s.state }

// Discover asks the platform for displays. The first display found becomes active.
// It may be called once; later calls are ignored.
func (s *Session) Discover(ctx context.Context) {
	if s.discovered {
		return
	}
	s.discovered = true
	if s.platform == nil {
		s.events.Post(Event{Kind: EventDiscoverFailed, Err: ErrNotSupported})
		return
	}
	s.spawn(func() {
		displays, err := s.platform.Displays(ctx)
		if err == nil && len(displays) == 0 {
			err = ErrNoDisplays
		}
		if err != nil {
			s.events.Post(Event{Kind: EventDiscoverFailed, Err: err})
			return
		}
		s.events.Post(Event{Kind: EventDisplaysFound, Displays: displays})
	})
}

func (s *Session) onDiscoverFailed(ev Event) {
	switch {
	case errors.Is(ev.Err, ErrNotSupported):
		s.logf("platform does not support VR displays")
	case errors.Is(ev.Err, ErrNoDisplays):
		s.logf("VR supported, but no displays found")
	default:
		s.logf("display enumeration failed: %v", ev.Err)
	}
}

func (s *Session) onDisplaysFound(ev Event) {
	if s.display != nil {
		return
	}
	var d Display
	for _, c := range ev.Displays {
		if c != nil {
			d = c
			break
		}
	}
	if d == nil {
		s.logf("VR supported, but no displays found")
		return
	}
	s.display = d
	s.state = NotPresenting
	if d.IsPresenting() {
		s.state = Presenting
	}

	caps := d.Capabilities()
	s.logf("display %q: canPresent=%t externalDisplay=%t position=%t",
		d.Name(), caps.CanPresent, caps.HasExternalDisplay, caps.HasPosition)
	if st := d.StageParameters(); st != nil && st.SizeX > 0 && st.SizeZ > 0 {
		s.logf("stage %.2fx%.2f", st.SizeX, st.SizeZ)
	}

	if !s.subscribed && s.platform != nil {
		s.subscribed = true
		s.platform.Notify(s.notify)
	}
	s.Resize()
}

// notify is the platform notification sink and may run on any goroutine.
func (s *Session) notify(n Notification) {
	var kind EventKind
	switch n.Kind {
	case NotifyPresentChange:
		kind = EventPresentChange
	case NotifyActivate:
		kind = EventActivate
	case NotifyDeactivate:
		kind = EventDeactivate
	default:
		return
	}
	if !s.events.Post(Event{Kind: kind, Display: n.Display}) {
		s.logf("event queue full, dropped %s", n.Kind)
	}
}

// RequestPresent asks the display to start presenting the canvas.
func (s *Session) RequestPresent() {
	d := s.display
	if d == nil {
		s.logf("requestPresent failed: %v", ErrNoDisplays)
		return
	}
	layers := []Layer{{Source: s.canvas}}
	s.spawn(func() {
		if err := d.RequestPresent(layers); err != nil {
			s.events.Post(Event{Kind: EventPresentRejected, Display: d, Err: err})
			return
		}
		s.events.Post(Event{Kind: EventPresentResolved, Display: d})
	})
}

// ExitPresent asks the display to stop presenting. It is a no-op when not presenting.
func (s *Session) ExitPresent() {
	d := s.display
	if d == nil || !d.IsPresenting() {
		return
	}
	s.spawn(func() {
		if err := d.ExitPresent(); err != nil {
			s.events.Post(Event{Kind: EventExitRejected, Display: d, Err: err})
			return
		}
		s.events.Post(Event{Kind: EventExitResolved, Display: d})
	})
}

// ResetPose recenters the display's seated origin.
func (s *Session) ResetPose() {
	if s.display != nil {
		s.display.ResetPose()
	}
}

// A resolved request only syncs state; the platform's presentchange drives the UI.
func (s *Session) onTransitionResolved(ev Event) {
	if ev.Display != s.display || s.display == nil {
		return
	}
	s.syncState()
}

func (s *Session) onPresentationChange() {
	if s.display == nil {
		return
	}
	s.syncState()
	s.Resize()

	if s.display.Capabilities().HasExternalDisplay && s.onUI != nil {
		s.onUI(s.state == Presenting)
	}
}

func (s *Session) syncState() {
	next := NotPresenting
	if s.display.IsPresenting() {
		next = Presenting
	}
	if next != s.state {
		s.logf("session %s", next)
	}
	s.state = next
}

// Resize sizes the canvas for the current mode.
func (s *Session) Resize() {
	if s.canvas == nil {
		return
	}
	w, h := ResizeTarget(s.display, s.state, s.canvas)
	s.canvas.SetSize(w, h)
}

// ResizeTarget computes the canvas size policy: side-by-side eye buffers while
// presenting, client size times the device pixel ratio otherwise.
func ResizeTarget(d Display, state SessionState, c Canvas) (w, h int) {
	if d != nil && state == Presenting {
		l := d.EyeParameters(EyeLeft)
		r := d.EyeParameters(EyeRight)
		return max(l.RenderWidth, r.RenderWidth) * 2, max(l.RenderHeight, r.RenderHeight)
	}
	cw, ch := c.ClientSize()
	dpr := c.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}
	return int(cw * dpr), int(ch * dpr)
}

func (s *Session) logf(format string, args ...any) {
	s.log.WriteLineString("vr: " + fmt.Sprintf(format, args...))
}
