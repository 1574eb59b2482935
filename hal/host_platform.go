package hal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stereo/vr"
)

// DisplayKind selects what display enumeration reports.
type DisplayKind string

const (
	DisplaySim    DisplayKind = "sim"
	DisplayRemote DisplayKind = "remote"
	DisplayEmpty  DisplayKind = "empty" // supported, nothing connected
	DisplayNone   DisplayKind = "none"  // platform without display support
)

// ParseDisplayKind validates a display kind name.
func ParseDisplayKind(s string) (DisplayKind, error) {
	switch k := DisplayKind(s); k {
	case DisplaySim, DisplayRemote, DisplayEmpty, DisplayNone:
		return k, nil
	}
	return "", fmt.Errorf("unknown display kind %q", s)
}

type pacedDisplay interface {
	vr.Display
	pumpFrames(now time.Time, before func()) int
	close() error
}

type platformConfig struct {
	kind          DisplayKind
	sim           SimDisplayConfig
	remoteURL     string
	remoteTimeout time.Duration
	controllers   int
	gamepads      bool
}

// Platform is the host implementation of vr.Platform.
type Platform struct {
	cfg   platformConfig
	log   Logger
	now   func() time.Time
	start time.Time

	// enumMu serialises enumeration and is never taken by the frame path,
	// so a slow remote dial cannot stall pumpFrames.
	enumMu  sync.Mutex
	queried bool

	mu       sync.Mutex
	sink     func(vr.Notification)
	displays []pacedDisplay
	closed   bool

	controllers []*simController
	gamepads    *hostGamepads
	devices     []*vr.InputDevice
}

func newPlatform(cfg platformConfig, log Logger, now func() time.Time) *Platform {
	if now == nil {
		now = time.Now
	}
	p := &Platform{cfg: cfg, log: log, now: now, start: now()}
	for i := 0; i < cfg.controllers; i++ {
		p.controllers = append(p.controllers, newSimController(i, log, now))
	}
	if cfg.gamepads {
		p.gamepads = newHostGamepads()
	}
	return p
}

// Displays enumerates displays of the configured kind. A remote display is
// dialed on the first call and reused afterwards.
func (p *Platform) Displays(ctx context.Context) ([]vr.Display, error) {
	p.enumMu.Lock()
	defer p.enumMu.Unlock()

	if !p.queried {
		var found pacedDisplay
		switch p.cfg.kind {
		case DisplayNone:
			return nil, vr.ErrNotSupported
		case DisplayEmpty:
		case DisplaySim:
			found = newSimDisplay(p.cfg.sim, p.log, p.post, p.now)
		case DisplayRemote:
			d, err := dialRemote(ctx, p.cfg.remoteURL, p.cfg.remoteTimeout, p.log, p.post)
			if err != nil {
				return nil, err
			}
			found = d
		default:
			return nil, fmt.Errorf("hal: %w: display kind %q", vr.ErrNotSupported, p.cfg.kind)
		}
		p.queried = true
		if found != nil {
			p.mu.Lock()
			closed := p.closed
			if !closed {
				p.displays = append(p.displays, found)
			}
			p.mu.Unlock()
			if closed {
				found.close()
				return nil, ErrRemoteClosed
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]vr.Display, len(p.displays))
	for i, d := range p.displays {
		out[i] = d
	}
	return out, nil
}

func (p *Platform) Notify(fn func(vr.Notification)) {
	p.mu.Lock()
	p.sink = fn
	p.mu.Unlock()
}

func (p *Platform) post(n vr.Notification) {
	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()
	if sink != nil {
		sink(n)
	}
}

// Emit raises a notification for the first display, as if the device sent it.
func (p *Platform) Emit(kind vr.NotificationKind) bool {
	d := p.first()
	if d == nil {
		return false
	}
	p.post(vr.Notification{Kind: kind, Display: d})
	return true
}

// ResetPose recenters the first display.
func (p *Platform) ResetPose() {
	if d := p.first(); d != nil {
		d.ResetPose()
	}
}

func (p *Platform) first() pacedDisplay {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.displays) == 0 {
		return nil
	}
	return p.displays[0]
}

// InputDevices returns the simulated controllers followed by connected gamepads.
// The returned slice is reused by the next call.
func (p *Platform) InputDevices() []*vr.InputDevice {
	t := p.now().Sub(p.start)
	p.devices = p.devices[:0]
	for _, c := range p.controllers {
		c.update(t)
		p.devices = append(p.devices, &c.dev)
	}
	if p.gamepads != nil {
		p.devices = p.gamepads.appendDevices(p.devices, len(p.controllers))
	}
	return p.devices
}

// pumpFrames runs due display-paced callbacks.
func (p *Platform) pumpFrames(now time.Time, before func()) int {
	p.mu.Lock()
	ds := append([]pacedDisplay(nil), p.displays...)
	p.mu.Unlock()
	n := 0
	for _, d := range ds {
		n += d.pumpFrames(now, before)
	}
	return n
}

// Close releases display connections.
func (p *Platform) Close() error {
	p.mu.Lock()
	ds := p.displays
	p.displays = nil
	p.closed = true
	p.mu.Unlock()
	var first error
	for _, d := range ds {
		if err := d.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
