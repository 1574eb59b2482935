package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Config selects the host devices.
type Config struct {
	Width, Height int

	Display       DisplayKind
	Sim           SimDisplayConfig
	RemoteURL     string
	RemoteTimeout time.Duration

	Controllers int
	Gamepads    bool

	// Output receives log lines; os.Stdout when nil.
	Output io.Writer
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

type hostHAL struct {
	logger   *hostLogger
	fb       *hostFramebuffer
	canvas   *Canvas
	platform *Platform
	now      func() time.Time
}

// New returns a host HAL implementation.
func New(cfg Config) HAL {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 540
	}
	if cfg.Display == "" {
		cfg.Display = DisplaySim
	}

	logger := &hostLogger{w: out}
	fb := newHostFramebuffer(cfg.Width, cfg.Height)
	return &hostHAL{
		logger: logger,
		fb:     fb,
		canvas: newCanvas(fb, float64(cfg.Width), float64(cfg.Height)),
		platform: newPlatform(platformConfig{
			kind:          cfg.Display,
			sim:           cfg.Sim,
			remoteURL:     cfg.RemoteURL,
			remoteTimeout: cfg.RemoteTimeout,
			controllers:   cfg.Controllers,
			gamepads:      cfg.Gamepads,
		}, logger, now),
		now: now,
	}
}

func (h *hostHAL) Logger() Logger           { return h.logger }
func (h *hostHAL) Framebuffer() Framebuffer { return h.fb }
func (h *hostHAL) Canvas() *Canvas          { return h.canvas }
func (h *hostHAL) Platform() *Platform      { return h.platform }

// step runs one host tick: window-paced callbacks, then display-paced ones.
// It returns the number of callbacks run.
func (h *hostHAL) step() int {
	n := h.canvas.pumpFrames()
	n += h.platform.pumpFrames(h.now(), h.canvas.Clear)
	return n
}

func (h *hostHAL) close() error {
	if err := h.platform.Close(); err != nil {
		return fmt.Errorf("hal: close: %w", err)
	}
	return nil
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

