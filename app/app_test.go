package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"stereo/hal"
	"stereo/internal/config"
	"stereo/vr"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func runHeadless(t *testing.T, cfg *config.Config, frames uint64) (*system, string) {
	t.Helper()
	var out syncBuffer
	var sys *system
	err := hal.RunHeadless(context.Background(), func(h hal.HAL) func() error {
		sys = newSystem(h, cfg)
		return sys.step
	}, hal.HeadlessConfig{Hz: 1000, Frames: frames, Host: HostConfig(cfg, &out)})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	return sys, out.String()
}

func TestHeadlessPresentsOnStart(t *testing.T) {
	cfg := config.Default()
	cfg.Display.PresentOnStart = true
	cfg.Render.Width, cfg.Render.Height = 160, 90
	cfg.Display.Sim.EyeWidth, cfg.Display.Sim.EyeHeight = 80, 90
	cfg.Display.Sim.RefreshHz = 500

	sys, log := runHeadless(t, cfg, 300)

	if sys.sched.Mode() != vr.DeviceLoop {
		t.Fatalf("Mode() = %v, want device", sys.sched.Mode())
	}
	if sys.session.State() != vr.Presenting {
		t.Fatalf("State() = %v, want presenting; log:\n%s", sys.session.State(), log)
	}
	if sys.sched.SubmittedFrames() == 0 {
		t.Fatalf("no frames submitted; log:\n%s", log)
	}
	w, h := sys.h.Canvas().Size()
	if w != 160 || h != 90 {
		t.Fatalf("canvas = %dx%d, want 2x eye width by eye height", w, h)
	}
	for _, want := range []string{"app: stereo", "frames now paced by Simulated HMD", "app: [X] Exit VR"} {
		if !strings.Contains(log, want) {
			t.Fatalf("log missing %q:\n%s", want, log)
		}
	}
}

func TestHeadlessWithoutDisplaySupport(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Kind = "none"
	cfg.Render.Width, cfg.Render.Height = 64, 36

	sys, log := runHeadless(t, cfg, 20)

	if sys.sched.Mode() != vr.WindowLoop {
		t.Fatalf("Mode() = %v, want window", sys.sched.Mode())
	}
	if sys.sched.Frames() == 0 {
		t.Fatalf("window loop never ran")
	}
	if !strings.Contains(log, "does not support") {
		t.Fatalf("log missing unsupported message:\n%s", log)
	}
}

func TestSceneViewDrawsIntoViewport(t *testing.T) {
	h := hal.New(hal.Config{Width: 64, Height: 32, Display: hal.DisplayEmpty, Output: io.Discard})
	c := h.Canvas()
	cfg := config.Default().Render
	cfg.Grid = 0
	v := NewSceneView(c, cfg)

	c.Clear()
	bg := append([]byte(nil), c.Framebuffer().Buffer()[:4]...)
	c.Viewport(32, 0, 32, 32)
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.Translate3D(0, 0, -3)
	v.Render(proj, view)
	v.DrawShape(mgl32.Ident4(), mgl32.Vec4{1, 0, 0, 1})

	buf := c.Framebuffer().Buffer()
	stride := c.Framebuffer().StrideBytes()
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			off := y*stride + x*4
			if !bytes.Equal(buf[off:off+4], bg) {
				t.Fatalf("left half pixel (%d,%d) changed", x, y)
			}
		}
	}
	center := 16*stride + 48*4
	if buf[center] <= buf[center+1] || buf[center] <= buf[center+2] {
		t.Fatalf("right viewport center = %v, want a red shape", buf[center:center+4])
	}
}

func TestStatusOffersPresentAction(t *testing.T) {
	cfg := config.Default()
	cfg.Render.HUD = false
	h := hal.New(HostConfig(cfg, io.Discard))
	sys := newSystem(h, cfg)

	if got := sys.status(); got.Display != "" || got.Action != "" {
		t.Fatalf("status before discovery = %+v", got)
	}
	sys.onPresentUI(true)
	if !strings.Contains(sys.status().Action, "Exit VR") {
		t.Fatalf("action = %q, want Exit VR", sys.status().Action)
	}
}

func TestClearColorFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.HUD = false
	cfg.Render.ClearColor = [3]uint8{0x20, 0x40, 0x60}
	h := hal.New(HostConfig(cfg, io.Discard))
	newSystem(h, cfg)

	c := h.Canvas()
	c.Clear()
	if got := c.Framebuffer().Buffer()[:4]; !bytes.Equal(got, []byte{0x20, 0x40, 0x60, 0xFF}) {
		t.Fatalf("cleared pixel = %v, want configured clear color", got)
	}
}
