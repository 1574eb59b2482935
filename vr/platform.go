package vr

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNotSupported is returned by Platform.Displays when the host has no VR support.
	ErrNotSupported = errors.New("vr: not supported")

	// ErrNoDisplays reports a supported platform without any display.
	ErrNoDisplays = errors.New("vr: no displays found")
)

// Pacer schedules a callback for the next frame.
//
// Callbacks must run on the frame goroutine.
type Pacer interface {
	RequestAnimationFrame(cb func())
}

// Display is a head-mounted display handle.
type Display interface {
	Pacer

	Name() string
	Capabilities() Capabilities
	// StageParameters returns nil for seated-only tracking.
	StageParameters() *StageParameters
	IsPresenting() bool

	// RequestPresent and ExitPresent may block; Session calls them off the frame goroutine.
	RequestPresent(layers []Layer) error
	ExitPresent() error

	Pose() Pose
	EyeParameters(eye Eye) EyeParameters
	SubmitFrame(pose Pose)
	ResetPose()
}

// NotificationKind identifies a display notification.
type NotificationKind uint8

const (
	NotifyPresentChange NotificationKind = iota + 1
	NotifyActivate
	NotifyDeactivate
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyPresentChange:
		return "presentchange"
	case NotifyActivate:
		return "activate"
	case NotifyDeactivate:
		return "deactivate"
	default:
		return "unknown"
	}
}

// Notification is delivered by the platform, possibly from another goroutine.
type Notification struct {
	Kind    NotificationKind
	Display Display
}

// Platform is the host's display and input API.
type Platform interface {
	Displays(ctx context.Context) ([]Display, error)
	// InputDevices may contain nil entries.
	InputDevices() []*InputDevice
	Notify(fn func(Notification))
}

// Canvas is the single render surface shared by both eyes.
type Canvas interface {
	Pacer

	Size() (w, h int)
	SetSize(w, h int)
	// ClientSize is the on-screen size in logical (CSS) pixels.
	ClientSize() (w, h float64)
	DevicePixelRatio() float64
	Viewport(x, y, w, h int)
}

// Renderer draws the host scene.
type Renderer interface {
	Render(proj, view mgl32.Mat4)
}

// ShapeDrawer draws debug geometry with the matrices of the current view.
type ShapeDrawer interface {
	DrawShape(model mgl32.Mat4, color mgl32.Vec4)
}

// Logger receives newline-free log lines.
type Logger interface {
	WriteLineString(s string)
}

type nopLogger struct{}

func (nopLogger) WriteLineString(string) {}

// Spawner runs fn asynchronously.
type Spawner func(fn func())

func goSpawner(fn func()) { go fn() }
