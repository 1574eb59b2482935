package vr

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// PlayerHeight is the assumed eye height of a standing viewer, in meters.
	PlayerHeight = 1.65

	// DefaultFovY is the vertical field of view used when no eye parameters exist.
	DefaultFovY = 0.4 * 3.141592653589793

	NearPlane = 0.1
	FarPlane  = 1024.0

	// ControllerScale shrinks controller shapes from the 1m pose unit to hand scale.
	ControllerScale = 0.1

	HapticDuration = 100 * time.Millisecond
)

var (
	// untrackedControllerPosition keeps a controller without position in front of the viewer.
	untrackedControllerPosition = mgl32.Vec3{0.1, -0.1, -0.5}

	colorIdle = mgl32.Vec4{0, 0, 1, 1}
)

// Pose is a per-frame snapshot reported by a display or a tracked input device.
//
// Either field may be nil when the hardware does not track it.
type Pose struct {
	Orientation *mgl32.Quat
	Position    *mgl32.Vec3
}

// PoseAt returns a pose with both orientation and position set.
func PoseAt(q mgl32.Quat, p mgl32.Vec3) Pose {
	return Pose{Orientation: &q, Position: &p}
}

// StageParameters describes room-scale tracking.
type StageParameters struct {
	SizeX, SizeZ float32

	// SittingToStanding maps the seated tracking origin to the standing (floor) origin.
	SittingToStanding mgl32.Mat4
}

// Eye selects one half of the stereo pair.
type Eye uint8

const (
	EyeLeft Eye = iota
	EyeRight
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return "unknown"
	}
}

// FieldOfView holds the four half-angles of an eye frustum, in degrees.
type FieldOfView struct {
	Up, Down, Left, Right float32
}

// EyeParameters are reported per eye and may change between frames.
type EyeParameters struct {
	Offset       mgl32.Vec3
	FieldOfView  FieldOfView
	RenderWidth  int
	RenderHeight int
}

// Capabilities describes what a display can do.
type Capabilities struct {
	HasPosition        bool
	HasExternalDisplay bool
	CanPresent         bool
	MaxLayers          int
}

// Button is one digital/analog control of an input device.
type Button struct {
	Pressed bool
	Value   float64
}

// HapticActuator is a vibration-capable feedback channel.
type HapticActuator interface {
	Pulse(intensity float64, d time.Duration)
}

// InputDevice is a gamepad-like device as enumerated for a single frame.
type InputDevice struct {
	ID      string
	Index   int
	Axes    []float64
	Buttons []Button
	Pose    *Pose
	Haptics []HapticActuator
}

// SessionState is the presentation state owned by Session.
type SessionState uint8

const (
	NotPresenting SessionState = iota
	Presenting
)

func (s SessionState) String() string {
	if s == Presenting {
		return "presenting"
	}
	return "not presenting"
}

// Layer is a render source handed to Display.RequestPresent.
type Layer struct {
	Source Canvas
}

// ContextAttributes are the graphics context creation hints for the host.
type ContextAttributes struct {
	Alpha                 bool
	Antialias             bool
	PreserveDrawingBuffer bool
}

// GLAttribs returns the context attributes the host should create its surface with.
func GLAttribs() ContextAttributes {
	return ContextAttributes{
		Alpha:                 false,
		Antialias:             true,
		PreserveDrawingBuffer: true,
	}
}
