package vr

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LoopMode selects who paces the animation loop.
type LoopMode uint8

const (
	// WindowLoop frames are paced by the host window. No display is known.
	WindowLoop LoopMode = iota
	// DeviceLoop frames are paced by the display. Once entered it is never left.
	DeviceLoop
)

func (m LoopMode) String() string {
	if m == DeviceLoop {
		return "device"
	}
	return "window"
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Session  *Session
	Platform Platform
	Canvas   Canvas
	Renderer Renderer
	Shapes   ShapeDrawer
	Logger   Logger

	PlayerHeight float32
	// Near and Far clip distances; zero selects NearPlane and FarPlane.
	Near, Far float32
}

// Scheduler runs one stereo frame per pacing callback.
type Scheduler struct {
	session  *Session
	platform Platform
	canvas   Canvas
	renderer Renderer
	log      Logger

	poses      *PoseTransformer
	visualizer *GamepadVisualizer

	mode    LoopMode
	started bool

	near, far float32

	head        mgl32.Mat4
	proj        mgl32.Mat4
	view        mgl32.Mat4
	eyeMat      mgl32.Mat4
	controllers []*InputDevice
	stage       *StageParameters

	frames    uint64
	submitted uint64
	pulses    uint64
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	poses := NewPoseTransformer(cfg.PlayerHeight)
	s := &Scheduler{
		session:    cfg.Session,
		platform:   cfg.Platform,
		canvas:     cfg.Canvas,
		renderer:   cfg.Renderer,
		log:        cfg.Logger,
		poses:      poses,
		visualizer: NewGamepadVisualizer(poses, cfg.Shapes),
		head:       mgl32.Ident4(),
		near:       cfg.Near,
		far:        cfg.Far,
	}
	if s.near <= 0 {
		s.near = NearPlane
	}
	if s.far <= s.near {
		s.far = FarPlane
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	return s
}

// Mode returns the current loop mode.
func (s *Scheduler) Mode() LoopMode { return s.mode }

// Frames returns the number of frames run.
func (s *Scheduler) Frames() uint64 { return s.frames }

// SubmittedFrames returns the number of stereo frames handed to the display.
func (s *Scheduler) SubmittedFrames() uint64 { return s.submitted }

// Pulses returns the number of haptic pulses fired.
func (s *Scheduler) Pulses() uint64 { return s.pulses }

// Poses returns the scheduler's pose transformer.
func (s *Scheduler) Poses() *PoseTransformer { return s.poses }

// Start schedules the first frame. Later calls are ignored.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true
	s.canvas.RequestAnimationFrame(s.Frame)
}

// Frame is the pacing callback. It always schedules its successor.
func (s *Scheduler) Frame() {
	// Once device-paced, the successor is requested before events are pumped.
	var display Display
	requested := false
	if s.mode == DeviceLoop && s.session != nil {
		if display = s.session.Display(); display != nil {
			display.RequestAnimationFrame(s.Frame)
			requested = true
		}
	}
	if s.session != nil {
		s.session.Pump()
		display = s.session.Display()
	}
	if display != nil && s.mode == WindowLoop {
		s.mode = DeviceLoop
		s.log.WriteLineString("vr: frames now paced by " + display.Name())
	}
	s.frames++

	if s.mode == DeviceLoop && display != nil {
		if !requested {
			display.RequestAnimationFrame(s.Frame)
		}
		s.deviceFrame(display)
		return
	}
	s.windowFrame()
}

func (s *Scheduler) windowFrame() {
	s.canvas.RequestAnimationFrame(s.Frame)

	w, h := s.canvas.Size()
	s.canvas.Viewport(0, 0, w, h)
	s.proj = mgl32.Perspective(DefaultFovY, aspect(w, h), s.near, s.far)
	s.view = mgl32.Translate3D(0, -s.poses.PlayerHeight, 0)
	if s.renderer != nil {
		s.renderer.Render(s.proj, s.view)
	}
}

func (s *Scheduler) deviceFrame(d Display) {
	s.collectControllers()

	pose := d.Pose()
	s.stage = d.StageParameters()
	s.poses.ComputeWorldTransform(&s.head, pose, s.stage, false)

	w, h := s.canvas.Size()
	if s.session.State() == Presenting {
		half := w / 2
		s.canvas.Viewport(0, 0, half, h)
		left := d.EyeParameters(EyeLeft)
		s.RenderSceneView(s.head, &left)

		s.canvas.Viewport(half, 0, half, h)
		right := d.EyeParameters(EyeRight)
		s.RenderSceneView(s.head, &right)

		d.SubmitFrame(pose)
		s.submitted++
		return
	}

	s.canvas.Viewport(0, 0, w, h)
	s.RenderSceneView(s.head, nil)
}

// collectControllers re-enumerates input devices, keeps the posed ones and fires haptics.
func (s *Scheduler) collectControllers() {
	clear(s.controllers)
	s.controllers = s.controllers[:0]
	if s.platform == nil {
		return
	}
	for _, dev := range s.platform.InputDevices() {
		if dev == nil {
			continue
		}
		if dev.Pose != nil {
			s.controllers = append(s.controllers, dev)
		}
		if s.visualizer.Pulse(dev) {
			s.pulses++
		}
	}
}

// RenderSceneView renders one view from head. A nil eye selects the monoscopic path.
func (s *Scheduler) RenderSceneView(head mgl32.Mat4, eye *EyeParameters) {
	if eye != nil {
		s.eyeMat = head.Mul4(mgl32.Translate3D(eye.Offset[0], eye.Offset[1], eye.Offset[2]))
		s.view = s.eyeMat.Inv()
		s.proj = PerspectiveFromFieldOfView(eye.FieldOfView, s.near, s.far)
	} else {
		w, h := s.canvas.Size()
		s.proj = mgl32.Perspective(DefaultFovY, aspect(w, h), s.near, s.far)
		s.view = head.Inv()
	}

	if s.renderer != nil {
		s.renderer.Render(s.proj, s.view)
	}
	s.visualizer.Visualize(s.controllers, s.stage)
}

// PerspectiveFromFieldOfView builds an off-axis projection from four half-angles in degrees.
func PerspectiveFromFieldOfView(fov FieldOfView, near, far float32) mgl32.Mat4 {
	up := tanDeg(fov.Up) * near
	down := tanDeg(fov.Down) * near
	left := tanDeg(fov.Left) * near
	right := tanDeg(fov.Right) * near
	return mgl32.Frustum(-left, right, -down, up, near, far)
}

func tanDeg(deg float32) float32 {
	return float32(math.Tan(float64(deg) * math.Pi / 180))
}

func aspect(w, h int) float32 {
	if h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
