package vr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func inline(fn func()) { fn() }

type recLogger struct {
	lines []string
}

func (l *recLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }

type fakePlatform struct {
	displays []Display
	err      error
	devices  []*InputDevice
	sink     func(Notification)
	queries  int
}

func (p *fakePlatform) Displays(context.Context) ([]Display, error) {
	p.queries++
	return p.displays, p.err
}

func (p *fakePlatform) InputDevices() []*InputDevice { return p.devices }

func (p *fakePlatform) Notify(fn func(Notification)) { p.sink = fn }

func (p *fakePlatform) emit(kind NotificationKind, d Display) {
	if p.sink != nil {
		p.sink(Notification{Kind: kind, Display: d})
	}
}

type fakeDisplay struct {
	platform *fakePlatform

	caps       Capabilities
	stage      *StageParameters
	presenting bool
	presentErr error
	exitErr    error
	pose       Pose
	eyes       [2]EyeParameters

	presentCalls int
	exitCalls    int
	resets       int
	submitted    []Pose
	raf          []func()
	calls        []string
	onRAF        func()
}

func newFakeDisplay(p *fakePlatform) *fakeDisplay {
	eye := EyeParameters{
		FieldOfView:  FieldOfView{Up: 45, Down: 45, Left: 45, Right: 45},
		RenderWidth:  1000,
		RenderHeight: 900,
	}
	left, right := eye, eye
	left.Offset = mgl32.Vec3{-0.03, 0, 0}
	right.Offset = mgl32.Vec3{0.03, 0, 0}
	right.RenderWidth = 1100
	right.RenderHeight = 800
	return &fakeDisplay{
		platform: p,
		caps:     Capabilities{CanPresent: true, HasExternalDisplay: true, MaxLayers: 1},
		eyes:     [2]EyeParameters{left, right},
	}
}

func (d *fakeDisplay) Name() string                      { return "fake" }
func (d *fakeDisplay) Capabilities() Capabilities        { return d.caps }
func (d *fakeDisplay) StageParameters() *StageParameters { return d.stage }
func (d *fakeDisplay) IsPresenting() bool                { return d.presenting }
func (d *fakeDisplay) ResetPose()                        { d.resets++ }

func (d *fakeDisplay) RequestAnimationFrame(cb func()) {
	d.calls = append(d.calls, "raf")
	d.raf = append(d.raf, cb)
	if d.onRAF != nil {
		d.onRAF()
	}
}

func (d *fakeDisplay) RequestPresent([]Layer) error {
	d.presentCalls++
	if d.presentErr != nil {
		return d.presentErr
	}
	d.presenting = true
	if d.platform != nil {
		d.platform.emit(NotifyPresentChange, d)
	}
	return nil
}

func (d *fakeDisplay) ExitPresent() error {
	d.exitCalls++
	if d.exitErr != nil {
		return d.exitErr
	}
	d.presenting = false
	if d.platform != nil {
		d.platform.emit(NotifyPresentChange, d)
	}
	return nil
}

func (d *fakeDisplay) Pose() Pose {
	d.calls = append(d.calls, "pose")
	return d.pose
}

func (d *fakeDisplay) EyeParameters(eye Eye) EyeParameters {
	d.calls = append(d.calls, "eye:"+eye.String())
	return d.eyes[eye]
}

func (d *fakeDisplay) SubmitFrame(p Pose) {
	d.calls = append(d.calls, "submit")
	d.submitted = append(d.submitted, p)
}

type viewport struct{ x, y, w, h int }

type fakeCanvas struct {
	w, h     int
	cssW     float64
	cssH     float64
	dpr      float64
	raf      []func()
	viewport []viewport
}

func (c *fakeCanvas) RequestAnimationFrame(cb func()) { c.raf = append(c.raf, cb) }
func (c *fakeCanvas) Size() (int, int)                  { return c.w, c.h }
func (c *fakeCanvas) SetSize(w, h int)                  { c.w, c.h = w, h }
func (c *fakeCanvas) ClientSize() (float64, float64)    { return c.cssW, c.cssH }
func (c *fakeCanvas) DevicePixelRatio() float64         { return c.dpr }

func (c *fakeCanvas) Viewport(x, y, w, h int) {
	c.viewport = append(c.viewport, viewport{x, y, w, h})
}

type renderCall struct {
	proj, view mgl32.Mat4
	viewport   viewport
}

type fakeRenderer struct {
	canvas *fakeCanvas
	calls  []renderCall
}

func (r *fakeRenderer) Render(proj, view mgl32.Mat4) {
	var vp viewport
	if r.canvas != nil && len(r.canvas.viewport) > 0 {
		vp = r.canvas.viewport[len(r.canvas.viewport)-1]
	}
	r.calls = append(r.calls, renderCall{proj: proj, view: view, viewport: vp})
}

type shapeCall struct {
	model mgl32.Mat4
	color mgl32.Vec4
}

type fakeShapes struct {
	calls []shapeCall
}

func (s *fakeShapes) DrawShape(model mgl32.Mat4, color mgl32.Vec4) {
	s.calls = append(s.calls, shapeCall{model: model, color: color})
}

type pulse struct {
	intensity float64
	d         time.Duration
}

type fakeActuator struct {
	pulses []pulse
}

func (a *fakeActuator) Pulse(intensity float64, d time.Duration) {
	a.pulses = append(a.pulses, pulse{intensity, d})
}

var errRejected = errors.New("rejected")

func matApprox(a, b mgl32.Mat4) bool { return a.ApproxEqualThreshold(b, 1e-5) }

func matString(m mgl32.Mat4) string { return fmt.Sprintf("%v", [16]float32(m)) }
