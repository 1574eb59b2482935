package hal

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"stereo/vr"
)

// SimDisplayConfig describes the simulated head-mounted display.
type SimDisplayConfig struct {
	Name               string
	RefreshHz          int
	CanPresent         bool
	HasPosition        bool
	HasExternalDisplay bool

	EyeWidth, EyeHeight int
	FovDeg              float64 // half-angle, all four directions
	IPD                 float64 // meters

	// StageHeight > 0 reports room-scale tracking with the floor StageHeight below the origin.
	StageHeight float64
	StageSizeX  float64
	StageSizeZ  float64

	SwayDeg    float64
	SwayPeriod time.Duration
}

// DefaultSimDisplay returns a seated display with typical optics.
func DefaultSimDisplay() SimDisplayConfig {
	return SimDisplayConfig{
		Name:               "Simulated HMD",
		RefreshHz:          90,
		CanPresent:         true,
		HasExternalDisplay: true,
		EyeWidth:           640,
		EyeHeight:          720,
		FovDeg:             50,
		IPD:                0.064,
		SwayDeg:            15,
		SwayPeriod:         6 * time.Second,
	}
}

type simDisplay struct {
	pacer

	cfg    SimDisplayConfig
	log    Logger
	notify func(vr.Notification)
	now    func() time.Time
	start  time.Time

	stage *vr.StageParameters
	eyes  [2]vr.EyeParameters

	mu         sync.Mutex
	presenting bool
	yawOffset  float64
	lastFrame  time.Time
	submitted  uint64
}

func newSimDisplay(cfg SimDisplayConfig, log Logger, notify func(vr.Notification), now func() time.Time) *simDisplay {
	if cfg.RefreshHz <= 0 {
		cfg.RefreshHz = 90
	}
	if cfg.SwayPeriod <= 0 {
		cfg.SwayPeriod = 6 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	d := &simDisplay{cfg: cfg, log: log, notify: notify, now: now, start: now()}

	fov := float32(cfg.FovDeg)
	eye := vr.EyeParameters{
		FieldOfView:  vr.FieldOfView{Up: fov, Down: fov, Left: fov, Right: fov},
		RenderWidth:  cfg.EyeWidth,
		RenderHeight: cfg.EyeHeight,
	}
	half := float32(cfg.IPD / 2)
	d.eyes[vr.EyeLeft], d.eyes[vr.EyeRight] = eye, eye
	d.eyes[vr.EyeLeft].Offset = mgl32.Vec3{-half, 0, 0}
	d.eyes[vr.EyeRight].Offset = mgl32.Vec3{half, 0, 0}

	if cfg.StageHeight > 0 {
		d.stage = &vr.StageParameters{
			SizeX:             float32(cfg.StageSizeX),
			SizeZ:             float32(cfg.StageSizeZ),
			SittingToStanding: mgl32.Translate3D(0, float32(cfg.StageHeight), 0),
		}
	}
	return d
}

func (d *simDisplay) Name() string { return d.cfg.Name }

func (d *simDisplay) Capabilities() vr.Capabilities {
	return vr.Capabilities{
		HasPosition:        d.cfg.HasPosition,
		HasExternalDisplay: d.cfg.HasExternalDisplay,
		CanPresent:         d.cfg.CanPresent,
		MaxLayers:          1,
	}
}

func (d *simDisplay) StageParameters() *vr.StageParameters { return d.stage }

func (d *simDisplay) IsPresenting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presenting
}

func (d *simDisplay) RequestPresent(layers []vr.Layer) error {
	if !d.cfg.CanPresent {
		return ErrCannotPresent
	}
	if len(layers) == 0 || layers[0].Source == nil {
		return fmt.Errorf("hal: sim: %w: no layer source", ErrCannotPresent)
	}
	d.setPresenting(true)
	return nil
}

func (d *simDisplay) ExitPresent() error {
	d.setPresenting(false)
	return nil
}

func (d *simDisplay) setPresenting(on bool) {
	d.mu.Lock()
	changed := d.presenting != on
	d.presenting = on
	d.mu.Unlock()
	if !changed {
		return
	}
	d.log.WriteLineString(fmt.Sprintf("hal: sim: presenting=%v", on))
	if d.notify != nil {
		d.notify(vr.Notification{Kind: vr.NotifyPresentChange, Display: d})
	}
}

// Pose sways the head around the vertical axis.
func (d *simDisplay) Pose() vr.Pose {
	t := d.now().Sub(d.start).Seconds()
	phase := 2 * math.Pi * t / d.cfg.SwayPeriod.Seconds()

	d.mu.Lock()
	yaw := d.cfg.SwayDeg*math.Pi/180*math.Sin(phase) - d.yawOffset
	d.mu.Unlock()

	q := mgl32.QuatRotate(float32(yaw), mgl32.Vec3{0, 1, 0})
	if !d.cfg.HasPosition {
		return vr.Pose{Orientation: &q}
	}
	p := mgl32.Vec3{0, float32(0.02 * math.Sin(2*phase)), 0}
	return vr.PoseAt(q, p)
}

func (d *simDisplay) EyeParameters(eye vr.Eye) vr.EyeParameters { return d.eyes[eye] }

func (d *simDisplay) SubmitFrame(vr.Pose) {
	d.mu.Lock()
	d.submitted++
	d.mu.Unlock()
}

// ResetPose makes the current heading the new forward direction.
func (d *simDisplay) ResetPose() {
	t := d.now().Sub(d.start).Seconds()
	phase := 2 * math.Pi * t / d.cfg.SwayPeriod.Seconds()
	d.mu.Lock()
	d.yawOffset = d.cfg.SwayDeg * math.Pi / 180 * math.Sin(phase)
	d.mu.Unlock()
	d.log.WriteLineString("hal: sim: pose reset")
}

// Submitted returns the number of frames handed to SubmitFrame.
func (d *simDisplay) Submitted() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

func (d *simDisplay) due(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	period := time.Second / time.Duration(d.cfg.RefreshHz)
	return d.lastFrame.IsZero() || now.Sub(d.lastFrame) >= period
}

func (d *simDisplay) pumpFrames(now time.Time, before func()) int {
	if !d.hasPending() || !d.due(now) {
		return 0
	}
	d.mu.Lock()
	d.lastFrame = now
	d.mu.Unlock()
	return d.pump(before)
}

func (d *simDisplay) close() error { return nil }
