package hal

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"stereo/vr"
)

const (
	controllerOrbit  = 4 * time.Second
	controllerCycle  = 2 * time.Second
	controllerPress  = 600 * time.Millisecond
	controllerRadius = 0.08
)

// simController is a tracked hand controller that circles in front of the user
// and pulls its trigger for part of every cycle.
type simController struct {
	dev vr.InputDevice
	act *logActuator

	pose vr.Pose
	q    mgl32.Quat
	p    mgl32.Vec3
}

func newSimController(index int, log Logger, now func() time.Time) *simController {
	c := &simController{
		dev: vr.InputDevice{
			ID:      fmt.Sprintf("Simulated Controller %d", index),
			Index:   index,
			Axes:    make([]float64, 1),
			Buttons: make([]vr.Button, 2),
		},
	}
	c.act = &logActuator{id: c.dev.ID, log: log, now: now}
	c.dev.Haptics = []vr.HapticActuator{c.act}
	return c
}

// update advances the controller to the elapsed time t.
func (c *simController) update(t time.Duration) {
	i := c.dev.Index
	side := float32(1)
	if i%2 == 0 {
		side = -1
	}
	phase := 2*math.Pi*t.Seconds()/controllerOrbit.Seconds() + float64(i)*math.Pi/2

	c.p = mgl32.Vec3{
		side*0.25 + float32(controllerRadius*math.Cos(phase)),
		-0.35 + float32(controllerRadius*math.Sin(phase)),
		-0.45,
	}
	c.q = mgl32.QuatRotate(float32(0.3*math.Sin(phase)), mgl32.Vec3{1, 0, 0})
	c.pose = vr.Pose{Orientation: &c.q, Position: &c.p}
	c.dev.Pose = &c.pose

	cycle := (t + time.Duration(i)*controllerCycle/3) % controllerCycle
	trigger := 0.0
	if cycle < controllerPress {
		trigger = 1 - float64(cycle)/float64(controllerPress)/2
	}
	c.dev.Axes[0] = trigger / 4
	c.dev.Buttons[0] = vr.Button{Pressed: trigger > 0, Value: trigger}
	c.dev.Buttons[1] = vr.Button{}
}

// logActuator is a haptic channel that logs each pulse it accepts.
// Pulses that arrive while a previous one is still running are ignored.
type logActuator struct {
	id  string
	log Logger
	now func() time.Time

	mu     sync.Mutex
	until  time.Time
	pulses uint64
}

func (a *logActuator) Pulse(intensity float64, d time.Duration) {
	now := a.now()
	a.mu.Lock()
	if now.Before(a.until) {
		a.mu.Unlock()
		return
	}
	a.until = now.Add(d)
	a.pulses++
	a.mu.Unlock()
	a.log.WriteLineString(fmt.Sprintf("hal: haptic: %s intensity=%.2f for %v", a.id, intensity, d))
}

func (a *logActuator) count() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pulses
}
