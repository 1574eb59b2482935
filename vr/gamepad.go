package vr

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GamepadVisualizer draws one shape per tracked input device.
type GamepadVisualizer struct {
	poses *PoseTransformer
	draw  ShapeDrawer

	mat   mgl32.Mat4
	color mgl32.Vec4
}

func NewGamepadVisualizer(poses *PoseTransformer, draw ShapeDrawer) *GamepadVisualizer {
	return &GamepadVisualizer{poses: poses, draw: draw}
}

// Visualize issues a DrawShape call for every device that reports a pose.
func (v *GamepadVisualizer) Visualize(devices []*InputDevice, stage *StageParameters) {
	if v.draw == nil {
		return
	}
	for _, d := range devices {
		if d == nil || d.Pose == nil {
			continue
		}
		v.Transform(&v.mat, d, stage)
		v.color = ControllerColor(d.Buttons)
		v.draw.DrawShape(v.mat, v.color)
	}
}

// Transform writes the shape transform of a posed device into out.
func (v *GamepadVisualizer) Transform(out *mgl32.Mat4, d *InputDevice, stage *StageParameters) {
	v.poses.ComputeWorldTransform(out, *d.Pose, stage, true)
	m := out.Mul4(mgl32.Scale3D(ControllerScale, ControllerScale, ControllerScale))

	for i, a := range d.Axes {
		rad := float32(a * math.Pi)
		switch i % 3 {
		case 0:
			m = m.Mul4(mgl32.HomogRotate3DX(rad))
		case 1:
			m = m.Mul4(mgl32.HomogRotate3DY(rad))
		default:
			m = m.Mul4(mgl32.HomogRotate3DZ(rad))
		}
	}
	*out = m
}

// Pulse vibrates actuator 0 with the first pressed button's value.
// It reports whether a pulse was issued.
func (v *GamepadVisualizer) Pulse(d *InputDevice) bool {
	if d == nil || len(d.Haptics) == 0 || d.Haptics[0] == nil {
		return false
	}
	b, ok := firstPressed(d.Buttons)
	if !ok {
		return false
	}
	d.Haptics[0].Pulse(b.Value, HapticDuration)
	return true
}

// ControllerColor is blue, or red scaled by the first pressed button's value.
func ControllerColor(buttons []Button) mgl32.Vec4 {
	b, ok := firstPressed(buttons)
	if !ok {
		return colorIdle
	}
	return mgl32.Vec4{float32(b.Value), 0, 0, 1}
}

func firstPressed(buttons []Button) (Button, bool) {
	for _, b := range buttons {
		if b.Pressed {
			return b, true
		}
	}
	return Button{}, false
}
