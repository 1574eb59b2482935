//go:build cgo

package hal

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"stereo/vr"
)

// hostGamepads exposes connected ebiten gamepads as untracked input devices.
type hostGamepads struct {
	ids  []ebiten.GamepadID
	devs map[ebiten.GamepadID]*vr.InputDevice
}

func newHostGamepads() *hostGamepads {
	return &hostGamepads{devs: make(map[ebiten.GamepadID]*vr.InputDevice)}
}

func (g *hostGamepads) appendDevices(dst []*vr.InputDevice, base int) []*vr.InputDevice {
	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	for i, id := range g.ids {
		d := g.devs[id]
		if d == nil {
			d = &vr.InputDevice{
				ID:      ebiten.GamepadName(id),
				Haptics: []vr.HapticActuator{gamepadActuator{id: id}},
			}
			g.devs[id] = d
		}
		d.Index = base + i
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			g.readStandard(d, id)
		} else {
			g.readRaw(d, id)
		}
		dst = append(dst, d)
	}
	return dst
}

func (g *hostGamepads) readStandard(d *vr.InputDevice, id ebiten.GamepadID) {
	nAxes := int(ebiten.StandardGamepadAxisMax) + 1
	nButtons := int(ebiten.StandardGamepadButtonMax) + 1
	d.Axes = resizeFloats(d.Axes, nAxes)
	d.Buttons = resizeButtons(d.Buttons, nButtons)
	for a := 0; a < nAxes; a++ {
		d.Axes[a] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxis(a))
	}
	for b := 0; b < nButtons; b++ {
		sb := ebiten.StandardGamepadButton(b)
		d.Buttons[b] = vr.Button{
			Pressed: ebiten.IsStandardGamepadButtonPressed(id, sb),
			Value:   ebiten.StandardGamepadButtonValue(id, sb),
		}
	}
}

// readRaw maps buttons of an unknown layout. Raw axes are not exposed.
func (g *hostGamepads) readRaw(d *vr.InputDevice, id ebiten.GamepadID) {
	n := ebiten.GamepadButtonCount(id)
	d.Axes = d.Axes[:0]
	d.Buttons = resizeButtons(d.Buttons, n)
	for b := 0; b < n; b++ {
		pressed := ebiten.IsGamepadButtonPressed(id, ebiten.GamepadButton(b))
		v := 0.0
		if pressed {
			v = 1
		}
		d.Buttons[b] = vr.Button{Pressed: pressed, Value: v}
	}
}

type gamepadActuator struct {
	id ebiten.GamepadID
}

func (a gamepadActuator) Pulse(intensity float64, d time.Duration) {
	ebiten.VibrateGamepad(a.id, &ebiten.VibrateGamepadOptions{
		Duration:        d,
		StrongMagnitude: intensity,
		WeakMagnitude:   intensity,
	})
}

func resizeFloats(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

func resizeButtons(s []vr.Button, n int) []vr.Button {
	if cap(s) < n {
		return make([]vr.Button, n)
	}
	return s[:n]
}
