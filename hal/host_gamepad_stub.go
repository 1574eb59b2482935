//go:build !cgo

package hal

import "stereo/vr"

type hostGamepads struct{}

func newHostGamepads() *hostGamepads { return &hostGamepads{} }

func (g *hostGamepads) appendDevices(dst []*vr.InputDevice, _ int) []*vr.InputDevice { return dst }
