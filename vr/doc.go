// Package vr drives a stereo head-mounted display from an existing render loop.
//
// The package owns the presentation state machine and the stereo frame pipeline:
//
//	Session (discovery, present/exit) → Scheduler (one frame) → PoseTransformer →
//	per-eye RenderSceneView → Renderer + GamepadVisualizer → SubmitFrame.
//
// Everything outside that pipeline (the platform display API, input devices, the canvas,
// the scene renderer and the debug-geometry drawer) is reached through the small
// interfaces in platform.go. Implementations live in the host (see package hal).
//
// Threading: all state changes happen on the frame goroutine. Asynchronous platform
// calls run on a Spawner and report back through the Dispatcher, which the Scheduler
// drains at the start of every frame.
package vr
