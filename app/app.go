// Package app wires the host, the frame pipeline, the scene and the HUD.
package app

import (
	"context"
	"io"

	"stereo/hal"
	"stereo/hud"
	"stereo/internal/buildinfo"
	"stereo/internal/config"
	"stereo/vr"
)

type system struct {
	h   hal.HAL
	cfg *config.Config
	log hal.Logger

	session *vr.Session
	sched   *vr.Scheduler
	view    *SceneView
	hud     *hud.HUD

	action           string
	presentRequested bool
}

// HostConfig maps cfg to the host device configuration. A nil out logs to stdout.
func HostConfig(cfg *config.Config, out io.Writer) hal.Config {
	s := cfg.Display.Sim
	return hal.Config{
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Display: hal.DisplayKind(cfg.Display.Kind),
		Sim: hal.SimDisplayConfig{
			Name:               s.Name,
			RefreshHz:          s.RefreshHz,
			CanPresent:         s.CanPresent,
			HasPosition:        s.HasPosition,
			HasExternalDisplay: s.HasExternalDisplay,
			EyeWidth:           s.EyeWidth,
			EyeHeight:          s.EyeHeight,
			FovDeg:             s.FovDeg,
			IPD:                s.IPD,
			StageHeight:        s.StageHeight,
			StageSizeX:         s.StageSizeX,
			StageSizeZ:         s.StageSizeZ,
			SwayDeg:            s.SwayDeg,
			SwayPeriod:         s.SwayPeriod,
		},
		RemoteURL:     cfg.Display.Remote.URL,
		RemoteTimeout: cfg.Display.Remote.Timeout,
		Controllers:   cfg.Controllers.Count,
		Output:        out,
	}
}

// New starts display discovery and the frame loop and returns the per-tick step.
func New(h hal.HAL, cfg *config.Config) func() error {
	return newSystem(h, cfg).step
}

func newSystem(h hal.HAL, cfg *config.Config) *system {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &system{h: h, cfg: cfg, log: h.Logger()}
	canvas := h.Canvas()

	s.view = NewSceneView(canvas, cfg.Render)
	s.session = vr.NewSession(vr.SessionConfig{
		Platform:    h.Platform(),
		Canvas:      canvas,
		Logger:      s.log,
		OnPresentUI: s.onPresentUI,
	})
	s.sched = vr.NewScheduler(vr.SchedulerConfig{
		Session:      s.session,
		Platform:     h.Platform(),
		Canvas:       canvas,
		Renderer:     s.view,
		Shapes:       s.view,
		Logger:       s.log,
		PlayerHeight: float32(cfg.Player.Height),
		Near:         float32(cfg.Render.Near),
		Far:          float32(cfg.Render.Far),
	})
	if cfg.Render.HUD {
		s.hud = hud.New(canvas.Framebuffer())
	}
	cc := cfg.Render.ClearColor
	canvas.SetClearColor(cc[0], cc[1], cc[2])
	canvas.OnResize(s.session.Resize)

	s.log.WriteLineString("app: stereo " + buildinfo.Short())
	s.session.Discover(context.Background())
	s.sched.Start()
	return s
}

func (s *system) step() error {
	s.view.Spin(0.01)

	if s.cfg.Display.PresentOnStart && !s.presentRequested {
		if d := s.session.Display(); d != nil && d.Capabilities().CanPresent {
			s.presentRequested = true
			s.session.RequestPresent()
		}
	}

	if s.hud != nil {
		st := s.status()
		if s.session.State() == vr.Presenting {
			// one overlay per eye half
			w, _ := s.h.Canvas().Size()
			s.hud.DrawAt(0, 0, st)
			s.hud.DrawAt(int16(w/2), 0, st)
		} else {
			s.hud.Draw(st)
		}
	}
	return nil
}

func (s *system) onPresentUI(presenting bool) {
	if presenting {
		s.action = "[X] Exit VR  [R] Reset Pose"
	} else {
		s.action = "[E] Enter VR  [R] Reset Pose"
	}
	s.log.WriteLineString("app: " + s.action)
}

func (s *system) status() hud.Status {
	st := hud.Status{
		Mode:      s.sched.Mode().String(),
		State:     s.session.State().String(),
		Action:    s.action,
		Frames:    s.sched.Frames(),
		Submitted: s.sched.SubmittedFrames(),
		Pulses:    s.sched.Pulses(),
		Build:     buildinfo.Short(),
	}
	if d := s.session.Display(); d != nil {
		st.Display = d.Name()
		if st.Action == "" && d.Capabilities().CanPresent {
			st.Action = "[E] Enter VR  [R] Reset Pose"
		}
	}
	return st
}
