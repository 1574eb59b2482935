// Package config loads the host configuration.
//
// Values come from Default, then an optional YAML file, then command-line
// flags applied by the caller. Validate reports every impossible value at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete host configuration.
type Config struct {
	Player      PlayerConfig      `yaml:"player"`
	Render      RenderConfig      `yaml:"render"`
	Window      WindowConfig      `yaml:"window"`
	Display     DisplayConfig     `yaml:"display"`
	Controllers ControllersConfig `yaml:"controllers"`
	Headless    HeadlessConfig    `yaml:"headless"`
}

// PlayerConfig describes the seated user.
type PlayerConfig struct {
	// Height is the eye height in meters used without a stage transform.
	Height float64 `yaml:"height"`
}

// RenderConfig configures the canvas and scene renderer.
type RenderConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Near      float64 `yaml:"near"`
	Far       float64 `yaml:"far"`
	Wireframe bool    `yaml:"wireframe"`
	// Grid is the floor size in tiles; 0 disables the floor.
	Grid int  `yaml:"grid"`
	HUD  bool `yaml:"hud"`
	// ClearColor is the RGB background painted before every frame.
	ClearColor [3]uint8 `yaml:"clear_color"`
}

// WindowConfig configures the desktop window.
type WindowConfig struct {
	Title string  `yaml:"title"`
	Scale float64 `yaml:"scale"`
	TPS   int     `yaml:"tps"`
}

// DisplayConfig selects and describes the head-mounted display.
type DisplayConfig struct {
	// Kind is one of: sim, remote, empty, none.
	Kind           string       `yaml:"kind"`
	PresentOnStart bool         `yaml:"present_on_start"`
	Sim            SimConfig    `yaml:"sim"`
	Remote         RemoteConfig `yaml:"remote"`
}

// SimConfig describes the simulated display.
type SimConfig struct {
	Name               string        `yaml:"name"`
	RefreshHz          int           `yaml:"refresh_hz"`
	CanPresent         bool          `yaml:"can_present"`
	HasPosition        bool          `yaml:"has_position"`
	HasExternalDisplay bool          `yaml:"has_external_display"`
	EyeWidth           int           `yaml:"eye_width"`
	EyeHeight          int           `yaml:"eye_height"`
	FovDeg             float64       `yaml:"fov_deg"`
	IPD                float64       `yaml:"ipd"`
	StageHeight        float64       `yaml:"stage_height"`
	StageSizeX         float64       `yaml:"stage_size_x"`
	StageSizeZ         float64       `yaml:"stage_size_z"`
	SwayDeg            float64       `yaml:"sway_deg"`
	SwayPeriod         time.Duration `yaml:"sway_period"`
}

// RemoteConfig locates a remote display.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ControllersConfig configures simulated tracked controllers.
type ControllersConfig struct {
	Count int `yaml:"count"`
}

// HeadlessConfig configures the no-window runner.
type HeadlessConfig struct {
	Enabled bool   `yaml:"enabled"`
	Hz      int    `yaml:"hz"`
	Frames  uint64 `yaml:"frames"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{Height: 1.65},
		Render: RenderConfig{
			Width:  960,
			Height: 540,
			Near:   0.1,
			Far:    1024,
			Grid:   16,
			HUD:    true,

			ClearColor: [3]uint8{0x10, 0x10, 0x18},
		},
		Window: WindowConfig{Title: "stereo", Scale: 1, TPS: 60},
		Display: DisplayConfig{
			Kind: "sim",
			Sim: SimConfig{
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
			},
			Remote: RemoteConfig{
				URL:     "ws://127.0.0.1:8765/hmd",
				Timeout: 5 * time.Second,
			},
		},
		Controllers: ControllersConfig{Count: 2},
		Headless:    HeadlessConfig{Hz: 60},
	}
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

var displayKinds = []string{"sim", "remote", "empty", "none"}

// Validate checks for values the host cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Player.Height <= 0 {
		errs = append(errs, fmt.Errorf("player.height must be positive, got %v", c.Player.Height))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if c.Render.Near <= 0 || c.Render.Near >= c.Render.Far {
		errs = append(errs, fmt.Errorf("render.near must be in (0, far), got near=%v far=%v", c.Render.Near, c.Render.Far))
	}
	if c.Render.Grid < 0 {
		errs = append(errs, fmt.Errorf("render.grid must not be negative"))
	}
	if c.Window.Scale <= 0 {
		errs = append(errs, fmt.Errorf("window.scale must be positive"))
	}
	if !contains(displayKinds, c.Display.Kind) {
		errs = append(errs, fmt.Errorf("display.kind must be one of: %v", displayKinds))
	}
	if c.Display.Kind == "sim" {
		s := c.Display.Sim
		if s.RefreshHz <= 0 {
			errs = append(errs, fmt.Errorf("display.sim.refresh_hz must be positive"))
		}
		if s.EyeWidth <= 0 || s.EyeHeight <= 0 {
			errs = append(errs, fmt.Errorf("display.sim eye size must be positive, got %dx%d", s.EyeWidth, s.EyeHeight))
		}
		if s.FovDeg <= 0 || s.FovDeg >= 90 {
			errs = append(errs, fmt.Errorf("display.sim.fov_deg must be in (0, 90)"))
		}
	}
	if c.Display.Kind == "remote" && c.Display.Remote.URL == "" {
		errs = append(errs, fmt.Errorf("display.remote.url is required"))
	}
	if c.Controllers.Count < 0 {
		errs = append(errs, fmt.Errorf("controllers.count must not be negative"))
	}
	if c.Headless.Hz <= 0 {
		errs = append(errs, fmt.Errorf("headless.hz must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
