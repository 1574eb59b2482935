package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"stereo/app"
	"stereo/hal"
	"stereo/internal/buildinfo"
	"stereo/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}
	newApp := func(h hal.HAL) func() error { return app.New(h, cfg) }
	host := app.HostConfig(cfg, nil)

	if cfg.Headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:     cfg.Headless.Hz,
			Frames: cfg.Headless.Frames,
			Host:   host,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return hal.RunWindow(newApp, hal.WindowConfig{
		Title: cfg.Window.Title,
		Scale: cfg.Window.Scale,
		TPS:   cfg.Window.TPS,
		Host:  host,
	})
}

// parseConfig loads the optional config file and applies flags that were set.
func parseConfig(args []string) (*config.Config, error) {
	var (
		path        string
		headless    bool
		hz          int
		frames      uint64
		display     string
		remote      string
		present     bool
		controllers int
		version     bool
	)

	flagSet := pflag.NewFlagSet("stereo", pflag.ContinueOnError)
	flagSet.StringVar(&path, "config", "", "path to a YAML config file")
	flagSet.BoolVar(&headless, "headless", false, "run without a window")
	flagSet.IntVar(&hz, "hz", 60, "tick rate in headless mode")
	flagSet.Uint64Var(&frames, "frames", 0, "stop after N ticks in headless mode (0 = run forever)")
	flagSet.StringVar(&display, "display", "sim", "display kind: sim, remote, empty, none")
	flagSet.StringVar(&remote, "remote", "", "websocket URL of a remote display (implies --display=remote)")
	flagSet.BoolVar(&present, "present", false, "start presenting as soon as a display is found")
	flagSet.IntVar(&controllers, "controllers", 2, "number of simulated tracked controllers")
	flagSet.BoolVar(&version, "version", false, "print the build id and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if version {
		fmt.Println("stereo " + buildinfo.Full())
		return nil, pflag.ErrHelp
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if flagSet.Changed("headless") {
		cfg.Headless.Enabled = headless
	}
	if flagSet.Changed("hz") {
		cfg.Headless.Hz = hz
	}
	if flagSet.Changed("frames") {
		cfg.Headless.Frames = frames
	}
	if flagSet.Changed("display") {
		cfg.Display.Kind = display
	}
	if flagSet.Changed("remote") {
		cfg.Display.Remote.URL = remote
		if !flagSet.Changed("display") {
			cfg.Display.Kind = string(hal.DisplayRemote)
		}
	}
	if flagSet.Changed("present") {
		cfg.Display.PresentOnStart = present
	}
	if flagSet.Changed("controllers") {
		cfg.Controllers.Count = controllers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
