//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"stereo/internal/buildinfo"
	"stereo/vr"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title string
	Scale float64 // initial window size relative to the canvas
	TPS   int
	Host  Config
}

// RunWindow starts a desktop window that shows the canvas and forwards
// E (activate), X (deactivate) and R (reset pose). It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	cfg.Host.Gamepads = true
	h := New(cfg.Host).(*hostHAL)
	defer h.close()
	step := newApp(h)

	if cfg.Title == "" {
		cfg.Title = "stereo"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	attrs := vr.GLAttribs()
	g := &hostGame{h: h, step: step, filter: ebiten.FilterNearest}
	if attrs.Antialias {
		g.filter = ebiten.FilterLinear
	}

	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(int(float64(h.fb.Width())*cfg.Scale), int(float64(h.fb.Height())*cfg.Scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(!attrs.PreserveDrawingBuffer)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: attrs.Alpha})
}

type hostGame struct {
	h       *hostHAL
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
	filter  ebiten.Filter
}

func (g *hostGame) Update() error {
	p := g.h.platform
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		p.Emit(vr.NotifyActivate)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		p.Emit(vr.NotifyDeactivate)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		p.ResetPose()
	}

	g.h.step()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if n := fb.StrideBytes() * fb.Height(); len(g.scratch) != n {
		g.scratch = make([]byte, n)
	}
	w, h := fb.snapshot(g.scratch)
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != w || g.fbImg.Bounds().Dy() != h {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}
	g.fbImg.WritePixels(g.scratch)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{Filter: g.filter}
	op.GeoM.Scale(float64(sw)/float64(w), float64(sh)/float64(h))
	screen.DrawImage(g.fbImg, op)
}

// Layout reports the window's logical size to the canvas; the screen matches it.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := ebiten.Monitor().DeviceScaleFactor()
	g.h.canvas.SetClientSize(float64(outsideWidth), float64(outsideHeight), dpr)
	return outsideWidth, outsideHeight
}
