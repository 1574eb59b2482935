// Package hud draws a text status overlay onto the canvas framebuffer.
package hud

import (
	"fmt"
	"image/color"

	"stereo/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Status is one snapshot of the frame pipeline.
type Status struct {
	Mode      string
	State     string
	Display   string
	Action    string // hint for the presentation key, empty when none applies
	Frames    uint64
	Submitted uint64
	Pulses    uint64
	Build     string
}

// Lines formats s, one entry per overlay row.
func Lines(s Status) []string {
	display := s.Display
	if display == "" {
		display = "none"
	}
	out := []string{
		fmt.Sprintf("loop %s  %s", s.Mode, s.State),
		"display " + display,
		fmt.Sprintf("frames %d  submitted %d  pulses %d", s.Frames, s.Submitted, s.Pulses),
	}
	if s.Action != "" {
		out = append(out, s.Action)
	}
	if s.Build != "" {
		out = append(out, "build "+s.Build)
	}
	return out
}

// HUD renders Status in the top-left corner of a framebuffer.
type HUD struct {
	d      *fbDisplay
	font   tinyfont.Fonter
	lineH  int16
	margin int16

	fg, bg color.RGBA

	// largest box drawn so far
	boxW, boxH int16
}

func New(fb hal.Framebuffer) *HUD {
	font := &proggy.TinySZ8pt7b
	lineH := int16(font.GetYAdvance())
	if lineH <= 0 {
		lineH = 10
	}
	return &HUD{
		d:      newFBDisplay(fb),
		font:   font,
		lineH:  lineH,
		margin: 4,
		fg:     color.RGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF},
		bg:     color.RGBA{R: 0x08, G: 0x08, B: 0x10, A: 0xFF},
	}
}

// Draw paints the overlay in the top-left corner.
func (h *HUD) Draw(s Status) { h.DrawAt(0, 0, s) }

// DrawAt paints the overlay with its top-left corner at (x, y); the background
// box hides the previous text.
func (h *HUD) DrawAt(x, y int16, s Status) {
	lines := Lines(s)
	var maxW uint32
	for _, l := range lines {
		_, w := tinyfont.LineWidth(h.font, l)
		if w > maxW {
			maxW = w
		}
	}
	h.boxW = max(h.boxW, int16(maxW)+2*h.margin)
	h.boxH = max(h.boxH, int16(len(lines))*h.lineH+2*h.margin)
	h.d.FillRectangle(x, y, h.boxW, h.boxH, h.bg)

	ly := y + h.margin
	for _, l := range lines {
		ly += h.lineH
		tinyfont.WriteLine(h.d, h.font, x+h.margin, ly-2, l, h.fg)
	}
}
