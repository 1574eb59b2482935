package hud

import (
	"image/color"

	"stereo/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay adapts an RGBA framebuffer to drivers.Displayer.
type fbDisplay struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*fbDisplay)(nil)

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*4
	if off < 0 || off+3 >= len(buf) {
		return
	}
	if c.A == 0xFF {
		buf[off], buf[off+1], buf[off+2], buf[off+3] = c.R, c.G, c.B, 0xFF
		return
	}
	// Premultiplied blend over the existing pixel.
	inv := 255 - uint32(c.A)
	buf[off+0] = uint8(uint32(c.R) + uint32(buf[off+0])*inv/255)
	buf[off+1] = uint8(uint32(c.G) + uint32(buf[off+1])*inv/255)
	buf[off+2] = uint8(uint32(c.B) + uint32(buf[off+2])*inv/255)
	buf[off+3] = 0xFF
}

func (d *fbDisplay) Display() error { return nil }

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil {
		return nil
	}
	x0, y0 := max(int(x), 0), max(int(y), 0)
	x1 := min(int(x)+int(width), d.fb.Width())
	y1 := min(int(y)+int(height), d.fb.Height())
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.SetPixel(int16(px), int16(py), c)
		}
	}
	return nil
}
