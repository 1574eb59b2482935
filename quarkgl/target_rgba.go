package quarkgl

// RGBATarget renders into a rectangular region of an RGBA8888 buffer.
//
// X and Y place the region inside the buffer; pixel coordinates passed to SetPixel
// are relative to the region, so one buffer can host several viewports.
type RGBATarget struct {
	Buf    []byte
	Stride int // bytes per row
	X, Y   int
	W, H   int
}

func (t *RGBATarget) Size() (w, h int) { return t.W, t.H }

func (t *RGBATarget) valid() bool {
	return t != nil && t.Buf != nil && t.Stride > 0 && t.W > 0 && t.H > 0
}

func (t *RGBATarget) Clear(c Color) {
	if !t.valid() {
		return
	}
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			t.SetPixel(x, y, c)
		}
	}
}

func (t *RGBATarget) SetPixel(x, y int, c Color) {
	if !t.valid() {
		return
	}
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return
	}
	off := (t.Y+y)*t.Stride + (t.X+x)*4
	if off < 0 || off+3 >= len(t.Buf) {
		return
	}
	t.Buf[off+0] = c.R
	t.Buf[off+1] = c.G
	t.Buf[off+2] = c.B
	t.Buf[off+3] = c.A
}
