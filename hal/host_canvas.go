package hal

// Canvas is the host drawing surface: an RGBA framebuffer with a current
// viewport, a CSS-style client size and a window-paced frame queue.
//
// All methods except RequestAnimationFrame must be called from the host loop.
type Canvas struct {
	pacer

	fb *hostFramebuffer

	vx, vy, vw, vh int

	clientW, clientH float64
	dpr              float64
	onResize         func()

	clearR, clearG, clearB uint8
}

func newCanvas(fb *hostFramebuffer, clientW, clientH float64) *Canvas {
	c := &Canvas{
		fb:      fb,
		clientW: clientW,
		clientH: clientH,
		dpr:     1,
		clearR:  0x10,
		clearG:  0x10,
		clearB:  0x18,
	}
	c.resetViewport()
	return c
}

func (c *Canvas) Framebuffer() Framebuffer { return c.fb }

func (c *Canvas) Size() (int, int) { return c.fb.Width(), c.fb.Height() }

func (c *Canvas) SetSize(w, h int) {
	if w == c.fb.Width() && h == c.fb.Height() {
		return
	}
	c.fb.Resize(w, h)
	c.resetViewport()
}

func (c *Canvas) ClientSize() (float64, float64) { return c.clientW, c.clientH }

func (c *Canvas) DevicePixelRatio() float64 { return c.dpr }

func (c *Canvas) Viewport(x, y, w, h int) { c.vx, c.vy, c.vw, c.vh = x, y, w, h }

// CurrentViewport returns the rectangle set by the last Viewport call.
func (c *Canvas) CurrentViewport() (x, y, w, h int) { return c.vx, c.vy, c.vw, c.vh }

// OnResize registers fn to run when the client size or pixel ratio changes.
func (c *Canvas) OnResize(fn func()) { c.onResize = fn }

// SetClientSize records the window's logical size and pixel ratio.
func (c *Canvas) SetClientSize(w, h, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	if w == c.clientW && h == c.clientH && dpr == c.dpr {
		return
	}
	c.clientW, c.clientH, c.dpr = w, h, dpr
	if c.onResize != nil {
		c.onResize()
	}
}

// SetClearColor sets the color used before each frame callback.
func (c *Canvas) SetClearColor(r, g, b uint8) { c.clearR, c.clearG, c.clearB = r, g, b }

// Clear fills the framebuffer and resets the viewport to the full canvas.
func (c *Canvas) Clear() {
	c.fb.ClearRGB(c.clearR, c.clearG, c.clearB)
	c.resetViewport()
}

func (c *Canvas) resetViewport() {
	c.vx, c.vy, c.vw, c.vh = 0, 0, c.fb.Width(), c.fb.Height()
}

// pumpFrames runs pending window-paced callbacks on a cleared canvas.
func (c *Canvas) pumpFrames() int { return c.pump(c.Clear) }
