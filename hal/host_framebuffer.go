package hal

import "sync"

type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{}
	f.Resize(width, height)
	return f
}

func (f *hostFramebuffer) Width() int       { return f.width }
func (f *hostFramebuffer) Height() int      { return f.height }
func (f *hostFramebuffer) StrideBytes() int { return f.stride }
func (f *hostFramebuffer) Buffer() []byte   { return f.buf }

// Resize reallocates the buffer only when the pixel count grows.
func (f *hostFramebuffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height, f.stride = width, height, width*4
	n := f.stride * height
	if cap(f.buf) < n {
		f.buf = make([]byte, n)
	} else {
		f.buf = f.buf[:n]
	}
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i+3 < len(f.buf); i += 4 {
		f.buf[i] = r
		f.buf[i+1] = g
		f.buf[i+2] = b
		f.buf[i+3] = 0xFF
	}
}

func (f *hostFramebuffer) snapshot(dst []byte) (w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
	return f.width, f.height
}
