package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

var (
	ErrCannotPresent  = errors.New("display cannot present")
	ErrRemoteClosed   = errors.New("remote display closed")
	ErrRequestTimeout = errors.New("remote request timed out")
)

// Framebuffer is an RGBA8888 pixel buffer.
type Framebuffer interface {
	Width() int
	Height() int
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Resize(width, height int)
}

// HAL provides the only contact point between the frame pipeline and the host.
type HAL interface {
	Logger() Logger
	Framebuffer() Framebuffer
	Canvas() *Canvas
	Platform() *Platform
}
