package quarkgl

import "github.com/go-gl/mathgl/mgl32"

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// ColorFromVec4 converts a normalized (0..1) RGBA vector.
func ColorFromVec4(v mgl32.Vec4) Color {
	return Color{R: unit8(v[0]), G: unit8(v[1]), B: unit8(v[2]), A: unit8(v[3])}
}

// MulScalar scales the RGB channels by s, clamped to 0..1.
func (c Color) MulScalar(s float32) Color {
	t := uint32(clamp01(s) * 255)
	mul := func(ch uint8) uint8 {
		return uint8((uint32(ch) * t) / 255)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

func unit8(v float32) uint8 { return uint8(clamp01(v)*255 + 0.5) }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
