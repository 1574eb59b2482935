package quarkgl

import "github.com/go-gl/mathgl/mgl32"

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	Mode  RenderMode
	Depth bool

	depthBuf []float32
	depthW   int
}

// NewRenderer creates a renderer. Depth testing is on by default.
func NewRenderer() *Renderer {
	return &Renderer{
		Mode:  RenderSolidFlat,
		Depth: true,
	}
}

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

// BeginView prepares the depth buffer for a new view drawn into t.
// Meshes drawn until the next BeginView share depth.
func (r *Renderer) BeginView(t Target) {
	if r == nil || t == nil {
		return
	}
	w, h := t.Size()
	if !r.Depth || w <= 0 || h <= 0 {
		r.depthBuf = r.depthBuf[:0]
		r.depthW = 0
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
	r.depthW = w
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// DrawScene draws every mesh of s into t.
func (r *Renderer) DrawScene(t Target, proj, view mgl32.Mat4, s *Scene) {
	if r == nil || t == nil || s == nil {
		return
	}
	vp := proj.Mul4(view)
	s.eachMesh(func(m *Mesh) {
		r.DrawMesh(t, vp, *m, s.Light)
	})
}

// DrawMesh draws one mesh with the combined projection × view matrix vp.
func (r *Renderer) DrawMesh(t Target, vp mgl32.Mat4, m Mesh, light Light) int {
	if r == nil || t == nil || len(m.Vertices) == 0 || len(m.Indices) < 3 {
		return 0
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return 0
	}
	if m.Transform == (mgl32.Mat4{}) {
		m.Transform = mgl32.Ident4()
	}

	mvp := vp.Mul4(m.Transform)
	drawn := 0

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0 := int(m.Indices[i+0])
		i1 := int(m.Indices[i+1])
		i2 := int(m.Indices[i+2])
		if i0 >= len(m.Vertices) || i1 >= len(m.Vertices) || i2 >= len(m.Vertices) {
			continue
		}

		v0 := m.Vertices[i0].Pos
		v1 := m.Vertices[i1].Pos
		v2 := m.Vertices[i2].Pos

		ndc0, ok0 := clipToNDC(mvp.Mul4x1(v0.Vec4(1)))
		ndc1, ok1 := clipToNDC(mvp.Mul4x1(v1.Vec4(1)))
		ndc2, ok2 := clipToNDC(mvp.Mul4x1(v2.Vec4(1)))
		if !ok0 || !ok1 || !ok2 {
			continue
		}

		x0, y0 := ndcToScreen(ndc0, w, h)
		x1, y1 := ndcToScreen(ndc1, w, h)
		x2, y2 := ndcToScreen(ndc2, w, h)

		base := m.Material.BaseColor
		if light.Mode == LightAmbientDirectional {
			n := triangleNormal(m.Transform, v0, v1, v2)
			base = base.MulScalar(lightIntensity(light, n))
		}

		switch r.Mode {
		case RenderWireframe:
			r.drawLine(t, x0, y0, x1, y1, base)
			r.drawLine(t, x1, y1, x2, y2, base)
			r.drawLine(t, x2, y2, x0, y0, base)
		default:
			r.fillTriangleFlat(t, w, h, x0, y0, ndc0.Z, x1, y1, ndc1.Z, x2, y2, ndc2.Z, base)
		}
		drawn++
	}
	return drawn
}

type ndcPoint struct {
	X, Y, Z float32
}

// clipToNDC drops vertices behind the eye (w<=0) or outside the depth range.
func clipToNDC(p mgl32.Vec4) (ndcPoint, bool) {
	if p[3] <= 0 {
		return ndcPoint{}, false
	}
	invW := 1 / p[3]
	z := p[2] * invW
	if z < -1 || z > 1 {
		return ndcPoint{}, false
	}
	return ndcPoint{X: p[0] * invW, Y: p[1] * invW, Z: z}, true
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func triangleNormal(model mgl32.Mat4, a, b, c mgl32.Vec3) mgl32.Vec3 {
	wa := model.Mul4x1(a.Vec4(1)).Vec3()
	wb := model.Mul4x1(b.Vec4(1)).Vec3()
	wc := model.Mul4x1(c.Vec4(1)).Vec3()
	n := wb.Sub(wa).Cross(wc.Sub(wa))
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

func lightIntensity(l Light, n mgl32.Vec3) float32 {
	amb := clamp01(l.Ambient)
	dir := clamp01(l.DirAmount)
	if l.Dir.Len() == 0 || n.Len() == 0 {
		return amb
	}
	d := n.Dot(l.Dir.Normalize().Mul(-1))
	if d < 0 {
		d = 0
	}
	return clamp01(amb + d*dir)
}

func (r *Renderer) depthTest(x, y int, z float32) bool {
	if !r.Depth || r.depthW == 0 {
		return true
	}
	if x < 0 || y < 0 || x >= r.depthW {
		return false
	}
	idx := y*r.depthW + x
	if idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]. Map to [0,1].
	d := clamp01(z*0.5 + 0.5)
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *Renderer) fillTriangleFlat(t Target, w, h int, x0, y0 int, z0 float32, x1, y1 int, z1 float32, x2, y2 int, z2 float32, c Color) {
	minX, maxX := max(min(x0, x1, x2), 0), min(max(x0, x1, x2), w-1)
	minY, maxY := max(min(y0, y1, y2), 0), min(max(y0, y1, y2), h-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	// Accept either winding.
	sign := 1
	if area < 0 {
		sign = -1
	}
	invArea := 1.0 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y) * sign
			w1 := edgeFn(x2, y2, x0, y0, x, y) * sign
			w2 := edgeFn(x0, y0, x1, y1, x, y) * sign
			if (w0 | w1 | w2) < 0 {
				continue
			}
			a0 := float32(w0*sign) * invArea
			a1 := float32(w1*sign) * invArea
			a2 := float32(w2*sign) * invArea
			z := a0*z0 + a1*z1 + a2*z2
			if !r.depthTest(x, y, z) {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
