package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"stereo/hal"
	"stereo/internal/config"
	"stereo/quarkgl"
)

const spinCubes = 8

// SceneView draws the demo scene into the canvas viewport. It implements
// vr.Renderer and vr.ShapeDrawer; shapes use the matrices of the last Render.
type SceneView struct {
	canvas *hal.Canvas
	r      *quarkgl.Renderer
	scene  *quarkgl.Scene
	target quarkgl.RGBATarget

	vp    mgl32.Mat4
	shape quarkgl.Mesh
	light quarkgl.Light

	cubes [spinCubes]int
	angle float32
}

func NewSceneView(c *hal.Canvas, cfg config.RenderConfig) *SceneView {
	v := &SceneView{
		canvas: c,
		r:      quarkgl.NewRenderer(),
		scene:  quarkgl.CreateScene(spinCubes + 2),
		vp:     mgl32.Ident4(),
		shape:  quarkgl.CubeMesh(1, quarkgl.RGB(0, 0, 0xFF)),
		light:  quarkgl.DefaultLight(),
	}
	if cfg.Wireframe {
		v.r.SetRenderMode(quarkgl.RenderWireframe)
	}
	for _, m := range quarkgl.GridMesh(cfg.Grid, 0.5, quarkgl.RGB(0x40, 0x48, 0x50), quarkgl.RGB(0x60, 0x68, 0x70)) {
		v.scene.AddMesh(m)
	}
	for i := range v.cubes {
		m := quarkgl.CubeMesh(0.15, cubeColor(i))
		v.cubes[i] = v.scene.AddMesh(m)
	}
	v.Spin(0)
	return v
}

func cubeColor(i int) quarkgl.Color {
	palette := [...]quarkgl.Color{
		quarkgl.RGB(0xE0, 0x60, 0x40),
		quarkgl.RGB(0x40, 0xC0, 0x60),
		quarkgl.RGB(0xE0, 0xC0, 0x40),
		quarkgl.RGB(0x80, 0x60, 0xE0),
	}
	return palette[i%len(palette)]
}

// Spin advances the ring of cubes around the player by da radians.
func (v *SceneView) Spin(da float32) {
	v.angle += da
	for i, id := range v.cubes {
		a := v.angle + float32(i)*2*math.Pi/spinCubes
		x := 2 * float32(math.Cos(float64(a)))
		z := 2 * float32(math.Sin(float64(a)))
		m := mgl32.Translate3D(x, 1.5, z).
			Mul4(mgl32.HomogRotate3DY(-a)).
			Mul4(mgl32.HomogRotate3DX(a * 2))
		v.scene.UpdateMeshTransform(id, m)
	}
}

// bind points the target at the canvas viewport. Viewport y runs bottom-up.
func (v *SceneView) bind() {
	fb := v.canvas.Framebuffer()
	x, y, w, h := v.canvas.CurrentViewport()
	v.target = quarkgl.RGBATarget{
		Buf:    fb.Buffer(),
		Stride: fb.StrideBytes(),
		X:      x,
		Y:      fb.Height() - (y + h),
		W:      w,
		H:      h,
	}
}

func (v *SceneView) Render(proj, view mgl32.Mat4) {
	v.bind()
	v.vp = proj.Mul4(view)
	v.r.BeginView(&v.target)
	v.r.DrawScene(&v.target, proj, view, v.scene)
}

func (v *SceneView) DrawShape(model mgl32.Mat4, color mgl32.Vec4) {
	m := v.shape
	m.Transform = model
	m.Material.BaseColor = quarkgl.ColorFromVec4(color)
	v.r.DrawMesh(&v.target, v.vp, m, v.light)
}
