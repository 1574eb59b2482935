package quarkgl

import "github.com/go-gl/mathgl/mgl32"

// Material is a minimal surface description.
type Material struct {
	BaseColor Color
}

// LightMode defines minimal lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is a minimal light setup.
type Light struct {
	Mode      LightMode
	Ambient   float32    // 0..1
	Dir       mgl32.Vec3 // direction *towards* the scene
	DirAmount float32    // 0..1
}

// DefaultLight is a soft key light from the upper right.
func DefaultLight() Light {
	return Light{
		Mode:      LightAmbientDirectional,
		Ambient:   0.3,
		Dir:       mgl32.Vec3{-1, -2, -1}.Normalize(),
		DirAmount: 0.7,
	}
}

// Vertex is a mesh vertex.
type Vertex struct {
	Pos mgl32.Vec3
}

// Mesh is a triangle mesh with an object transform.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16 // triangle list

	Transform mgl32.Mat4
	Material  Material
}

// Scene is a collection of meshes with a fixed capacity.
type Scene struct {
	Light Light

	meshes []Mesh
	alive  []bool
}

// CreateScene allocates a scene with a fixed mesh capacity.
func CreateScene(maxMeshes int) *Scene {
	if maxMeshes < 0 {
		maxMeshes = 0
	}
	return &Scene{
		Light:  DefaultLight(),
		meshes: make([]Mesh, maxMeshes),
		alive:  make([]bool, maxMeshes),
	}
}

// AddMesh adds a mesh to the scene and returns its id or -1 if full.
func (s *Scene) AddMesh(m Mesh) int {
	if s == nil {
		return -1
	}
	for i := range s.meshes {
		if s.alive[i] {
			continue
		}
		if m.Transform == (mgl32.Mat4{}) {
			m.Transform = mgl32.Ident4()
		}
		if m.Material.BaseColor == (Color{}) {
			m.Material.BaseColor = RGB(0xCC, 0xCC, 0xCC)
		}
		s.meshes[i] = m
		s.alive[i] = true
		return i
	}
	return -1
}

// UpdateMeshTransform updates a mesh transform by id.
func (s *Scene) UpdateMeshTransform(id int, m mgl32.Mat4) {
	if s == nil || id < 0 || id >= len(s.meshes) || !s.alive[id] {
		return
	}
	s.meshes[id].Transform = m
}

// Len returns the number of live meshes.
func (s *Scene) Len() int {
	n := 0
	for _, a := range s.alive {
		if a {
			n++
		}
	}
	return n
}

func (s *Scene) eachMesh(fn func(m *Mesh)) {
	for i := range s.meshes {
		if !s.alive[i] {
			continue
		}
		fn(&s.meshes[i])
	}
}
