package quarkgl

// CubeMesh returns a unit cube centered on the origin (edge length 2·half).
func CubeMesh(half float32, c Color) Mesh {
	h := half
	v := []Vertex{
		{Pos: [3]float32{-h, -h, -h}},
		{Pos: [3]float32{h, -h, -h}},
		{Pos: [3]float32{h, h, -h}},
		{Pos: [3]float32{-h, h, -h}},
		{Pos: [3]float32{-h, -h, h}},
		{Pos: [3]float32{h, -h, h}},
		{Pos: [3]float32{h, h, h}},
		{Pos: [3]float32{-h, h, h}},
	}
	idx := []uint16{
		4, 5, 6, 4, 6, 7, // front (+z)
		1, 0, 3, 1, 3, 2, // back
		0, 4, 7, 0, 7, 3, // left
		5, 1, 2, 5, 2, 6, // right
		3, 7, 6, 3, 6, 2, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
	return Mesh{Vertices: v, Indices: idx, Material: Material{BaseColor: c}}
}

// GridMesh returns a flat floor of n×n tiles in the XZ plane at y=0, centered on the origin.
// Tiles alternate between a and b.
func GridMesh(n int, tile float32, a, b Color) []Mesh {
	if n <= 0 || tile <= 0 {
		return nil
	}
	origin := -float32(n) * tile / 2
	out := make([]Mesh, 0, 2)
	for pass, c := range []Color{a, b} {
		var v []Vertex
		var idx []uint16
		for z := 0; z < n; z++ {
			for x := 0; x < n; x++ {
				if (x+z)%2 != pass {
					continue
				}
				x0 := origin + float32(x)*tile
				z0 := origin + float32(z)*tile
				base := uint16(len(v))
				v = append(v,
					Vertex{Pos: [3]float32{x0, 0, z0}},
					Vertex{Pos: [3]float32{x0 + tile, 0, z0}},
					Vertex{Pos: [3]float32{x0 + tile, 0, z0 + tile}},
					Vertex{Pos: [3]float32{x0, 0, z0 + tile}},
				)
				idx = append(idx, base, base+2, base+1, base, base+3, base+2)
			}
		}
		if len(v) == 0 {
			continue
		}
		out = append(out, Mesh{Vertices: v, Indices: idx, Material: Material{BaseColor: c}})
	}
	return out
}
