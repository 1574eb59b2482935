// Package quarkgl is a minimal, predictable software 3D rasterizer.
//
// It draws flat-shaded or wireframe triangle meshes into a caller-provided Target,
// usually one viewport of a larger framebuffer. Matrices come from the caller
// (column-major mgl32.Mat4, OpenGL clip conventions), so the same scene can be drawn
// once per eye with different projection and view transforms.
//
// Pipeline (fixed):
//
//	Mesh → Model → View → Projection → Clipping → Rasterization → Target.
//
// The renderer avoids allocations in the draw path once its depth buffer has grown to
// the largest viewport it has seen.
package quarkgl
