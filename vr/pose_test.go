package vr

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultPosition(t *testing.T) {
	if got := DefaultPosition(true); got != (mgl32.Vec3{0.1, -0.1, -0.5}) {
		t.Fatalf("DefaultPosition(true) = %v, want (0.1,-0.1,-0.5)", got)
	}
	if got := DefaultPosition(false); got != (mgl32.Vec3{}) {
		t.Fatalf("DefaultPosition(false) = %v, want origin", got)
	}
}

func TestComputeWorldTransformMissingPosition(t *testing.T) {
	stage := &StageParameters{SittingToStanding: mgl32.Ident4()}
	q := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	tr := NewPoseTransformer(0)

	var out mgl32.Mat4
	tr.ComputeWorldTransform(&out, Pose{Orientation: &q}, stage, true)
	if got := out.Col(3).Vec3(); !got.ApproxEqual(mgl32.Vec3{0.1, -0.1, -0.5}) {
		t.Fatalf("controller translation = %v, want (0.1,-0.1,-0.5)", got)
	}

	tr.ComputeWorldTransform(&out, Pose{Orientation: &q}, stage, false)
	if got := out.Col(3).Vec3(); !got.ApproxEqual(mgl32.Vec3{}) {
		t.Fatalf("head translation = %v, want origin", got)
	}
}

func TestComputeWorldTransformStageOrder(t *testing.T) {
	stage := &StageParameters{
		SizeX:             2,
		SizeZ:             3,
		SittingToStanding: mgl32.Translate3D(0, 1.2, 0).Mul4(mgl32.HomogRotate3DY(0.5)),
	}
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0})
	p := mgl32.Vec3{0.2, 0.1, -0.3}

	var out mgl32.Mat4
	NewPoseTransformer(0).ComputeWorldTransform(&out, PoseAt(q, p), stage, false)

	want := stage.SittingToStanding.Mul4(mgl32.Translate3D(p[0], p[1], p[2]).Mul4(q.Mat4()))
	if !matApprox(out, want) {
		t.Fatalf("ComputeWorldTransform() = %s, want %s", matString(out), matString(want))
	}

	reversed := mgl32.Translate3D(p[0], p[1], p[2]).Mul4(q.Mat4()).Mul4(stage.SittingToStanding)
	if matApprox(out, reversed) {
		t.Fatalf("ComputeWorldTransform() composed in the wrong order")
	}
}

func TestComputeWorldTransformSeated(t *testing.T) {
	tr := NewPoseTransformer(1.5)
	q := mgl32.QuatRotate(1, mgl32.Vec3{0, 0, 1})
	p := mgl32.Vec3{0.5, 0.25, 0}

	var out mgl32.Mat4
	tr.ComputeWorldTransform(&out, PoseAt(q, p), nil, false)

	want := mgl32.Translate3D(0.5, 1.75, 0).Mul4(q.Mat4())
	if !matApprox(out, want) {
		t.Fatalf("ComputeWorldTransform() = %s, want %s", matString(out), matString(want))
	}
	if got := tr.StandingPosition(); !got.ApproxEqual(mgl32.Vec3{0.5, 1.75, 0}) {
		t.Fatalf("StandingPosition() = %v, want (0.5,1.75,0)", got)
	}
}

func TestComputeWorldTransformMissingOrientation(t *testing.T) {
	var out mgl32.Mat4
	NewPoseTransformer(0).ComputeWorldTransform(&out, Pose{}, nil, false)

	want := mgl32.Translate3D(0, PlayerHeight, 0)
	if !matApprox(out, want) {
		t.Fatalf("ComputeWorldTransform() = %s, want %s", matString(out), matString(want))
	}
}
