package vr

import "github.com/go-gl/mathgl/mgl32"

// PoseTransformer converts raw poses into world transforms.
//
// It is not safe for concurrent use: the standing-position accumulator is shared scratch.
type PoseTransformer struct {
	// PlayerHeight replaces the missing floor offset of seated-only tracking.
	PlayerHeight float32

	standing mgl32.Vec3
}

// NewPoseTransformer returns a transformer using the given eye height.
// A non-positive height selects PlayerHeight.
func NewPoseTransformer(playerHeight float32) *PoseTransformer {
	if playerHeight <= 0 {
		playerHeight = PlayerHeight
	}
	return &PoseTransformer{PlayerHeight: playerHeight}
}

// ComputeWorldTransform writes the world transform of pose into out.
//
// With a stage, out = stage.SittingToStanding × RT(orientation, position).
// Without one, the position is lifted by PlayerHeight.
func (t *PoseTransformer) ComputeWorldTransform(out *mgl32.Mat4, pose Pose, stage *StageParameters, isController bool) {
	q := mgl32.QuatIdent()
	if pose.Orientation != nil {
		q = *pose.Orientation
	}

	var p mgl32.Vec3
	switch {
	case pose.Position != nil:
		p = *pose.Position
	case isController:
		p = untrackedControllerPosition
	}

	if stage != nil {
		m := fromRotationTranslation(q, p)
		*out = stage.SittingToStanding.Mul4(m)
		return
	}

	t.standing = p.Add(mgl32.Vec3{0, t.PlayerHeight, 0})
	*out = fromRotationTranslation(q, t.standing)
}

// StandingPosition returns the last seated-branch position.
func (t *PoseTransformer) StandingPosition() mgl32.Vec3 { return t.standing }

// DefaultPosition returns the position substituted for a pose without one.
func DefaultPosition(isController bool) mgl32.Vec3 {
	if isController {
		return untrackedControllerPosition
	}
	return mgl32.Vec3{}
}

func fromRotationTranslation(q mgl32.Quat, p mgl32.Vec3) mgl32.Mat4 {
	m := q.Mat4()
	m[12] = p[0]
	m[13] = p[1]
	m[14] = p[2]
	return m
}
