package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a local translation/rotation/scale triple. Matrix form is
// translate * rotate * scale, so scale applies first and translation last.
type Transform struct {
	Translation mgl32.Vec3 `json:"translation"`
	Rotation    mgl32.Quat `json:"rotation"`
	Scale       mgl32.Vec3 `json:"scale"`
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

func (t Transform) Right() mgl32.Vec3 {
	return t.Rotation.Normalize().Rotate(mgl32.Vec3{1, 0, 0})
}

func (t Transform) Up() mgl32.Vec3 {
	return t.Rotation.Normalize().Rotate(mgl32.Vec3{0, 1, 0})
}

func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Normalize().Rotate(mgl32.Vec3{0, 0, 1})
}

// TransformFromDecomposed builds a transform from glTF-style decomposed
// arrays; the rotation comes in as [x y z w].
func TransformFromDecomposed(translation [3]float32, rotation [4]float32, scale [3]float32) Transform {
	return Transform{
		Translation: mgl32.Vec3{translation[0], translation[1], translation[2]},
		Rotation: mgl32.Quat{
			W: rotation[3],
			V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]},
		},
		Scale: mgl32.Vec3{scale[0], scale[1], scale[2]},
	}
}

// DecomposeMatrix splits a TRS matrix back into its components. Shear and
// negative scale are not handled.
func DecomposeMatrix(m mgl32.Mat4) Transform {
	translation := mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}

	scale := mgl32.Vec3{
		mgl32.Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}.Len(),
		mgl32.Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}.Len(),
		mgl32.Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}.Len(),
	}

	rotation := mgl32.Mat3{
		m.At(0, 0) / scale.X(), m.At(1, 0) / scale.X(), m.At(2, 0) / scale.X(),
		m.At(0, 1) / scale.Y(), m.At(1, 1) / scale.Y(), m.At(2, 1) / scale.Y(),
		m.At(0, 2) / scale.Z(), m.At(1, 2) / scale.Z(), m.At(2, 2) / scale.Z(),
	}

	return Transform{
		Translation: translation,
		Rotation:    mgl32.Mat4ToQuat(rotation.Mat4()),
		Scale:       scale,
	}
}
