package cp3d

import "github.com/go-gl/mathgl/mgl32"

// Transform places a body in the world. Scale is carried for renderers and is
// never applied to collision shapes.
type Transform struct {
	Position Vector
	Rotation Quat
	Scale    Vector
}

func NewTransformIdentity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    Vector{1, 1, 1},
	}
}

func NewTransformTranslate(translate Vector) Transform {
	t := NewTransformIdentity()
	t.Position = translate
	return t
}

func NewTransformRigid(translate Vector, rotation Quat) Transform {
	return Transform{
		Position: translate,
		Rotation: rotation.Normalize(),
		Scale:    Vector{1, 1, 1},
	}
}

// Point transforms a local point into world space.
func (t Transform) Point(p Vector) Vector {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// Vect rotates a local direction into world space.
func (t Transform) Vect(v Vector) Vector {
	return t.Rotation.Rotate(v)
}

// Unpoint is the rigid inverse of Point.
func (t Transform) Unpoint(p Vector) Vector {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
}

// Unvect is the inverse of Vect.
func (t Transform) Unvect(v Vector) Vector {
	return t.Rotation.Conjugate().Rotate(v)
}

// Basis returns the rotation matrix of the transform.
func (t Transform) Basis() mgl32.Mat3 {
	return t.Rotation.Mat4().Mat3()
}

// Mat4 returns the full model matrix including scale, for renderers.
func (t Transform) Mat4() mgl32.Mat4 {
	scale := t.Scale
	if scale == (Vector{}) {
		scale = Vector{1, 1, 1}
	}
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

func (t Transform) IsFinite() bool {
	return VectorIsFinite(t.Position) && QuatIsFinite(t.Rotation) && VectorIsFinite(t.Scale)
}
