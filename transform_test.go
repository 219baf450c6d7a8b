package cp3d

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransform_PointRoundTrip(t *testing.T) {
	tr := NewTransformRigid(Vector{1, 2, 3}, mgl32.QuatRotate(math32.Pi/3, Vector{0, 1, 1}.Normalize()))
	p := Vector{0.5, -1, 2}

	world := tr.Point(p)
	assertVectorNear(t, p, tr.Unpoint(world), 1e-5)
	assertVectorNear(t, p, tr.Unvect(tr.Vect(p)), 1e-5)
}

func TestTransform_Basis(t *testing.T) {
	tr := NewTransformRigid(Vector{}, mgl32.QuatRotate(math32.Pi/2, Vector{0, 0, 1}))
	x := tr.Basis().Col(0)
	assertVectorNear(t, Vector{0, 1, 0}, x, 1e-6)
}

func TestTransform_Mat4IgnoresZeroScale(t *testing.T) {
	tr := Transform{Position: Vector{1, 0, 0}, Rotation: mgl32.QuatIdent()}
	m := tr.Mat4()
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{2, 1, 1, 1}, p)

	tr.Scale = Vector{2, 2, 2}
	p = tr.Mat4().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{3, 2, 2, 1}, p)
}

func TestTransform_IsFinite(t *testing.T) {
	assert.True(t, NewTransformIdentity().IsFinite())
	assert.False(t, NewTransformTranslate(Vector{math32.NaN(), 0, 0}).IsFinite())
}
