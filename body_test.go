package cp3d

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBody_StaticIgnoresVelocity(t *testing.T) {
	body := NewStaticBody(nil)
	assert.True(t, body.IsStatic())
	body.SetVelocity(Vector{1, 2, 3})
	body.SetAngularVelocity(Vector{1, 0, 0})
	assert.Equal(t, Vector{}, body.Velocity())
	assert.Equal(t, Vector{}, body.AngularVelocity())
	assert.Equal(t, float32(0), body.KineticEnergy())

	BodyUpdateVelocity(body, Vector{0, -10, 0}, 1)
	BodyUpdatePosition(body, 1)
	assert.Equal(t, Vector{}, body.Position())
}

func TestBody_SetMass(t *testing.T) {
	body := NewBody(2, nil)
	assert.False(t, body.IsStatic())
	assert.InDelta(t, 0.2, body.Moment().X(), 1e-6)

	body.SetVelocity(Vector{1, 0, 0})
	body.SetMass(0)
	assert.True(t, body.IsStatic())
	assert.Equal(t, Vector{}, body.Velocity(), "static bodies do not move")

	body.SetMass(math32.NaN())
	assert.True(t, body.IsStatic())
}

func TestBody_ApplyImpulse(t *testing.T) {
	shape, _ := NewSphere(1)
	body := NewBody(2, shape)

	body.ApplyImpulse(Vector{0, 0, 4}, Vector{})
	assert.Equal(t, Vector{0, 0, 2}, body.Velocity())
	assert.Equal(t, Vector{}, body.AngularVelocity())

	// off center impulses spin the body
	body.ApplyImpulse(Vector{0, 0, 1}, Vector{1, 0, 0})
	w := body.AngularVelocity()
	assert.Less(t, w.Y(), float32(0))
	assert.InDelta(t, 0, w.X(), 1e-6)

	v := body.VelocityAtWorldPoint(Vector{1, 0, 0})
	assert.Greater(t, v.Z(), body.Velocity().Z())
}

func TestBody_Integrate(t *testing.T) {
	body := NewBody(1, nil)
	BodyUpdateVelocity(body, Vector{0, -10, 0}, 0.5)
	assert.Equal(t, Vector{0, -5, 0}, body.Velocity())

	BodyUpdatePosition(body, 0.5)
	assert.Equal(t, Vector{0, -2.5, 0}, body.Position())

	body.SetAngularVelocity(Vector{0, math32.Pi, 0})
	BodyUpdatePosition(body, 0.5)
	expected := mgl32.QuatRotate(math32.Pi/2, Vector{0, 1, 0})
	assert.InDelta(t, expected.W, body.Rotation().W, 1e-5)
	assertVectorNear(t, expected.V, body.Rotation().V, 1e-5)
	assert.InDelta(t, 1, body.Rotation().Len(), 1e-6)
}

func TestBody_Damping(t *testing.T) {
	body := NewBody(1, nil)
	body.SetDamping(1, -3)
	linear, angular := body.Damping()
	assert.Equal(t, float32(1), linear)
	assert.Equal(t, float32(0), angular)

	body.SetVelocity(Vector{2, 0, 0})
	BodyUpdateVelocity(body, Vector{}, 1)
	assert.Equal(t, Vector{1, 0, 0}, body.Velocity())
}

func TestBody_LocalWorld(t *testing.T) {
	body := NewBody(1, nil)
	body.SetTransform(NewTransformRigid(Vector{1, 2, 3}, mgl32.QuatRotate(math32.Pi/2, Vector{0, 0, 1})))
	w := body.LocalToWorld(Vector{1, 0, 0})
	assertVectorNear(t, Vector{1, 3, 3}, w, 1e-5)
	assertVectorNear(t, Vector{1, 0, 0}, body.WorldToLocal(w), 1e-5)
}

func TestBody_RestoreGood(t *testing.T) {
	body := NewBody(1, nil)
	body.SetPosition(Vector{0, 1, 0})
	body.saveGood()
	body.SetVelocity(Vector{math32.NaN(), 0, 0})
	BodyUpdatePosition(body, 1)
	assert.False(t, body.sane())

	body.restoreGood()
	assert.True(t, body.sane())
	assert.Equal(t, Vector{0, 1, 0}, body.Position())
	assert.Equal(t, Vector{}, body.Velocity())
}
