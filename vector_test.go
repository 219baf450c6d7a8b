package cp3d

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestVector_NormalizeSafe(t *testing.T) {
	u, ok := NormalizeSafe(Vector{})
	assert.False(t, ok)
	assert.Equal(t, Vector{}, u)

	u, ok = NormalizeSafe(Vector{1e-9, 0, 0})
	assert.False(t, ok, "near zero vectors have no direction")
	assert.True(t, VectorIsFinite(u))

	u, ok = NormalizeSafe(Vector{0, 3, 4})
	assert.True(t, ok)
	assert.InDelta(t, 1, u.Len(), 1e-6)
	assert.InDelta(t, 0.6, u.Y(), 1e-6)
}

func TestVector_TangentBasis(t *testing.T) {
	for _, n := range []Vector{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, -1},
		Vector{1, 1, 1}.Normalize(),
		Vector{-0.3, 0.2, 0.9}.Normalize(),
	} {
		t1, t2 := TangentBasis(n)
		assert.InDelta(t, 1, t1.Len(), 1e-5, "t1 of %v", n)
		assert.InDelta(t, 1, t2.Len(), 1e-5, "t2 of %v", n)
		assert.InDelta(t, 0, t1.Dot(n), 1e-5)
		assert.InDelta(t, 0, t2.Dot(n), 1e-5)
		assert.InDelta(t, 0, t1.Dot(t2), 1e-5)
	}
}

func TestVector_Skew(t *testing.T) {
	v := Vector{1, -2, 3}
	u := Vector{0.5, 4, -1}
	assertVectorNear(t, v.Cross(u), Skew(v).Mul3x1(u), 1e-5)
}

func TestVector_ClampLength(t *testing.T) {
	assert.Equal(t, Vector{3, 4, 0}, ClampLength(Vector{3, 4, 0}, INFINITY))
	assert.InDelta(t, 1, ClampLength(Vector{3, 4, 0}, 1).Len(), 1e-6)
	assert.Equal(t, Vector{0.1, 0, 0}, ClampLength(Vector{0.1, 0, 0}, 1))
}

func TestVector_IsFinite(t *testing.T) {
	assert.True(t, VectorIsFinite(Vector{1, 2, 3}))
	assert.False(t, VectorIsFinite(Vector{1, math32.NaN(), 3}))
	assert.False(t, VectorIsFinite(Vector{math32.Inf(1), 0, 0}))
	assert.False(t, QuatIsFinite(Quat{W: math32.NaN()}))
}

func assertVectorNear(t *testing.T, want, got Vector, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if !assert.InDelta(t, want[i], got[i], delta, msgAndArgs...) {
			t.Logf("want %v got %v", want, got)
			return
		}
	}
}
