package cp3d

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBox_Invalid(t *testing.T) {
	for _, extent := range []Vector{
		{-1, 1, 1},
		{1, math32.NaN(), 1},
		{1, 1, math32.Inf(1)},
	} {
		shape, err := NewBox(extent)
		assert.Nil(t, shape)
		assert.True(t, errors.Is(err, ErrInvalidShapeParameter), "extent %v: %v", extent, err)
	}
}

func TestNewSphere_Invalid(t *testing.T) {
	_, err := NewSphere(-0.5)
	assert.True(t, errors.Is(err, ErrInvalidShapeParameter))
	_, err = NewSphere(math32.NaN())
	assert.True(t, errors.Is(err, ErrInvalidShapeParameter))
}

func TestBox_CacheData(t *testing.T) {
	shape, err := NewBox(Vector{2, 4, 6})
	require.NoError(t, err)
	assert.Equal(t, SHAPE_BOX, shape.Order())

	bb := shape.Update(NewTransformTranslate(Vector{1, 0, 0}))
	assert.Equal(t, Vector{0, -2, -3}, bb.Min)
	assert.Equal(t, Vector{2, 2, 3}, bb.Max)

	// a quarter turn about z swaps the x and y extents
	bb = shape.Update(NewTransformRigid(Vector{}, mgl32.QuatRotate(math32.Pi/2, Vector{0, 0, 1})))
	assert.InDelta(t, 2, bb.Max.X(), 1e-5)
	assert.InDelta(t, 1, bb.Max.Y(), 1e-5)
	assert.InDelta(t, 3, bb.Max.Z(), 1e-5)
}

func TestBox_ClosestPoint(t *testing.T) {
	shape, _ := NewBox(Vector{2, 2, 2})
	shape.Update(NewTransformIdentity())
	box := shape.Class.(*Box)

	assert.Equal(t, Vector{1, 0.5, -1}, box.ClosestPoint(Vector{3, 0.5, -7}))
	assert.Equal(t, Vector{0.2, 0.1, 0}, box.ClosestPoint(Vector{0.2, 0.1, 0}))

	for _, c := range box.Corners() {
		for k := 0; k < 3; k++ {
			assert.Equal(t, float32(1), math32.Abs(c[k]))
		}
	}
}

func TestShape_Inertia(t *testing.T) {
	sphere, _ := NewSphere(2)
	assert.InDelta(t, 0.4*3*4, sphere.Class.Inertia(3).X(), 1e-5)

	box, _ := NewBox(Vector{1, 2, 3})
	i := box.Class.Inertia(12)
	assert.InDelta(t, 4+9, i.X(), 1e-5)
	assert.InDelta(t, 1+9, i.Y(), 1e-5)
	assert.InDelta(t, 1+4, i.Z(), 1e-5)
}

func TestShape_ChangedUpdatesBody(t *testing.T) {
	shape, _ := NewSphere(1)
	body := NewBody(5, shape)
	body.SetPosition(Vector{0, 3, 0})
	before := body.Moment()

	require.NoError(t, shape.Class.(*Sphere).SetRadius(2))
	assert.InDelta(t, before.X()*4, body.Moment().X(), 1e-4)
	assert.Equal(t, float32(5), shape.BB().Max.Y())

	assert.Error(t, shape.Class.(*Sphere).SetRadius(-1))
	assert.Equal(t, float32(2), shape.Class.(*Sphere).Radius(), "rejected radius leaves the shape alone")
}
