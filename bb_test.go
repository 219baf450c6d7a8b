package cp3d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBB_Intersects(t *testing.T) {
	a := NewBBForExtents(Vector{}, 1, 1, 1)
	b := NewBBForSphere(Vector{1.5, 0, 0}, 0.5)
	c := NewBBForSphere(Vector{0, 0, 2.1}, 1)

	assert.True(t, a.Intersects(b), "touching boxes intersect")
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))
}

func TestBB_MergeContains(t *testing.T) {
	a := NewBBForExtents(Vector{}, 1, 1, 1)
	b := NewBBForExtents(Vector{3, 0, 0}, 1, 1, 1)
	m := a.Merge(b)

	assert.True(t, m.Contains(a))
	assert.True(t, m.Contains(b))
	assert.False(t, a.Contains(m))
	assert.Equal(t, Vector{1.5, 0, 0}, m.Center())
	assert.InDelta(t, 5*2*2, m.Volume(), 1e-6)
}

func TestBB_ExpandPad(t *testing.T) {
	bb := NewBBForExtents(Vector{}, 1, 1, 1).Expand(Vector{0, 5, 0})
	assert.True(t, bb.ContainsVect(Vector{0, 4.9, 0}))
	assert.Equal(t, float32(5), bb.Max.Y())

	padded := bb.Pad(0.5)
	assert.Equal(t, Vector{-1.5, -1.5, -1.5}, padded.Min)
	assert.Equal(t, Vector{1.5, 5.5, 1.5}, padded.Max)
}
