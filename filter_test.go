package cp3d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmask(t *testing.T) {
	m := Bitmask(0b0110)
	assert.True(t, m.Has(0b0010))
	assert.False(t, m.Has(0b0011))
	assert.True(t, m.Intersects(0b0011))
	assert.False(t, m.Intersects(0b1001))
	assert.True(t, NO_CATEGORIES.IsEmpty())
}

func TestShapeFilter_Accepts(t *testing.T) {
	tests := []struct {
		name string
		a, b ShapeFilter
		want bool
	}{
		{"all", SHAPE_FILTER_ALL, SHAPE_FILTER_ALL, true},
		{"none", SHAPE_FILTER_NONE, SHAPE_FILTER_ALL, false},
		{"same group", NewShapeFilter(1, 1), NewShapeFilter(1, 1), true},
		{"one way", NewShapeFilter(1, 2), NewShapeFilter(2, 4), false},
		{"crossed", NewShapeFilter(1, 2), NewShapeFilter(2, 1), true},
		{"group zero", NewShapeFilter(0, 0xFFFF), SHAPE_FILTER_ALL, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Accepts(tt.b))
			assert.Equal(t, tt.want, tt.b.Accepts(tt.a), "must be symmetric")
			assert.Equal(t, !tt.want, tt.a.Reject(tt.b))
		})
	}
}

func TestShapeFilter_Excluded(t *testing.T) {
	assert.True(t, NewShapeFilter(0, 0).Excluded())
	assert.True(t, NewShapeFilter(1, 0).Excluded())
	assert.False(t, NewShapeFilter(1, 1).Excluded())
}
