package cp3d

import "github.com/chewxy/math32"

// BB is an axis aligned bounding box.
type BB struct {
	Min, Max Vector
}

func NewBBForExtents(c Vector, hx, hy, hz float32) BB {
	return BB{
		Min: Vector{c.X() - hx, c.Y() - hy, c.Z() - hz},
		Max: Vector{c.X() + hx, c.Y() + hy, c.Z() + hz},
	}
}

func NewBBForSphere(p Vector, r float32) BB {
	return NewBBForExtents(p, r, r, r)
}

func (a BB) Intersects(b BB) bool {
	return a.Min[0] <= b.Max[0] && b.Min[0] <= a.Max[0] &&
		a.Min[1] <= b.Max[1] && b.Min[1] <= a.Max[1] &&
		a.Min[2] <= b.Max[2] && b.Min[2] <= a.Max[2]
}

func (bb BB) Contains(other BB) bool {
	for i := 0; i < 3; i++ {
		if bb.Min[i] > other.Min[i] || bb.Max[i] < other.Max[i] {
			return false
		}
	}
	return true
}

func (bb BB) ContainsVect(v Vector) bool {
	for i := 0; i < 3; i++ {
		if v[i] < bb.Min[i] || v[i] > bb.Max[i] {
			return false
		}
	}
	return true
}

func (a BB) Merge(b BB) BB {
	var m BB
	for i := 0; i < 3; i++ {
		m.Min[i] = math32.Min(a.Min[i], b.Min[i])
		m.Max[i] = math32.Max(a.Max[i], b.Max[i])
	}
	return m
}

// Expand grows the box to include v.
func (bb BB) Expand(v Vector) BB {
	for i := 0; i < 3; i++ {
		bb.Min[i] = math32.Min(bb.Min[i], v[i])
		bb.Max[i] = math32.Max(bb.Max[i], v[i])
	}
	return bb
}

// Pad grows the box by margin on every side.
func (bb BB) Pad(margin float32) BB {
	m := Vector{margin, margin, margin}
	return BB{bb.Min.Sub(m), bb.Max.Add(m)}
}

func (bb BB) Center() Vector {
	return bb.Min.Add(bb.Max).Mul(0.5)
}

func (bb BB) Volume() float32 {
	d := bb.Max.Sub(bb.Min)
	return d[0] * d[1] * d[2]
}
