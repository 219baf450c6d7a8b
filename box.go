package cp3d

// Box is a solid cuboid centered on its body.
type Box struct {
	*Shape

	// full edge lengths and their halves
	extent, half Vector

	// world space center and axes, refreshed by CacheData
	tc   Vector
	axes [3]Vector
}

// NewBox creates a box with the given full edge lengths.
func NewBox(extent Vector) (*Shape, error) {
	if err := validateExtent(extent); err != nil {
		return nil, err
	}
	box := &Box{
		extent: extent,
		half:   extent.Mul(0.5),
		axes:   [3]Vector{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	box.Shape = NewShape(box)
	return box.Shape, nil
}

func validateExtent(extent Vector) error {
	for i := 0; i < 3; i++ {
		if !IsFinite(extent[i]) || extent[i] < 0 {
			return invalidShape("box extent %v", extent)
		}
	}
	return nil
}

func (box *Box) Type() ShapeType {
	return SHAPE_BOX
}

func (box *Box) CacheData(transform Transform) BB {
	box.tc = transform.Position
	basis := transform.Basis()
	var r Vector
	for i := 0; i < 3; i++ {
		box.axes[i] = basis.Col(i)
		r = r.Add(Abs(box.axes[i]).Mul(box.half[i]))
	}
	return NewBBForExtents(box.tc, r[0], r[1], r[2])
}

func (box *Box) Inertia(mass float32) Vector {
	w, h, d := box.extent[0], box.extent[1], box.extent[2]
	k := mass / 12
	return Vector{k * (h*h + d*d), k * (w*w + d*d), k * (w*w + h*h)}
}

func (box *Box) Extent() Vector {
	return box.extent
}

func (box *Box) HalfExtent() Vector {
	return box.half
}

func (box *Box) SetExtent(extent Vector) error {
	if err := validateExtent(extent); err != nil {
		return err
	}
	box.extent = extent
	box.half = extent.Mul(0.5)
	box.changed()
	return nil
}

// TransformC is the world space center as of the last CacheData.
func (box *Box) TransformC() Vector {
	return box.tc
}

// Axis returns the world space direction of local axis i.
func (box *Box) Axis(i int) Vector {
	return box.axes[i]
}

// ClosestPoint returns the point of the box nearest to p.
func (box *Box) ClosestPoint(p Vector) Vector {
	d := p.Sub(box.tc)
	q := box.tc
	for i := 0; i < 3; i++ {
		dist := Clamp(d.Dot(box.axes[i]), -box.half[i], box.half[i])
		q = q.Add(box.axes[i].Mul(dist))
	}
	return q
}

// Corners returns the eight world space vertices.
func (box *Box) Corners() [8]Vector {
	var out [8]Vector
	for i := 0; i < 8; i++ {
		p := box.tc
		for k := 0; k < 3; k++ {
			s := box.half[k]
			if i&(1<<k) != 0 {
				s = -s
			}
			p = p.Add(box.axes[k].Mul(s))
		}
		out[i] = p
	}
	return out
}
