package cp3d

type ShapeType int

// Shape types are ordered; the narrow phase always sees the lower order
// shape first.
const (
	SHAPE_SPHERE ShapeType = iota
	SHAPE_BOX
	SHAPE_TYPE_NUM
)

func (t ShapeType) String() string {
	switch t {
	case SHAPE_SPHERE:
		return "sphere"
	case SHAPE_BOX:
		return "box"
	}
	return "unknown"
}

type ShapeClass interface {
	// CacheData updates the world space data of the shape and returns its bounds.
	CacheData(transform Transform) BB
	// Inertia returns the principal moments of inertia for the given mass.
	Inertia(mass float32) Vector
	Type() ShapeType
}

type Shape struct {
	Class ShapeClass
	body  *Body
	bb    BB
}

func NewShape(class ShapeClass) *Shape {
	return &Shape{Class: class}
}

func (s *Shape) Body() *Body {
	return s.body
}

func (s *Shape) BB() BB {
	return s.bb
}

func (s *Shape) Order() ShapeType {
	return s.Class.Type()
}

func (s *Shape) CacheBB() BB {
	return s.Update(s.body.Transform())
}

func (s *Shape) Update(transform Transform) BB {
	s.bb = s.Class.CacheData(transform)
	return s.bb
}

// changed is called by setters after a shape parameter has been modified.
func (s *Shape) changed() {
	if s.body == nil {
		return
	}
	s.body.updateMass()
	s.CacheBB()
}
