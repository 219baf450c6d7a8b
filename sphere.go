package cp3d

type Sphere struct {
	*Shape
	tc Vector
	r  float32
}

func NewSphere(radius float32) (*Shape, error) {
	if !IsFinite(radius) || radius < 0 {
		return nil, invalidShape("sphere radius %v", radius)
	}
	sphere := &Sphere{r: radius}
	sphere.Shape = NewShape(sphere)
	return sphere.Shape, nil
}

func (sphere *Sphere) Type() ShapeType {
	return SHAPE_SPHERE
}

func (sphere *Sphere) CacheData(transform Transform) BB {
	sphere.tc = transform.Position
	return NewBBForSphere(sphere.tc, sphere.r)
}

func (sphere *Sphere) Inertia(mass float32) Vector {
	i := 0.4 * mass * sphere.r * sphere.r
	return Vector{i, i, i}
}

func (sphere *Sphere) Radius() float32 {
	return sphere.r
}

func (sphere *Sphere) SetRadius(r float32) error {
	if !IsFinite(r) || r < 0 {
		return invalidShape("sphere radius %v", r)
	}
	sphere.r = r
	sphere.changed()
	return nil
}

func (sphere *Sphere) TransformC() Vector {
	return sphere.tc
}
