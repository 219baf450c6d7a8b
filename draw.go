package cp3d

// Draw flags
const (
	DRAW_SHAPES           = 1 << 0
	DRAW_CONSTRAINTS      = 1 << 1
	DRAW_COLLISION_POINTS = 1 << 2
)

// 16 bytes
type FColor struct {
	R, G, B, A float32
}

type Drawer interface {
	DrawBox(transform Transform, extent Vector, outline, fill FColor, data interface{})
	DrawSphere(center Vector, rotation Quat, radius float32, outline, fill FColor, data interface{})
	DrawSegment(a, b Vector, fill FColor, data interface{})
	DrawDot(size float32, pos Vector, fill FColor, data interface{})

	Flags() uint
	OutlineColor() FColor
	ShapeColor(shape *Shape, data interface{}) FColor
	ConstraintColor() FColor
	CollisionPointColor() FColor
	Data() interface{}
}

func DrawShape(shape *Shape, options Drawer) {
	body := shape.body
	data := options.Data()

	outline := options.OutlineColor()
	fill := options.ShapeColor(shape, data)

	switch class := shape.Class.(type) {
	case *Box:
		options.DrawBox(body.Transform(), class.extent, outline, fill, data)
	case *Sphere:
		options.DrawSphere(body.p, body.q, class.r, outline, fill, data)
	default:
		panic("Unknown shape type")
	}
}

func DrawConstraint(constraint *Constraint, options Drawer) {
	data := options.Data()
	color := options.ConstraintColor()

	a := constraint.a
	b := constraint.b

	switch joint := constraint.Class.(type) {
	case *Point2Point:
		pa := a.LocalToWorld(joint.PivotA)
		pb := b.LocalToWorld(joint.PivotB)

		options.DrawDot(5, pa, color, data)
		options.DrawDot(5, pb, color, data)
		options.DrawSegment(a.p, pa, color, data)
		options.DrawSegment(b.p, pb, color, data)
	case *Hinge:
		pa := a.LocalToWorld(joint.PivotA)
		axis := a.q.Rotate(joint.AxisA)

		options.DrawDot(5, pa, color, data)
		options.DrawSegment(pa.Sub(axis), pa.Add(axis), color, data)
	}
}

// DrawSpace draws the space as of the last tick. It locks the space.
func DrawSpace(space *Space, options Drawer) {
	space.mu.Lock()
	defer space.mu.Unlock()
	if space.closed {
		return
	}

	flags := options.Flags()

	if flags&DRAW_SHAPES != 0 {
		space.bodies.each(func(_ handle, body *Body) {
			if body.shape != nil {
				DrawShape(body.shape, options)
			}
		})
	}

	if flags&DRAW_CONSTRAINTS != 0 {
		space.constraints.each(func(_ handle, c *Constraint) {
			if !c.inert {
				DrawConstraint(c, options)
			}
		})
	}

	if flags&DRAW_COLLISION_POINTS != 0 {
		data := options.Data()
		color := options.CollisionPointColor()

		for _, arb := range space.arbiters {
			n := arb.n
			for j := 0; j < arb.Count(); j++ {
				p1 := arb.body_a.p.Add(arb.contacts[j].r1)
				p2 := arb.body_b.p.Add(arb.contacts[j].r2)

				options.DrawSegment(p1.Sub(n.Mul(0.25)), p2.Add(n.Mul(0.25)), color, data)
			}
		}
	}
}
