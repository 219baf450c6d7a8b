package cp3d

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rigid body velocity update function type.
type BodyVelocityFunc func(body *Body, gravity Vector, dt float32)

// Rigid body position update function type.
type BodyPositionFunc func(body *Body, dt float32)

// body types
const (
	BODY_DYNAMIC = iota
	BODY_STATIC
)

type Body struct {
	id BodyID

	// Integration functions
	velocity_func BodyVelocityFunc
	position_func BodyPositionFunc

	// mass and it's inverse
	m     float32
	m_inv float32

	// principal moments of inertia in body space, and the inverse inertia
	// tensor in world space
	i_local     Vector
	i_local_inv Vector
	i_inv       mgl32.Mat3

	// position, orientation, render scale
	p     Vector
	q     Quat
	scale Vector

	// velocity, angular velocity, force, torque
	v Vector
	w Vector
	f Vector
	t Vector

	// "pseudo-velocities" used for eliminating overlap.
	v_bias Vector
	w_bias Vector

	linearDamping, angularDamping float32

	shape       *Shape
	filter      ShapeFilter
	friction    float32
	restitution float32

	goodP Vector
	goodQ Quat

	space       *Space
	constraints []*Constraint

	UserData interface{}
}

func (b Body) String() string {
	return fmt.Sprint("Body ", b.id)
}

// NewBody creates a detached body. A mass of zero makes the body static.
func NewBody(mass float32, shape *Shape) *Body {
	body := &Body{
		q:             mgl32.QuatIdent(),
		scale:         Vector{1, 1, 1},
		filter:        SHAPE_FILTER_ALL,
		velocity_func: BodyUpdateVelocity,
		position_func: BodyUpdatePosition,
	}
	body.goodQ = body.q
	if shape != nil {
		body.shape = shape
		shape.body = body
	}
	body.SetMass(mass)
	return body
}

func NewStaticBody(shape *Shape) *Body {
	return NewBody(0, shape)
}

func (body *Body) ID() BodyID {
	return body.id
}

func (body *Body) Shape() *Shape {
	return body.shape
}

func (body *Body) Mass() float32 {
	return body.m
}

// SetMass changes the mass and recomputes inertia from the shape. Zero makes
// the body static and clears its velocity.
func (body *Body) SetMass(mass float32) {
	if !IsFinite(mass) || mass < 0 {
		mass = 0
	}
	body.m = mass
	body.updateMass()
}

func (body *Body) updateMass() {
	if body.m <= 0 {
		body.m = 0
		body.m_inv = 0
		body.i_local = Vector{}
		body.i_local_inv = Vector{}
		body.v = Vector{}
		body.w = Vector{}
		body.updateInertia()
		return
	}

	body.m_inv = 1 / body.m
	if body.shape != nil {
		body.i_local = body.shape.Class.Inertia(body.m)
	} else {
		// shapeless bodies rotate like a sphere of unit diameter
		i := 0.1 * body.m
		body.i_local = Vector{i, i, i}
	}
	for k := 0; k < 3; k++ {
		if body.i_local[k] > 0 {
			body.i_local_inv[k] = 1 / body.i_local[k]
		} else {
			body.i_local_inv[k] = 0
		}
	}
	body.updateInertia()
}

// updateInertia rotates the local inverse inertia into world space.
func (body *Body) updateInertia() {
	r := body.q.Mat4().Mat3()
	body.i_inv = r.Mul3(mgl32.Diag3(body.i_local_inv)).Mul3(r.Transpose())
}

func (body *Body) Moment() Vector {
	return body.i_local
}

func (body *Body) GetType() int {
	if body.m == 0 {
		return BODY_STATIC
	}
	return BODY_DYNAMIC
}

func (body *Body) IsStatic() bool {
	return body.GetType() == BODY_STATIC
}

func (body *Body) Position() Vector {
	return body.p
}

func (body *Body) SetPosition(position Vector) {
	body.p = position
	body.goodP = position
	body.cacheShape()
}

func (body *Body) Rotation() Quat {
	return body.q
}

func (body *Body) SetRotation(q Quat) {
	body.q = q.Normalize()
	body.goodQ = body.q
	body.updateInertia()
	body.cacheShape()
}

func (body *Body) Transform() Transform {
	return Transform{Position: body.p, Rotation: body.q, Scale: body.scale}
}

// SetTransform teleports the body. Static bodies may be moved this way.
func (body *Body) SetTransform(t Transform) {
	body.p = t.Position
	body.q = t.Rotation.Normalize()
	if t.Scale != (Vector{}) {
		body.scale = t.Scale
	}
	body.goodP, body.goodQ = body.p, body.q
	body.updateInertia()
	body.cacheShape()
}

func (body *Body) cacheShape() {
	if body.shape != nil {
		body.shape.CacheBB()
	}
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(v Vector) {
	if body.IsStatic() {
		return
	}
	body.v = v
}

func (body *Body) AngularVelocity() Vector {
	return body.w
}

func (body *Body) SetAngularVelocity(w Vector) {
	if body.IsStatic() {
		return
	}
	body.w = w
}

func (body *Body) Force() Vector {
	return body.f
}

func (body *Body) SetForce(force Vector) {
	body.f = force
}

func (body *Body) Torque() Vector {
	return body.t
}

func (body *Body) SetTorque(torque Vector) {
	body.t = torque
}

func (body *Body) Damping() (linear, angular float32) {
	return body.linearDamping, body.angularDamping
}

func (body *Body) SetDamping(linear, angular float32) {
	body.linearDamping = math32.Max(linear, 0)
	body.angularDamping = math32.Max(angular, 0)
}

func (body *Body) Filter() ShapeFilter {
	return body.filter
}

func (body *Body) SetFilter(filter ShapeFilter) {
	body.filter = filter
}

func (body *Body) Friction() float32 {
	return body.friction
}

func (body *Body) SetFriction(u float32) {
	body.friction = math32.Max(u, 0)
}

func (body *Body) Restitution() float32 {
	return body.restitution
}

func (body *Body) SetRestitution(e float32) {
	body.restitution = math32.Max(e, 0)
}

func (body *Body) WorldToLocal(point Vector) Vector {
	return body.Transform().Unpoint(point)
}

func (body *Body) LocalToWorld(point Vector) Vector {
	return body.Transform().Point(point)
}

func (body *Body) ApplyForceAtWorldPoint(force, point Vector) {
	body.f = body.f.Add(force)
	r := point.Sub(body.p)
	body.t = body.t.Add(r.Cross(force))
}

func (body *Body) ApplyForceAtLocalPoint(force, point Vector) {
	t := body.Transform()
	body.ApplyForceAtWorldPoint(t.Vect(force), t.Point(point))
}

// ApplyImpulse applies impulse at relativePoint, a world space offset from
// the center of mass.
func (body *Body) ApplyImpulse(impulse, relativePoint Vector) {
	apply_impulse(body, impulse, relativePoint)
}

func (body *Body) ApplyImpulseAtWorldPoint(impulse, point Vector) {
	apply_impulse(body, impulse, point.Sub(body.p))
}

func (body *Body) ApplyImpulseAtLocalPoint(impulse, point Vector) {
	t := body.Transform()
	body.ApplyImpulseAtWorldPoint(t.Vect(impulse), t.Point(point))
}

func (body *Body) VelocityAtWorldPoint(point Vector) Vector {
	r := point.Sub(body.p)
	return body.v.Add(body.w.Cross(r))
}

func (body *Body) VelocityAtLocalPoint(point Vector) Vector {
	return body.v.Add(body.w.Cross(body.q.Rotate(point)))
}

func (body *Body) KineticEnergy() float32 {
	if body.IsStatic() {
		return 0
	}
	wl := body.q.Conjugate().Rotate(body.w)
	rot := wl[0]*wl[0]*body.i_local[0] + wl[1]*wl[1]*body.i_local[1] + wl[2]*wl[2]*body.i_local[2]
	return 0.5 * (body.m*body.v.Dot(body.v) + rot)
}

func (body *Body) SetVelocityUpdateFunc(f BodyVelocityFunc) {
	body.velocity_func = f
}

func (body *Body) SetPositionUpdateFunc(f BodyPositionFunc) {
	body.position_func = f
}

func (body *Body) EachConstraint(f func(*Constraint)) {
	for _, c := range body.constraints {
		f(c)
	}
}

func (body *Body) addConstraint(c *Constraint) {
	body.constraints = append(body.constraints, c)
}

func (body *Body) removeConstraint(c *Constraint) {
	for i, other := range body.constraints {
		if other == c {
			// leak-free delete from slice
			last := len(body.constraints) - 1
			copy(body.constraints[i:], body.constraints[i+1:])
			body.constraints[last] = nil
			body.constraints = body.constraints[:last]
			return
		}
	}
}

// saveGood records the current pose as the restore point for instability recovery.
func (body *Body) saveGood() {
	body.goodP = body.p
	body.goodQ = body.q
}

// sane reports whether the state of the body is finite.
func (body *Body) sane() bool {
	return VectorIsFinite(body.p) && QuatIsFinite(body.q) &&
		VectorIsFinite(body.v) && VectorIsFinite(body.w)
}

// restoreGood resets the body to its last good pose and stops it.
func (body *Body) restoreGood() {
	body.p = body.goodP
	body.q = body.goodQ
	body.v = Vector{}
	body.w = Vector{}
	body.v_bias = Vector{}
	body.w_bias = Vector{}
	body.f = Vector{}
	body.t = Vector{}
	body.updateInertia()
}

func BodyUpdateVelocity(body *Body, gravity Vector, dt float32) {
	if body.IsStatic() {
		return
	}

	body.v = body.v.Add(gravity.Add(body.f.Mul(body.m_inv)).Mul(dt))
	body.w = body.w.Add(body.i_inv.Mul3x1(body.t).Mul(dt))

	body.v = body.v.Mul(1 / (1 + body.linearDamping*dt))
	body.w = body.w.Mul(1 / (1 + body.angularDamping*dt))

	body.f = Vector{}
	body.t = Vector{}
}

func BodyUpdatePosition(body *Body, dt float32) {
	if body.IsStatic() {
		body.v_bias = Vector{}
		body.w_bias = Vector{}
		return
	}

	body.p = body.p.Add(body.v.Add(body.v_bias).Mul(dt))

	w := body.w.Add(body.w_bias)
	if axis, ok := NormalizeSafe(w); ok {
		angle := w.Len() * dt
		body.q = mgl32.QuatRotate(angle, axis).Mul(body.q).Normalize()
	}
	body.updateInertia()

	body.v_bias = Vector{}
	body.w_bias = Vector{}
}
