package cp3d

import "github.com/go-gl/mathgl/mgl32"

// Point2Point pins a point of body A to a point of body B. Rotation about
// the shared point is free.
type Point2Point struct {
	*Constraint
	PivotA, PivotB Vector

	r1, r2 Vector
	k      mgl32.Mat3

	jAcc Vector
}

// NewPoint2Point joins a and b. Pivots are in the local frame of each body.
func NewPoint2Point(a, b *Body, pivotA, pivotB Vector) *Constraint {
	joint := &Point2Point{
		PivotA: pivotA,
		PivotB: pivotB,
	}
	joint.Constraint = NewConstraint(joint, a, b)
	return joint.Constraint
}

// NewPoint2PointAtWorld joins a and b at a world space point.
func NewPoint2PointAtWorld(a, b *Body, pivot Vector) *Constraint {
	return NewPoint2Point(a, b, a.WorldToLocal(pivot), b.WorldToLocal(pivot))
}

func (joint *Point2Point) PreStep(dt float32) {
	a := joint.a
	b := joint.b

	joint.r1 = a.q.Rotate(joint.PivotA)
	joint.r2 = b.q.Rotate(joint.PivotB)

	// Calculate mass tensor
	joint.k = k_tensor(a, b, joint.r1, joint.r2).Inv()
}

func (joint *Point2Point) ApplyCachedImpulse(dt_coef float32) {
	apply_impulses(joint.a, joint.b, joint.r1, joint.r2, joint.jAcc.Mul(dt_coef))
}

func (joint *Point2Point) ApplyImpulse(dt float32) {
	a := joint.a
	b := joint.b

	// compute relative velocity
	vr := relative_velocity(a, b, joint.r1, joint.r2)

	j := joint.k.Mul3x1(vr.Mul(-1))
	jOld := joint.jAcc
	joint.jAcc = ClampLength(joint.jAcc.Add(j), joint.maxForce*dt)
	j = joint.jAcc.Sub(jOld)

	apply_impulses(a, b, joint.r1, joint.r2, j)
}

func (joint *Point2Point) ApplyBiasImpulse(dt float32) {
	a := joint.a
	b := joint.b

	delta := b.p.Add(joint.r2).Sub(a.p.Add(joint.r1))
	bias := bias_velocity(joint.errorBias, joint.maxBias, delta, dt)

	vbr := relative_bias_velocity(a, b, joint.r1, joint.r2)
	j := joint.k.Mul3x1(bias.Sub(vbr))
	apply_bias_impulses(a, b, joint.r1, joint.r2, j)
}

func (joint *Point2Point) GetImpulse() float32 {
	return joint.jAcc.Len()
}

// Separation is the current world distance between the two pivots.
func (joint *Point2Point) Separation() float32 {
	pa := joint.a.LocalToWorld(joint.PivotA)
	pb := joint.b.LocalToWorld(joint.PivotB)
	return pb.Sub(pa).Len()
}
