package cp3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Hinge joins two bodies at a pivot and lets them rotate only about a shared
// axis. The angle is measured from the relative orientation at creation and
// is limited to [Lower, Upper] radians. Equal limits lock the hinge and
// Lower > Upper disables the limit.
type Hinge struct {
	*Constraint
	PivotA, PivotB Vector
	AxisA, AxisB   Vector
	Lower, Upper   float32

	// reference directions perpendicular to the axes, equal in world space at creation
	refA, refB Vector

	// pivot rows
	r1, r2 Vector
	k      mgl32.Mat3
	jAcc   Vector

	// angular rows
	axis   Vector
	p1, p2 Vector
	kAng   [4]float32
	jAng   [2]float32

	// limit rows, solved together with the pivot
	angle, prevAngle float32
	started          bool
	axialMass        float32
	kPivotAxis       Vector
	kLower, kUpper   mgl32.Mat4
	jLower, jUpper   float32
}

// NewHinge joins a and b. Pivots and axes are in the local frame of each body.
func NewHinge(a, b *Body, pivotA, pivotB, axisA, axisB Vector, lower, upper float32) *Constraint {
	axisA, okA := NormalizeSafe(axisA)
	axisB, okB := NormalizeSafe(axisB)
	if !okA {
		axisA = VectorUp
	}
	if !okB {
		axisB = VectorUp
	}

	joint := &Hinge{
		PivotA: pivotA,
		PivotB: pivotB,
		AxisA:  axisA,
		AxisB:  axisB,
		Lower:  lower,
		Upper:  upper,
	}
	joint.refA, _ = TangentBasis(axisA)
	// refB is refA expressed in B's frame so the starting angle is zero
	joint.refB = b.q.Conjugate().Rotate(a.q.Rotate(joint.refA))
	joint.Constraint = NewConstraint(joint, a, b)
	return joint.Constraint
}

func (joint *Hinge) Limited() bool {
	return joint.Lower <= joint.Upper
}

// SetLimits changes the angle limits.
func (joint *Hinge) SetLimits(lower, upper float32) {
	joint.Lower, joint.Upper = lower, upper
	joint.jLower, joint.jUpper = 0, 0
}

// Angle is the rotation of B relative to A about the axis since creation.
// It keeps counting past a full turn.
func (joint *Hinge) Angle() float32 {
	return joint.angle
}

// measureAngle returns the wrapped angle in (-pi, pi].
func (joint *Hinge) measureAngle() float32 {
	axis := joint.a.q.Rotate(joint.AxisA)
	ra := joint.a.q.Rotate(joint.refA)
	rb := joint.b.q.Rotate(joint.refB)
	return math32.Atan2(axis.Dot(ra.Cross(rb)), ra.Dot(rb))
}

// updateAngle accumulates the wrapped angle. The relative spin about the axis
// picks the number of whole turns made since the last step, so fast hinges
// do not lose or gain a turn.
func (joint *Hinge) updateAngle(dt float32) {
	measured := joint.measureAngle()
	if !joint.started {
		joint.angle = measured
		joint.prevAngle = measured
		joint.started = true
		return
	}
	predicted := joint.b.w.Sub(joint.a.w).Dot(joint.axis) * dt
	delta := measured - joint.prevAngle
	delta += 2 * math32.Pi * math32.Round((predicted-delta)/(2*math32.Pi))
	joint.angle += delta
	joint.prevAngle = measured
}

// limitBlock is the effective mass of the pivot rows plus one limit row
// acting along s*axis.
func limitBlock(k mgl32.Mat3, kPivotAxis Vector, kAxis, s float32) mgl32.Mat4 {
	var m mgl32.Mat4
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.Set(row, col, k.At(row, col))
		}
		m.Set(row, 3, s*kPivotAxis[row])
		m.Set(3, row, s*kPivotAxis[row])
	}
	m.Set(3, 3, kAxis)
	if m.Det() == 0 {
		return mgl32.Mat4{}
	}
	return m.Inv()
}

func (joint *Hinge) PreStep(dt float32) {
	a := joint.a
	b := joint.b

	joint.r1 = a.q.Rotate(joint.PivotA)
	joint.r2 = b.q.Rotate(joint.PivotB)
	kPivot := k_tensor(a, b, joint.r1, joint.r2)
	joint.k = kPivot.Inv()

	joint.axis = a.q.Rotate(joint.AxisA)
	joint.p1, joint.p2 = TangentBasis(joint.axis)

	iSum := a.i_inv.Add(b.i_inv)
	k11 := joint.p1.Dot(iSum.Mul3x1(joint.p1))
	k12 := joint.p1.Dot(iSum.Mul3x1(joint.p2))
	k22 := joint.p2.Dot(iSum.Mul3x1(joint.p2))
	if det := k11*k22 - k12*k12; det != 0 {
		inv := 1 / det
		joint.kAng = [4]float32{k22 * inv, -k12 * inv, -k12 * inv, k11 * inv}
	} else {
		joint.kAng = [4]float32{}
	}

	kAxis := joint.axis.Dot(iSum.Mul3x1(joint.axis))
	if kAxis != 0 {
		joint.axialMass = 1 / kAxis
	} else {
		joint.axialMass = 0
	}

	joint.updateAngle(dt)
	if !joint.Limited() {
		joint.jLower, joint.jUpper = 0, 0
		return
	}

	// change of the relative axial spin per unit pivot impulse
	joint.kPivotAxis = b.i_inv.Mul3x1(joint.axis).Cross(joint.r2).Add(a.i_inv.Mul3x1(joint.axis).Cross(joint.r1))
	joint.kLower = limitBlock(kPivot, joint.kPivotAxis, kAxis, 1)
	joint.kUpper = limitBlock(kPivot, joint.kPivotAxis, kAxis, -1)
}

func (joint *Hinge) ApplyCachedImpulse(dt_coef float32) {
	a := joint.a
	b := joint.b

	apply_impulses(a, b, joint.r1, joint.r2, joint.jAcc.Mul(dt_coef))
	ang := joint.p1.Mul(joint.jAng[0]).Add(joint.p2.Mul(joint.jAng[1]))
	ang = ang.Add(joint.axis.Mul(joint.jLower - joint.jUpper))
	apply_angular_impulses(a, b, ang.Mul(dt_coef))
}

func (joint *Hinge) ApplyImpulse(dt float32) {
	a := joint.a
	b := joint.b
	jMax := joint.maxForce * dt

	// angular rows orthogonal to the axis
	wr := b.w.Sub(a.w)
	c1 := -wr.Dot(joint.p1)
	c2 := -wr.Dot(joint.p2)
	j1 := joint.kAng[0]*c1 + joint.kAng[1]*c2
	j2 := joint.kAng[2]*c1 + joint.kAng[3]*c2
	joint.jAng[0] += j1
	joint.jAng[1] += j2
	apply_angular_impulses(a, b, joint.p1.Mul(j1).Add(joint.p2.Mul(j2)))

	switch {
	case !joint.Limited():
	case joint.Lower == joint.Upper:
		joint.solveLimit(&joint.jLower, &joint.kLower, 1, 0, true, dt, jMax)
	default:
		joint.solveLimit(&joint.jLower, &joint.kLower, 1, joint.angle-joint.Lower, false, dt, jMax)
		joint.solveLimit(&joint.jUpper, &joint.kUpper, -1, joint.Upper-joint.angle, false, dt, jMax)
	}
	joint.solvePivot(jMax)
}

func (joint *Hinge) solvePivot(jMax float32) {
	a := joint.a
	b := joint.b

	vr := relative_velocity(a, b, joint.r1, joint.r2)
	j := joint.k.Mul3x1(vr.Mul(-1))
	jOld := joint.jAcc
	joint.jAcc = ClampLength(joint.jAcc.Add(j), jMax)
	apply_impulses(a, b, joint.r1, joint.r2, joint.jAcc.Sub(jOld))
}

// solveLimit keeps the rotation along s*axis from closing more than gap
// within this step. The limit impulse comes from the pivot and limit rows
// solved as one block, then the pivot rows are solved again with it in place.
// Unless locked the limit only pushes.
func (joint *Hinge) solveLimit(acc *float32, k *mgl32.Mat4, s, gap float32, locked bool, dt, jMax float32) {
	a := joint.a
	b := joint.b

	var bias float32
	if gap > 0 {
		bias = gap / dt
	}
	vr := relative_velocity(a, b, joint.r1, joint.r2)
	cdot := s*b.w.Sub(a.w).Dot(joint.axis) + bias
	j := k.Mul4x1(mgl32.Vec4{-vr[0], -vr[1], -vr[2], -cdot})[3]

	jOld := *acc
	if locked {
		*acc = Clamp(jOld+j, -jMax, jMax)
	} else {
		*acc = Clamp(jOld+j, 0, jMax)
	}
	apply_angular_impulses(a, b, joint.axis.Mul(s*(*acc-jOld)))
	joint.solvePivot(jMax)
}

func (joint *Hinge) ApplyBiasImpulse(dt float32) {
	a := joint.a
	b := joint.b

	// axis alignment
	bAxis := b.q.Rotate(joint.AxisB)
	tilt := joint.axis.Cross(bAxis)
	wb := b.w_bias.Sub(a.w_bias)
	c1 := -joint.errorBias*tilt.Dot(joint.p1)/dt - wb.Dot(joint.p1)
	c2 := -joint.errorBias*tilt.Dot(joint.p2)/dt - wb.Dot(joint.p2)
	j1 := joint.kAng[0]*c1 + joint.kAng[1]*c2
	j2 := joint.kAng[2]*c1 + joint.kAng[3]*c2
	apply_angular_bias_impulses(a, b, joint.p1.Mul(j1).Add(joint.p2.Mul(j2)))

	// pivot
	delta := b.p.Add(joint.r2).Sub(a.p.Add(joint.r1))
	bias := bias_velocity(joint.errorBias, joint.maxBias, delta, dt)
	vbr := relative_bias_velocity(a, b, joint.r1, joint.r2)
	apply_bias_impulses(a, b, joint.r1, joint.r2, joint.k.Mul3x1(bias.Sub(vbr)))

	// limits last, so drift correction cannot carry the hinge across one
	if joint.Limited() {
		joint.biasLimit(1, joint.angle-joint.Lower, dt)
		joint.biasLimit(-1, joint.Upper-joint.angle, dt)
	}
}

// biasLimit pushes the angle back inside a violated limit and keeps the total
// rotation of this step from crossing one that is still open.
func (joint *Hinge) biasLimit(s, gap, dt float32) {
	a := joint.a
	b := joint.b

	target := -gap / dt
	if gap < 0 {
		target = -joint.errorBias * gap / dt
	}
	w := b.w.Add(b.w_bias).Sub(a.w.Add(a.w_bias))
	if rate := s * w.Dot(joint.axis); rate < target {
		apply_angular_bias_impulses(a, b, joint.axis.Mul(s*(target-rate)*joint.axialMass))
	}
}

func (joint *Hinge) GetImpulse() float32 {
	return joint.jAcc.Len() + math32.Abs(joint.jLower) + math32.Abs(joint.jUpper)
}
