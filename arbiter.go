package cp3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Arbiter is the contact constraint between two touching bodies. Arbiters
// persist while the bodies keep touching so their impulses can warm start
// the next step.
type Arbiter struct {
	e, u float32

	a, b           *Shape
	body_a, body_b *Body

	count    int
	contacts [MAX_CONTACTS_PER_ARBITER]Contact
	n        Vector
	t1, t2   Vector

	stamp uint
	state int // Arbiter state enum
}

func NewArbiter(a, b *Shape) *Arbiter {
	return &Arbiter{
		a:      a,
		body_a: a.body,
		b:      b,
		body_b: b.body,
		state:  CP_ARBITER_STATE_FIRST_COLLISION,
	}
}

func (arb *Arbiter) IsFirstContact() bool {
	return arb.state == CP_ARBITER_STATE_FIRST_COLLISION
}

func (arb *Arbiter) Count() int {
	if arb.state < CP_ARBITER_STATE_CACHED {
		return arb.count
	}
	return 0
}

func (arb *Arbiter) Bodies() (*Body, *Body) {
	return arb.body_a, arb.body_b
}

func (arb *Arbiter) Normal() Vector {
	return arb.n
}

// Update adopts a fresh narrow phase result, carrying accumulated impulses
// over from contacts that are still in the same place on body A.
func (arb *Arbiter) Update(info *CollisionInfo) {
	a := info.a
	b := info.b

	arb.a = a
	arb.body_a = a.body
	arb.b = b
	arb.body_b = b.body

	// impulses cached from an earlier touch are stale
	if arb.state == CP_ARBITER_STATE_CACHED {
		arb.count = 0
		arb.state = CP_ARBITER_STATE_FIRST_COLLISION
	}

	inv := arb.body_a.q.Conjugate()
	var fresh [MAX_CONTACTS_PER_ARBITER]Contact
	for i := 0; i < info.count; i++ {
		con := info.arr[i]

		// r1 and r2 store absolute offsets at init time.
		// Need to convert them to relative offsets.
		con.r1 = con.r1.Sub(arb.body_a.p)
		con.r2 = con.r2.Sub(arb.body_b.p)
		con.local = inv.Rotate(con.r1)

		con.jnAcc, con.jt1Acc, con.jt2Acc = 0, 0, 0
		best := CONTACT_MATCH_DISTANCE * CONTACT_MATCH_DISTANCE
		for j := 0; j < arb.count; j++ {
			old := &arb.contacts[j]
			if d := old.local.Sub(con.local).LenSqr(); d < best {
				best = d
				con.jnAcc = old.jnAcc
				con.jt1Acc = old.jt1Acc
				con.jt2Acc = old.jt2Acc
			}
		}
		fresh[i] = con
	}

	arb.contacts = fresh
	arb.count = info.count
	arb.n = info.n
	arb.t1, arb.t2 = TangentBasis(arb.n)

	arb.e = arb.body_a.restitution * arb.body_b.restitution
	arb.u = arb.body_a.friction * arb.body_b.friction
}

func (arb *Arbiter) PreStep(dt, slop, bias, bounceThreshold float32) {
	a := arb.body_a
	b := arb.body_b
	n := arb.n
	bodyDelta := b.p.Sub(a.p)

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]

		// Calculate the mass normal and mass tangents.
		con.nMass = 1 / k_scalar(a, b, con.r1, con.r2, n)
		con.t1Mass = 1 / k_scalar(a, b, con.r1, con.r2, arb.t1)
		con.t2Mass = 1 / k_scalar(a, b, con.r1, con.r2, arb.t2)

		// Calculate the target bias velocity.
		dist := con.r2.Sub(con.r1).Add(bodyDelta).Dot(n)
		con.bias = -bias * math32.Min(0, dist+slop) / dt
		con.jBias = 0

		// Calculate the target bounce velocity.
		vrn := relative_velocity(a, b, con.r1, con.r2).Dot(n)
		if -vrn > bounceThreshold {
			con.bounce = vrn * arb.e
		} else {
			con.bounce = 0
		}
	}
}

func (arb *Arbiter) ApplyCachedImpulse(dt_coef float32) {
	if arb.IsFirstContact() {
		return
	}

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]
		j := arb.n.Mul(con.jnAcc).Add(arb.t1.Mul(con.jt1Acc)).Add(arb.t2.Mul(con.jt2Acc))
		apply_impulses(arb.body_a, arb.body_b, con.r1, con.r2, j.Mul(dt_coef))
	}
}

func (arb *Arbiter) ApplyImpulse() {
	a := arb.body_a
	b := arb.body_b
	n := arb.n
	friction := arb.u

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]
		r1 := con.r1
		r2 := con.r2

		vr := relative_velocity(a, b, r1, r2)
		vrn := vr.Dot(n)

		jn := -(con.bounce + vrn) * con.nMass
		jnOld := con.jnAcc
		con.jnAcc = math32.Max(jnOld+jn, 0)
		apply_impulses(a, b, r1, r2, n.Mul(con.jnAcc-jnOld))

		jtMax := friction * con.jnAcc
		vr = relative_velocity(a, b, r1, r2)

		jt1 := -vr.Dot(arb.t1) * con.t1Mass
		jt1Old := con.jt1Acc
		con.jt1Acc = Clamp(jt1Old+jt1, -jtMax, jtMax)

		jt2 := -vr.Dot(arb.t2) * con.t2Mass
		jt2Old := con.jt2Acc
		con.jt2Acc = Clamp(jt2Old+jt2, -jtMax, jtMax)

		apply_impulses(a, b, r1, r2, arb.t1.Mul(con.jt1Acc-jt1Old).Add(arb.t2.Mul(con.jt2Acc-jt2Old)))
	}
}

// ApplyBiasImpulse pushes overlapping bodies apart through their bias
// velocities, which are discarded after the position update.
func (arb *Arbiter) ApplyBiasImpulse() {
	a := arb.body_a
	b := arb.body_b
	n := arb.n

	for i := 0; i < arb.count; i++ {
		con := &arb.contacts[i]

		vbn := relative_bias_velocity(a, b, con.r1, con.r2).Dot(n)
		jbn := (con.bias - vbn) * con.nMass
		jbnOld := con.jBias
		con.jBias = math32.Max(jbnOld+jbn, 0)

		apply_bias_impulses(a, b, con.r1, con.r2, n.Mul(con.jBias-jbnOld))
	}
}

// TotalImpulse is the impulse applied to body B by the last step.
func (arb *Arbiter) TotalImpulse() Vector {
	var sum Vector
	for i := 0; i < arb.Count(); i++ {
		con := &arb.contacts[i]
		sum = sum.Add(arb.n.Mul(con.jnAcc)).Add(arb.t1.Mul(con.jt1Acc)).Add(arb.t2.Mul(con.jt2Acc))
	}
	return sum
}

// ContactPoints reports the arbiter's contacts.
func (arb *Arbiter) ContactPoints() []ContactPoint {
	count := arb.Count()
	out := make([]ContactPoint, count)
	for i := 0; i < count; i++ {
		con := &arb.contacts[i]
		p1 := arb.body_a.p.Add(con.r1)
		p2 := arb.body_b.p.Add(con.r2)
		out[i] = ContactPoint{
			BodyA:       arb.body_a.id,
			BodyB:       arb.body_b.id,
			Point:       p1.Add(p2).Mul(0.5),
			Normal:      arb.n,
			Depth:       p1.Sub(p2).Dot(arb.n),
			Impulse:     con.jnAcc,
			Friction:    arb.u,
			Restitution: arb.e,
		}
	}
	return out
}

func apply_impulses(a, b *Body, r1, r2, j Vector) {
	apply_impulse(a, j.Mul(-1), r1)
	apply_impulse(b, j, r2)
}

func apply_bias_impulses(a, b *Body, r1, r2, j Vector) {
	apply_bias_impulse(a, j.Mul(-1), r1)
	apply_bias_impulse(b, j, r2)
}

func apply_impulse(body *Body, j, r Vector) {
	body.v = body.v.Add(j.Mul(body.m_inv))
	body.w = body.w.Add(body.i_inv.Mul3x1(r.Cross(j)))
}

func apply_bias_impulse(body *Body, j, r Vector) {
	body.v_bias = body.v_bias.Add(j.Mul(body.m_inv))
	body.w_bias = body.w_bias.Add(body.i_inv.Mul3x1(r.Cross(j)))
}

func apply_angular_impulses(a, b *Body, j Vector) {
	a.w = a.w.Sub(a.i_inv.Mul3x1(j))
	b.w = b.w.Add(b.i_inv.Mul3x1(j))
}

func apply_angular_bias_impulses(a, b *Body, j Vector) {
	a.w_bias = a.w_bias.Sub(a.i_inv.Mul3x1(j))
	b.w_bias = b.w_bias.Add(b.i_inv.Mul3x1(j))
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1_sum := a.v.Add(a.w.Cross(r1))
	v2_sum := b.v.Add(b.w.Cross(r2))
	return v2_sum.Sub(v1_sum)
}

func relative_bias_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1_sum := a.v_bias.Add(a.w_bias.Cross(r1))
	v2_sum := b.v_bias.Add(b.w_bias.Cross(r2))
	return v2_sum.Sub(v1_sum)
}

func k_scalar_body(body *Body, r, n Vector) float32 {
	rcn := r.Cross(n)
	return body.m_inv + rcn.Dot(body.i_inv.Mul3x1(rcn))
}

func k_scalar(a, b *Body, r1, r2, n Vector) float32 {
	value := k_scalar_body(a, r1, n) + k_scalar_body(b, r2, n)
	cpAssert(value != 0, "Unsolvable collision or constraint.")
	return value
}

// k_tensor returns the effective mass matrix of a point constraint. It is
// singular when both bodies are static.
func k_tensor(a, b *Body, r1, r2 Vector) mgl32.Mat3 {
	k := mgl32.Ident3().Mul(a.m_inv + b.m_inv)
	s1 := Skew(r1)
	s2 := Skew(r2)
	k = k.Sub(s1.Mul3(a.i_inv).Mul3(s1))
	k = k.Sub(s2.Mul3(b.i_inv).Mul3(s2))
	return k
}
