package cp3d

type Contact struct {
	// offsets from the body centers, absolute points until the arbiter adopts them
	r1, r2 Vector
	// contact point in body A's local frame, used to match contacts across steps
	local Vector

	nMass, t1Mass, t2Mass float32
	bounce, bias          float32

	jnAcc, jt1Acc, jt2Acc, jBias float32
}

// ContactPoint is a contact as reported to callers after a tick.
type ContactPoint struct {
	BodyA, BodyB BodyID
	// Midpoint between the two surfaces.
	Point Vector
	// Points from BodyA towards BodyB.
	Normal Vector
	// Penetration depth, positive when overlapping.
	Depth float32
	// Accumulated normal impulse.
	Impulse float32

	Friction, Restitution float32
}

// CollisionInfo is the output of the narrow phase for one pair of shapes.
type CollisionInfo struct {
	a, b  *Shape
	n     Vector
	count int
	arr   [MAX_CONTACTS_PER_ARBITER]Contact
}

func (info *CollisionInfo) Count() int {
	return info.count
}

func (info *CollisionInfo) Normal() Vector {
	return info.n
}

// Depth returns the penetration of contact i.
func (info *CollisionInfo) Depth(i int) float32 {
	con := &info.arr[i]
	return con.r1.Sub(con.r2).Dot(info.n)
}

// Point returns the midpoint of contact i.
func (info *CollisionInfo) Point(i int) Vector {
	con := &info.arr[i]
	return con.r1.Add(con.r2).Mul(0.5)
}

// PushContact records p1 on the surface of A and p2 on the surface of B.
func (info *CollisionInfo) PushContact(p1, p2 Vector) {
	if info.count >= MAX_CONTACTS_PER_ARBITER {
		cpAssert(false, "Internal error: Tried to push too many contacts.")
		return
	}

	con := &info.arr[info.count]
	con.r1 = p1
	con.r2 = p2
	info.count++
}
