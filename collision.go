package cp3d

import (
	"github.com/chewxy/math32"
)

type CollisionFunc func(a, b *Shape, info *CollisionInfo)

// Indexed by a.Order() + b.Order()*SHAPE_TYPE_NUM with a.Order() <= b.Order().
var BuiltinCollisionFuncs = [SHAPE_TYPE_NUM * SHAPE_TYPE_NUM]CollisionFunc{
	SphereToSphere,
	CollisionError,
	SphereToBox,
	BoxToBox,
}

// Collide runs the narrow phase for a pair of shapes whose world data has
// already been cached. The normal of the result points from info.a to info.b.
func Collide(a, b *Shape, info *CollisionInfo) {
	info.a, info.b = a, b
	info.count = 0
	info.n = Vector{}

	// Make sure the shape types are in order.
	if a.Order() > b.Order() {
		info.a, info.b = b, a
	}

	BuiltinCollisionFuncs[info.a.Order()+info.b.Order()*SHAPE_TYPE_NUM](info.a, info.b, info)
}

func CollisionError(a, b *Shape, info *CollisionInfo) {
	panic("Internal Error: Shape types are not sorted")
}

func SphereToSphere(a, b *Shape, info *CollisionInfo) {
	s1 := a.Class.(*Sphere)
	s2 := b.Class.(*Sphere)

	delta := s2.tc.Sub(s1.tc)
	mindist := s1.r + s2.r
	distsq := delta.LenSqr()
	if distsq >= mindist*mindist {
		return
	}

	n, ok := NormalizeSafe(delta)
	if !ok {
		// concentric, any direction will do
		n = VectorUp
	}
	info.n = n
	info.PushContact(s1.tc.Add(n.Mul(s1.r)), s2.tc.Sub(n.Mul(s2.r)))
}

func SphereToBox(a, b *Shape, info *CollisionInfo) {
	sphere := a.Class.(*Sphere)
	box := b.Class.(*Box)

	c := sphere.tc
	q := box.ClosestPoint(c)
	d := c.Sub(q)

	if n, ok := NormalizeSafe(d); ok {
		dist := d.Len()
		if dist >= sphere.r {
			return
		}
		// n points from the box to the sphere
		info.n = n.Mul(-1)
		info.PushContact(c.Sub(n.Mul(sphere.r)), q)
		return
	}

	// The center is inside the box, push out through the nearest face.
	local := c.Sub(box.tc)
	best := 0
	bestDist := INFINITY
	var sign float32 = 1
	for i := 0; i < 3; i++ {
		proj := local.Dot(box.axes[i])
		dist := box.half[i] - math32.Abs(proj)
		if dist < bestDist {
			bestDist = dist
			best = i
			if proj < 0 {
				sign = -1
			} else {
				sign = 1
			}
		}
	}
	out := box.axes[best].Mul(sign)
	info.n = out.Mul(-1)
	info.PushContact(c.Sub(out.Mul(sphere.r)), c.Add(out.Mul(bestDist)))
}

const (
	satRelTolerance = 0.95
	satAbsTolerance = 0.001
)

// BoxToBox is a separating axis test over the three face axes of each box
// and the nine edge cross products. Face contacts are produced by clipping
// the incident face against the reference face, edge contacts from the
// closest points of the two support edges.
func BoxToBox(a, b *Shape, info *CollisionInfo) {
	box1 := a.Class.(*Box)
	box2 := b.Class.(*Box)
	t := box2.tc.Sub(box1.tc)

	// overlap of the two boxes projected on the unit axis l
	overlap := func(l Vector) float32 {
		var r1, r2 float32
		for i := 0; i < 3; i++ {
			r1 += box1.half[i] * math32.Abs(box1.axes[i].Dot(l))
			r2 += box2.half[i] * math32.Abs(box2.axes[i].Dot(l))
		}
		return r1 + r2 - math32.Abs(t.Dot(l))
	}

	faceA, faceB, edge := -1, -1, -1
	sA, sB, sE := INFINITY, INFINITY, INFINITY
	var nE Vector

	for i := 0; i < 3; i++ {
		s := overlap(box1.axes[i])
		if s <= 0 {
			return
		}
		if s < sA {
			sA, faceA = s, i
		}
	}
	for i := 0; i < 3; i++ {
		s := overlap(box2.axes[i])
		if s <= 0 {
			return
		}
		if s < sB {
			sB, faceB = s, i
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			l, ok := NormalizeSafe(box1.axes[i].Cross(box2.axes[j]))
			if !ok {
				// parallel edges, the face axes already cover this direction
				continue
			}
			s := overlap(l)
			if s <= 0 {
				return
			}
			if s < sE {
				sE, edge, nE = s, i*3+j, l
			}
		}
	}

	// Prefer face contacts unless an edge axis is clearly better.
	if edge >= 0 && sE < satRelTolerance*math32.Min(sA, sB)-satAbsTolerance {
		n := nE
		if n.Dot(t) < 0 {
			n = n.Mul(-1)
		}
		info.n = n
		edgeContact(box1, box2, edge/3, edge%3, n, info)
		return
	}

	if sB < satRelTolerance*sA-satAbsTolerance {
		n := box2.axes[faceB]
		if n.Dot(t) < 0 {
			n = n.Mul(-1)
		}
		info.n = n
		// reference face on B points back towards A
		clipFaces(box2, faceB, n.Mul(-1), box1, info, true)
		return
	}

	n := box1.axes[faceA]
	if n.Dot(t) < 0 {
		n = n.Mul(-1)
	}
	info.n = n
	clipFaces(box1, faceA, n, box2, info, false)
}

// clipFaces clips the face of inc most opposed to refN against the face of
// ref with outward normal refN. When flipped, ref is shape B of the pair.
func clipFaces(ref *Box, axis int, refN Vector, inc *Box, info *CollisionInfo, flipped bool) {
	faceCenter := ref.tc.Add(refN.Mul(ref.half[axis]))
	u := ref.axes[(axis+1)%3]
	v := ref.axes[(axis+2)%3]
	hu := ref.half[(axis+1)%3]
	hv := ref.half[(axis+2)%3]

	// incident face
	k := 0
	var kDot float32 = -1
	for i := 0; i < 3; i++ {
		if d := math32.Abs(inc.axes[i].Dot(refN)); d > kDot {
			kDot, k = d, i
		}
	}
	incN := inc.axes[k]
	if incN.Dot(refN) > 0 {
		incN = incN.Mul(-1)
	}
	ic := inc.tc.Add(incN.Mul(inc.half[k]))
	iu := inc.axes[(k+1)%3].Mul(inc.half[(k+1)%3])
	iv := inc.axes[(k+2)%3].Mul(inc.half[(k+2)%3])

	poly := make([]Vector, 0, 8)
	poly = append(poly,
		ic.Add(iu).Add(iv),
		ic.Sub(iu).Add(iv),
		ic.Sub(iu).Sub(iv),
		ic.Add(iu).Sub(iv),
	)

	poly = clipPolygon(poly, u, u.Dot(faceCenter)+hu)
	poly = clipPolygon(poly, u.Mul(-1), -u.Dot(faceCenter)+hu)
	poly = clipPolygon(poly, v, v.Dot(faceCenter)+hv)
	poly = clipPolygon(poly, v.Mul(-1), -v.Dot(faceCenter)+hv)

	var points [8]Vector
	var depths [8]float32
	count := 0
	for _, p := range poly {
		sep := p.Sub(faceCenter).Dot(refN)
		if sep < 0 && count < len(points) {
			points[count] = p
			depths[count] = -sep
			count++
		}
	}

	for _, i := range reduceContacts(points[:count], depths[:count], refN) {
		p := points[i]
		onRef := p.Add(refN.Mul(depths[i]))
		if flipped {
			info.PushContact(p, onRef)
		} else {
			info.PushContact(onRef, p)
		}
	}
}

// clipPolygon keeps the part of poly with n·p <= offset.
func clipPolygon(poly []Vector, n Vector, offset float32) []Vector {
	if len(poly) == 0 {
		return poly
	}

	out := make([]Vector, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevD := n.Dot(prev) - offset
	for _, cur := range poly {
		curD := n.Dot(cur) - offset
		if prevD <= 0 {
			out = append(out, prev)
		}
		if (prevD < 0 && curD > 0) || (prevD > 0 && curD < 0) {
			t := prevD / (prevD - curD)
			out = append(out, prev.Add(cur.Sub(prev).Mul(t)))
		}
		prev, prevD = cur, curD
	}
	return out
}

// reduceContacts picks at most MAX_CONTACTS_PER_ARBITER points spanning the
// largest area, starting from the deepest.
func reduceContacts(points []Vector, depths []float32, n Vector) []int {
	count := len(points)
	if count <= MAX_CONTACTS_PER_ARBITER {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out
	}

	used := make([]bool, count)
	pick := func(score func(i int) float32) int {
		best, bestScore := -1, -INFINITY
		for i := 0; i < count; i++ {
			if used[i] {
				continue
			}
			if s := score(i); s > bestScore {
				best, bestScore = i, s
			}
		}
		used[best] = true
		return best
	}

	i0 := pick(func(i int) float32 { return depths[i] })
	i1 := pick(func(i int) float32 { return points[i].Sub(points[i0]).LenSqr() })
	edge := points[i1].Sub(points[i0])
	area := func(i int) float32 {
		return edge.Cross(points[i].Sub(points[i0])).Dot(n)
	}
	i2 := pick(area)
	i3 := pick(func(i int) float32 { return -area(i) })
	return []int{i0, i1, i2, i3}
}

// edgeContact generates one contact from the edge of box1 along axis i and
// the edge of box2 along axis j closest to each other along n.
func edgeContact(box1, box2 *Box, i, j int, n Vector, info *CollisionInfo) {
	pa := box1.tc
	for k := 0; k < 3; k++ {
		if k == i {
			continue
		}
		s := box1.half[k]
		if box1.axes[k].Dot(n) < 0 {
			s = -s
		}
		pa = pa.Add(box1.axes[k].Mul(s))
	}

	pb := box2.tc
	for k := 0; k < 3; k++ {
		if k == j {
			continue
		}
		s := box2.half[k]
		if box2.axes[k].Dot(n) > 0 {
			s = -s
		}
		pb = pb.Add(box2.axes[k].Mul(s))
	}

	d1 := box1.axes[i]
	d2 := box2.axes[j]
	r := pa.Sub(pb)
	bd := d1.Dot(d2)
	c := d1.Dot(r)
	f := d2.Dot(r)

	var s float32
	if denom := 1 - bd*bd; denom > MAGIC_EPSILON {
		s = (bd*f - c) / denom
	}
	s = Clamp(s, -box1.half[i], box1.half[i])
	t := Clamp(f+s*bd, -box2.half[j], box2.half[j])
	s = Clamp(t*bd-c, -box1.half[i], box1.half[i])

	info.PushContact(pa.Add(d1.Mul(s)), pb.Add(d2.Mul(t)))
}
