package cp3d

import (
	"cmp"
	"slices"
)

// Proxy is a body as seen by the broad phase: the body and its padded bounds.
type Proxy struct {
	Body *Body
	BB   BB
}

// Pair is a candidate collision. A always has the smaller id.
type Pair struct {
	A, B *Body
}

// PairFilter returns true to reject a pair before bounds are compared.
type PairFilter func(a, b *Body) bool

type BroadPhase interface {
	// Collect appends the overlapping pairs among proxies to out, sorted by
	// ascending (A, B) id.
	Collect(proxies []Proxy, reject PairFilter, out []Pair) []Pair
}

func makePair(a, b *Body) Pair {
	if b.id < a.id {
		a, b = b, a
	}
	return Pair{a, b}
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(p, q Pair) int {
		if c := cmp.Compare(p.A.id, q.A.id); c != 0 {
			return c
		}
		return cmp.Compare(p.B.id, q.B.id)
	})
}

// BruteForce tests every pair. It beats sorting for a handful of bodies.
type BruteForce struct{}

func (BruteForce) Collect(proxies []Proxy, reject PairFilter, out []Pair) []Pair {
	start := len(out)
	for i := 0; i < len(proxies); i++ {
		for j := i + 1; j < len(proxies); j++ {
			a, b := &proxies[i], &proxies[j]
			if a.BB.Intersects(b.BB) && !reject(a.Body, b.Body) {
				out = append(out, makePair(a.Body, b.Body))
			}
		}
	}
	sortPairs(out[start:])
	return out
}

// SweepAndPrune sorts the bounds along the axis where the bodies are most
// spread out and only compares neighbours whose intervals overlap.
type SweepAndPrune struct {
	order []int
}

func (sap *SweepAndPrune) Collect(proxies []Proxy, reject PairFilter, out []Pair) []Pair {
	start := len(out)
	if len(proxies) < 2 {
		return out
	}
	axis := sweepAxis(proxies)

	sap.order = sap.order[:0]
	for i := range proxies {
		sap.order = append(sap.order, i)
	}
	slices.SortFunc(sap.order, func(i, j int) int {
		if c := cmp.Compare(proxies[i].BB.Min[axis], proxies[j].BB.Min[axis]); c != 0 {
			return c
		}
		return cmp.Compare(proxies[i].Body.id, proxies[j].Body.id)
	})

	for i, oi := range sap.order {
		a := &proxies[oi]
		limit := a.BB.Max[axis]
		for _, oj := range sap.order[i+1:] {
			b := &proxies[oj]
			if b.BB.Min[axis] > limit {
				break
			}
			if a.BB.Intersects(b.BB) && !reject(a.Body, b.Body) {
				out = append(out, makePair(a.Body, b.Body))
			}
		}
	}
	sortPairs(out[start:])
	return out
}

// sweepAxis picks the axis with the largest variance of box centers.
func sweepAxis(proxies []Proxy) int {
	var sum, sumSq Vector
	for i := range proxies {
		c := proxies[i].BB.Center()
		sum = sum.Add(c)
		sumSq = sumSq.Add(Vector{c[0] * c[0], c[1] * c[1], c[2] * c[2]})
	}
	n := float32(len(proxies))
	axis := 0
	var best float32 = -1
	for k := 0; k < 3; k++ {
		variance := sumSq[k]/n - (sum[k]/n)*(sum[k]/n)
		if variance > best {
			best, axis = variance, k
		}
	}
	return axis
}
