package cp3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vector is a 3D vector. It is the mathgl type so callers can pass values
// straight from their renderer.
type Vector = mgl32.Vec3

// Quat is an orientation.
type Quat = mgl32.Quat

var (
	VectorZero = Vector{}
	VectorUp   = Vector{0, 1, 0}
)

func Clamp(f, min, max float32) float32 {
	return math32.Min(math32.Max(f, min), max)
}

func Clamp01(f float32) float32 {
	return math32.Max(0, math32.Min(f, 1))
}

// NormalizeSafe returns the unit vector of v. ok is false when v is too short
// to have a direction, in which case the zero vector is returned.
func NormalizeSafe(v Vector) (n Vector, ok bool) {
	l := v.Len()
	if l < MAGIC_EPSILON || math32.IsInf(l, 0) || math32.IsNaN(l) {
		return Vector{}, false
	}
	return v.Mul(1 / l), true
}

// ClampLength shortens v to length if it is longer.
func ClampLength(v Vector, length float32) Vector {
	if length == INFINITY {
		return v
	}
	if v.LenSqr() > length*length {
		n, _ := NormalizeSafe(v)
		return n.Mul(length)
	}
	return v
}

// TangentBasis returns two unit vectors that complete the unit vector n to an
// orthonormal basis.
func TangentBasis(n Vector) (t1, t2 Vector) {
	if math32.Abs(n.X()) >= 0.57735 {
		t1 = Vector{n.Y(), -n.X(), 0}
	} else {
		t1 = Vector{0, n.Z(), -n.Y()}
	}
	t1, _ = NormalizeSafe(t1)
	t2 = n.Cross(t1)
	return t1, t2
}

// Skew returns the matrix M such that M*u == v.Cross(u).
func Skew(v Vector) mgl32.Mat3 {
	// column major
	return mgl32.Mat3{
		0, v.Z(), -v.Y(),
		-v.Z(), 0, v.X(),
		v.Y(), -v.X(), 0,
	}
}

func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func VectorIsFinite(v Vector) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

func QuatIsFinite(q Quat) bool {
	return IsFinite(q.W) && VectorIsFinite(q.V)
}

// MaxComponent returns the largest of the three components.
func MaxComponent(v Vector) float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

func Abs(v Vector) Vector {
	return Vector{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}

func Lerp(f1, f2, t float32) float32 {
	return f1*(1.0-t) + f2*t
}
