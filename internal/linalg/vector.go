package linalg

import (
	"math"
	"math/rand"
)

// Vector is a fixed-length sequence of reals. Value methods return new
// vectors; methods documented as in-place write into the receiver and
// return it so calls can be chained.
type Vector []float64

// NewVector returns a zero vector of length n.
func NewVector(n int) Vector { return make(Vector, n) }

// Unit returns the n-dimensional basis vector along axis.
func Unit(n, axis int) Vector {
	v := make(Vector, n)
	v[axis] = 1
	return v
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) check(u Vector) {
	if len(v) != len(u) {
		mismatch("vector %d vs %d", len(v), len(u))
	}
}

// Vector functions
func (v Vector) Add(u Vector) Vector  { return v.Clone().Inc(u) }
func (v Vector) Sub(u Vector) Vector  { return v.Clone().Dec(u) }
func (v Vector) Mul(s float64) Vector { return v.Clone().ScaleBy(s) }
func (v Vector) Neg() Vector          { return v.Clone().ScaleBy(-1) }

// Dot returns the dot product of v and u.
func (v Vector) Dot(u Vector) float64 {
	v.check(u)
	s := 0.0
	for i, x := range v {
		s += x * u[i]
	}
	return s
}

// Sqr returns the squared Euclidean length.
func (v Vector) Sqr() float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

// Len returns the Euclidean length of the vector.
func (v Vector) Len() float64 { return math.Sqrt(v.Sqr()) }

// Norm returns a unit-length copy of the vector (see Normalize).
func (v Vector) Norm() Vector { return v.Clone().Normalize() }

// Equal reports whether v and u agree component-wise within tol.
func (v Vector) Equal(u Vector, tol float64) bool {
	if len(v) != len(u) {
		return false
	}
	for i, x := range v {
		if math.Abs(x-u[i]) > tol {
			return false
		}
	}
	return true
}

// Set copies u into v in place.
func (v Vector) Set(u Vector) Vector {
	v.check(u)
	copy(v, u)
	return v
}

// Zero clears v in place.
func (v Vector) Zero() Vector {
	for i := range v {
		v[i] = 0
	}
	return v
}

// Inc adds u to v in place.
func (v Vector) Inc(u Vector) Vector {
	v.check(u)
	for i, x := range u {
		v[i] += x
	}
	return v
}

// Dec subtracts u from v in place.
func (v Vector) Dec(u Vector) Vector {
	v.check(u)
	for i, x := range u {
		v[i] -= x
	}
	return v
}

// ScaleBy multiplies v by s in place.
func (v Vector) ScaleBy(s float64) Vector {
	for i := range v {
		v[i] *= s
	}
	return v
}

// AddScaled adds s*u to v in place.
func (v Vector) AddScaled(s float64, u Vector) Vector {
	v.check(u)
	for i, x := range u {
		v[i] += s * x
	}
	return v
}

// Normalize scales v to unit length in place. A vector too short to have a
// direction is replaced by a random unit vector, so the result is never NaN.
func (v Vector) Normalize() Vector { return v.NormalizeRand(nil) }

// NormalizeRand is Normalize drawing the fallback direction from rng
// (nil uses the global source).
func (v Vector) NormalizeRand(rng *rand.Rand) Vector {
	l := v.Len()
	if l <= normalizeMin {
		return v.Randomize(rng)
	}
	return v.ScaleBy(1 / l)
}

// Randomize overwrites v with a uniformly distributed unit vector.
func (v Vector) Randomize(rng *rand.Rand) Vector {
	if len(v) == 0 {
		return v
	}
	norm := rand.NormFloat64
	if rng != nil {
		norm = rng.NormFloat64
	}
	for {
		for i := range v {
			v[i] = norm()
		}
		if l := v.Len(); l > normalizeMin {
			return v.ScaleBy(1 / l)
		}
	}
}

// Cross returns the generalized cross product of n-1 vectors of length n:
// component i is the signed cofactor obtained by deleting column i.
// The result is orthogonal to every input.
func Cross(vecs ...Vector) Vector {
	n := len(vecs) + 1
	for _, u := range vecs {
		if len(u) != n {
			mismatch("cross of %d vectors needs length %d, got %d", len(vecs), n, len(u))
		}
	}
	out := make(Vector, n)
	minor := NewMatrix(n-1, n-1)
	for i := 0; i < n; i++ {
		for r, u := range vecs {
			c := 0
			for k, x := range u {
				if k == i {
					continue
				}
				minor.Elem[r*(n-1)+c] = x
				c++
			}
		}
		det, _ := minor.Clone().triangulate()
		if i&1 == 1 {
			det = -det
		}
		out[i] = det
	}
	return out
}
