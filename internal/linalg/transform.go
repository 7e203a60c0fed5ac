package linalg

import "fmt"

// Transform is the affine map x -> Mat*x + Off.
type Transform struct {
	Mat Matrix
	Off Vector
}

// IdentityTransform returns the identity map in dim dimensions.
func IdentityTransform(dim int) Transform {
	return Transform{Mat: Identity(dim), Off: NewVector(dim)}
}

// NewTransform builds a transform that rotates by angles (may be nil), then
// scales row i by scale[i] (nil or empty means 1), then translates by off.
// A single-element scale is applied uniformly.
func NewTransform(off Vector, angles, scale []float64) Transform {
	dim := len(off)
	mat := Identity(dim)
	if angles != nil {
		mat = mat.Rotate(angles)
	}
	switch len(scale) {
	case 0:
	case 1:
		for i := range mat.Elem {
			mat.Elem[i] *= scale[0]
		}
	case dim:
		for i := range mat.Elem {
			mat.Elem[i] *= scale[i/dim]
		}
	default:
		mismatch("scale of %d values for dim %d", len(scale), dim)
	}
	return Transform{Mat: mat, Off: off.Clone()}
}

func (t Transform) Dim() int { return len(t.Off) }

func (t Transform) Clone() Transform {
	return Transform{Mat: t.Mat.Clone(), Off: t.Off.Clone()}
}

// Apply maps a point.
func (t Transform) Apply(v Vector) Vector {
	return t.Mat.MulVec(v).Inc(t.Off)
}

// Rotate maps a direction (linear part only).
func (t Transform) Rotate(v Vector) Vector {
	return t.Mat.MulVec(v)
}

// Compose returns t∘u, the map applying u first and then t.
func (t Transform) Compose(u Transform) Transform {
	return Transform{
		Mat: t.Mat.Mul(u.Mat),
		Off: t.Mat.MulVec(u.Off).Inc(t.Off),
	}
}

// Inverse returns the exact inverse map, or ErrSingularMatrix.
func (t Transform) Inverse() (Transform, error) {
	inv, err := t.Mat.Inverse()
	if err != nil {
		return Transform{}, fmt.Errorf("inverse transform: %w", err)
	}
	return Transform{Mat: inv, Off: inv.MulVec(t.Off).ScaleBy(-1)}, nil
}
