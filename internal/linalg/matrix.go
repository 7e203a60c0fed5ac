package linalg

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a dense row-major rows×cols matrix.
type Matrix struct {
	Rows, Cols int
	Elem       []float64
}

func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Elem: make([]float64, rows*cols)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Elem[i*n+i] = 1
	}
	return m
}

// FromRows builds a matrix from equally long rows.
func FromRows(rows ...[]float64) Matrix {
	if len(rows) == 0 {
		return Matrix{}
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != m.Cols {
			mismatch("row %d has %d columns, want %d", r, len(row), m.Cols)
		}
		copy(m.Elem[r*m.Cols:], row)
	}
	return m
}

func (m Matrix) At(r, c int) float64     { return m.Elem[r*m.Cols+c] }
func (m Matrix) Set(r, c int, v float64) { m.Elem[r*m.Cols+c] = v }
func (m Matrix) IsSquare() bool          { return m.Rows == m.Cols }

func (m Matrix) Clone() Matrix {
	c := Matrix{Rows: m.Rows, Cols: m.Cols, Elem: make([]float64, len(m.Elem))}
	copy(c.Elem, m.Elem)
	return c
}

func (m Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.Rows; r++ {
		sb.WriteString("[")
		for c := 0; c < m.Cols; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%.6g", m.At(r, c))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// Mul returns m*b.
func (m Matrix) Mul(b Matrix) Matrix {
	if m.Cols != b.Rows {
		mismatch("%dx%d * %dx%d", m.Rows, m.Cols, b.Rows, b.Cols)
	}
	out := NewMatrix(m.Rows, b.Cols)
	for r := 0; r < m.Rows; r++ {
		row := m.Elem[r*m.Cols : (r+1)*m.Cols]
		dst := out.Elem[r*b.Cols : (r+1)*b.Cols]
		for k, a := range row {
			if a == 0 {
				continue
			}
			src := b.Elem[k*b.Cols : (k+1)*b.Cols]
			for c, x := range src {
				dst[c] += a * x
			}
		}
	}
	return out
}

// MulVec returns m*v.
func (m Matrix) MulVec(v Vector) Vector {
	return m.MulVecTo(make(Vector, m.Rows), v)
}

// MulVecTo writes m*v into dst and returns it; dst must not alias v.
func (m Matrix) MulVecTo(dst, v Vector) Vector {
	if m.Cols != len(v) || m.Rows != len(dst) {
		mismatch("%dx%d * vector %d into %d", m.Rows, m.Cols, len(v), len(dst))
	}
	for r := range dst {
		s := 0.0
		row := m.Elem[r*m.Cols : (r+1)*m.Cols]
		for c, x := range row {
			s += x * v[c]
		}
		dst[r] = s
	}
	return dst
}

// MulVecs treats vecs as the rows of a len(vecs)×n matrix and returns m*vecs
// as len(vecs) row vectors.
func (m Matrix) MulVecs(vecs []Vector) []Vector {
	if m.Cols != len(vecs) {
		mismatch("%dx%d * %d vectors", m.Rows, m.Cols, len(vecs))
	}
	out := make([]Vector, m.Rows)
	for r := range out {
		var acc Vector
		for c, u := range vecs {
			if acc == nil {
				acc = make(Vector, len(u))
			}
			acc.AddScaled(m.At(r, c), u)
		}
		out[r] = acc
	}
	return out
}

// Scale returns s*m.
func (m Matrix) Scale(s float64) Matrix {
	out := m.Clone()
	for i := range out.Elem {
		out.Elem[i] *= s
	}
	return out
}

func (m Matrix) Transpose() Matrix {
	out := NewMatrix(m.Cols, m.Rows)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			out.Elem[c*m.Rows+r] = m.Elem[r*m.Cols+c]
		}
	}
	return out
}

// Equal reports whether m and b agree element-wise within tol.
func (m Matrix) Equal(b Matrix, tol float64) bool {
	if m.Rows != b.Rows || m.Cols != b.Cols {
		return false
	}
	for i, x := range m.Elem {
		if math.Abs(x-b.Elem[i]) > tol {
			return false
		}
	}
	return true
}

func usablePivot(x float64) bool {
	a := math.Abs(x)
	return a > pivotMin && a < pivotMax
}

// Inverse returns m⁻¹ computed by Gauss-Jordan elimination with partial
// pivoting, or ErrSingularMatrix.
func (m Matrix) Inverse() (Matrix, error) {
	out := m.Clone()
	if err := out.Invert(); err != nil {
		return Matrix{}, err
	}
	return out, nil
}

// Invert replaces m with its inverse. Elimination runs in place on m; rows
// swapped while pivoting are recorded as a column permutation that is undone
// at the end. On error m is left in an unspecified state.
func (m Matrix) Invert() error {
	if !m.IsSquare() {
		mismatch("invert %dx%d", m.Rows, m.Cols)
	}
	n := m.Cols
	e := m.Elem
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		d := i * n
		best, j := d, i
		for r := i + 1; r < n; r++ {
			if math.Abs(e[r*n+i]) > math.Abs(e[best+i]) {
				best, j = r*n, r
			}
		}
		if !usablePivot(e[best+i]) {
			return fmt.Errorf("invert column %d: %w", i, ErrSingularMatrix)
		}
		inv := 1 / e[best+i]
		if best != d {
			for c := 0; c < n; c++ {
				e[best+c], e[d+c] = e[d+c], e[best+c]
			}
		}
		perm[i], perm[j] = perm[j], perm[i]
		for c := 0; c < n; c++ {
			if c != i {
				e[d+c] *= inv
			}
		}
		e[d+i] = inv
		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			s := r * n
			mul := e[s+i]
			for c := 0; c < n; c++ {
				if c != i {
					e[s+c] -= e[d+c] * mul
				}
			}
			e[s+i] = -e[d+i] * mul
		}
	}
	tmp := make([]float64, n)
	for r := 0; r < n; r++ {
		row := e[r*n : (r+1)*n]
		copy(tmp, row)
		for i, x := range tmp {
			row[perm[i]] = x
		}
	}
	return nil
}

// Determinant returns det(m). Columns without a usable pivot are skipped,
// which leaves a near-zero diagonal entry instead of failing.
func (m Matrix) Determinant() float64 {
	det, _ := m.Clone().triangulate()
	return det
}

// triangulate reduces m in place to upper triangular form and returns the
// determinant together with the number of row swaps performed.
func (m Matrix) triangulate() (float64, int) {
	if !m.IsSquare() {
		mismatch("determinant of %dx%d", m.Rows, m.Cols)
	}
	n := m.Cols
	if n == 0 {
		return 1, 0
	}
	e := m.Elem
	swaps := 0
	for i := 0; i < n-1; i++ {
		d := i * n
		best := d
		for r := d + n; r < len(e); r += n {
			if math.Abs(e[r+i]) > math.Abs(e[best+i]) {
				best = r
			}
		}
		if !usablePivot(e[best+i]) {
			continue
		}
		inv := 1 / e[best+i]
		if best != d {
			swaps++
			for c := i; c < n; c++ {
				e[best+c], e[d+c] = e[d+c], e[best+c]
			}
		}
		for c := i + 1; c < n; c++ {
			e[d+c] *= inv
		}
		for r := i + 1; r < n; r++ {
			s := r * n
			mul := e[s+i]
			for c := i + 1; c < n; c++ {
				e[s+c] -= e[d+c] * mul
			}
		}
	}
	det := e[0]
	for i := 1; i < n; i++ {
		det *= e[i*n+i]
	}
	if swaps&1 == 1 {
		det = -det
	}
	return det, swaps
}

// RotationAngles returns how many plane angles Rotate needs in n dimensions.
func RotationAngles(n int) int { return n * (n - 1) / 2 }

// Rotate returns m post-multiplied by one elementary rotation per coordinate
// plane (i,j), taken in order j = 1..n-1, i < j. In 3D the angles apply in
// ZYX order.
func (m Matrix) Rotate(angles []float64) Matrix {
	n := m.Rows
	if !m.IsSquare() || len(angles) != RotationAngles(n) {
		mismatch("rotate %dx%d with %d angles", m.Rows, m.Cols, len(angles))
	}
	out := m.Clone()
	e := out.Elem
	a := 0
	for j := 1; j < n; j++ {
		for i := 0; i < j; i++ {
			sn, cs := math.Sincos(angles[a])
			a++
			for r := 0; r < n; r++ {
				t0, t1 := e[r*n+i], e[r*n+j]
				e[r*n+i] = t0*cs + t1*sn
				e[r*n+j] = t1*cs - t0*sn
			}
		}
	}
	return out
}
