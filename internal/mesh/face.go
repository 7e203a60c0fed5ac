package mesh

import (
	"math"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// Vertex is a mesh point. ID is its index in the owning mesh.
type Vertex struct {
	Pos  linalg.Vector
	ID   int
	mesh *Mesh
}

// Face is a simplex of at most dim vertices.
type Face struct {
	Verts    []*Vertex
	Material *Material
	Normal   linalg.Vector

	// bary[i]·(p-v0) is the barycentric weight of vertex i+1.
	bary  []linalg.Vector
	inert bool
}

func newFace(dim int, verts []*Vertex, mat *Material) *Face {
	f := &Face{Verts: verts, Material: mat}
	f.calcNormal(dim)
	return f
}

// Inert reports whether the face is degenerate and can never be hit.
func (f *Face) Inert() bool { return f.inert }

// Centroid returns the mean of the face vertices.
func (f *Face) Centroid() linalg.Vector {
	c := linalg.NewVector(len(f.Normal))
	for _, v := range f.Verts {
		c.Inc(v.Pos)
	}
	if len(f.Verts) > 0 {
		c.ScaleBy(1 / float64(len(f.Verts)))
	}
	return c
}

// calcNormal caches the unit normal and the barycentric basis. A singular
// Gram matrix of the edges marks the face inert.
func (f *Face) calcNormal(dim int) {
	n := len(f.Verts)
	if n == 0 {
		f.Normal = linalg.NewVector(dim)
		f.inert = true
		return
	}
	v0 := f.Verts[0].Pos
	edges := make([]linalg.Vector, n-1)
	for i := 1; i < n; i++ {
		edges[i-1] = f.Verts[i].Pos.Sub(v0)
	}
	if n == dim {
		f.Normal = linalg.Cross(edges...).Normalize()
	} else {
		// Lower-dimensional simplex: any direction off its span will do, but it
		// has no volume to hit.
		f.Normal = offSpan(dim, edges)
		f.inert = true
	}

	m := n - 1
	gram := linalg.NewMatrix(m, m)
	for r := 0; r < m; r++ {
		for c := 0; c <= r; c++ {
			d := edges[r].Dot(edges[c])
			gram.Set(r, c, d)
			gram.Set(c, r, d)
		}
	}
	if err := gram.Invert(); err != nil {
		f.bary = nil
		f.inert = true
		return
	}
	f.bary = gram.MulVecs(edges)
}

// offSpan returns a unit vector orthogonal to edges, built by Gram-Schmidt
// from the coordinate axis with the largest residual.
func offSpan(dim int, edges []linalg.Vector) linalg.Vector {
	basis := make([]linalg.Vector, 0, len(edges))
	for _, e := range edges {
		u := e.Clone()
		for _, b := range basis {
			u.AddScaled(-u.Dot(b), b)
		}
		if l := u.Len(); l > parallelEps {
			basis = append(basis, u.ScaleBy(1/l))
		}
	}
	var best linalg.Vector
	bestLen := -1.0
	for axis := 0; axis < dim; axis++ {
		u := linalg.Unit(dim, axis)
		for _, b := range basis {
			u.AddScaled(-u.Dot(b), b)
		}
		if l := u.Len(); l > bestLen {
			best, bestLen = u, l
		}
	}
	return best.Normalize()
}

// Intersect tests the ray against the face and records the hit on the ray
// when it is the nearest so far. Hits within ray.Min of the current best are
// only taken when they face the ray more squarely.
func (f *Face) Intersect(ray *Ray) bool {
	if f.inert {
		return false
	}
	v0 := f.Verts[0].Pos
	dot, pn := 0.0, 0.0
	for i, n := range f.Normal {
		dot += ray.Dir[i] * n
		pn += (ray.Pos[i] - v0[i]) * n
	}
	if math.Abs(dot) <= parallelEps {
		return false
	}
	dist := -pn / dot
	min, dif := ray.Min, dist-ray.Max
	if dist < min || dif >= min {
		return false
	}
	align := math.Abs(dot)
	if dif > -min && align <= ray.align {
		return false
	}
	s := 0.0
	for _, b := range f.bary {
		u := 0.0
		for i, x := range b {
			u += x * (ray.Pos[i] + ray.Dir[i]*dist - v0[i])
		}
		s += u
		if u < 0 || s > 1 {
			return false
		}
	}
	ray.Max = dist
	ray.align = align
	ray.Face = f
	ray.Normal = f.Normal
	ray.Material = f.Material
	return true
}

// bounds widens [lo, hi] to contain the face.
func (f *Face) bounds(lo, hi []float64) {
	for _, v := range f.Verts {
		for i, x := range v.Pos {
			if x < lo[i] {
				lo[i] = x
			}
			if x > hi[i] {
				hi[i] = x
			}
		}
	}
}
