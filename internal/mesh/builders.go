package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// AddCube adds an axis-aligned box with the given side lengths centered at
// the origin, mapped by t. Fewer sides than dimensions give a flat box in the
// leading axes. Every facet is split into sim! simplexes whose winding
// follows the permutation parity, so all normals point outward.
func (m *Mesh) AddCube(sides []float64, mat *Material, t *linalg.Transform) error {
	dim, base := m.dim, len(m.verts)
	ns := len(sides)
	if ns > dim {
		return fmt.Errorf("%w: cube with %d sides in dim %d", ErrDimension, ns, dim)
	}
	for i := 0; i < 1<<uint(ns); i++ {
		v := linalg.NewVector(dim)
		for j := 0; j < ns; j++ {
			v[j] = sides[j] * (float64((i>>uint(j))&1) - 0.5)
		}
		m.AddVertex(v, t)
	}
	if len(m.verts)-base <= dim {
		idx := make([]int, len(m.verts)-base)
		for i := range idx {
			idx[i] = base + i
		}
		_, err := m.AddFaceIdx(idx, mat)
		return err
	}

	sim := min(dim-1, ns)
	combos := 1
	for i := 0; i < sim; i++ {
		combos *= i + 1
	}
	perm := make([]int, sim)
	idx := make([]int, sim+1)
	for f := 0; f < 2*dim; f++ {
		axis := f >> 1
		for combo := 0; combo < combos; combo++ {
			inv := (axis ^ f) & 1
			c := combo
			for i := 0; i < sim; i++ {
				j := c % (i + 1)
				c /= i + 1
				inv ^= (i - j) & 1
				for k := i; k > j; k-- {
					perm[k] = perm[k-1]
				}
				shift := i
				if i >= axis {
					shift++
				}
				perm[j] = 1 << uint(shift)
			}
			idx[0] = base + ((f & 1) << uint(axis))
			for i := 0; i < sim; i++ {
				idx[i+1] = idx[i] + perm[i]
			}
			if idx[sim] >= len(m.verts) {
				continue
			}
			if dim >= 2 && inv == 0 {
				idx[0], idx[1] = idx[1], idx[0]
			}
			face, err := m.AddFaceIdx(idx, mat)
			if err != nil {
				return err
			}
			if dim == 1 && inv == 0 {
				face.Normal = face.Normal.Neg()
			}
		}
	}
	return nil
}

// AddSphere adds a unit hypersphere scaled by radius and centered at center,
// then mapped by t, using at most maxFaces faces. A segment is swept around
// in segs steps per rotation plane; each square patch is tessellated like a
// cube facet. Degenerate and repeated faces near the poles are dropped.
func (m *Mesh) AddSphere(center linalg.Vector, radius float64, maxFaces int, mat *Material, t *linalg.Transform) error {
	dim := m.dim
	if len(center) != dim {
		return fmt.Errorf("%w: sphere center of dim %d in dim %d", ErrDimension, len(center), dim)
	}
	tr := linalg.NewTransform(center, nil, []float64{radius})
	if t != nil {
		tr = t.Compose(tr)
	}
	if dim < 2 {
		if maxFaces > dim {
			sides := make([]float64, dim)
			for i := range sides {
				sides[i] = 2
			}
			return m.AddCube(sides, mat, &tr)
		}
		return nil
	}

	// At least 4 segments are needed to enclose a volume.
	segs, hsegs, faces := 0, 0, 0
	for faces <= maxFaces {
		segs, hsegs, faces = segs+2, hsegs+1, segs+4
		for i := 0; i < dim-2; i++ {
			faces *= segs + (hsegs-1)*i
		}
	}
	if segs < 4 {
		return nil
	}
	dim1 := dim - 1
	corners := 1 << uint(dim1)
	den := make([]int, dim1)
	for i := range den {
		den[i] = 1
	}
	for i := dim - 3; i >= 0; i-- {
		den[i] = den[i+1] * segs
	}

	// Several angle tuples reach the same point; std reduces one to a
	// canonical index and creates its vertex on first use.
	vertMap := map[int]int{}
	std := func(angs, offset int) int {
		out, carry := 0, 0
		for i := 0; i < dim1; i++ {
			a := ((angs/den[i]+carry+((offset>>uint(i))&1))%segs + segs) % segs
			switch {
			case carry < 0:
				a = 0
			case a == 0 || a == hsegs:
				carry = -1
			default:
				carry = 0
			}
			if a > hsegs && i < dim-2 {
				a = segs - a
				carry = hsegs
			}
			out += a * den[i]
		}
		if _, ok := vertMap[out]; !ok {
			v := linalg.NewVector(dim)
			for i := range v {
				v[i] = 1
			}
			for d := 0; d < dim1; d++ {
				u := float64((out/den[d])%segs) * (2 * math.Pi / float64(segs))
				sn, cs := math.Sincos(u)
				v[d+1] = v[d] * sn
				v[d] = v[d] * cs
			}
			vertMap[out] = m.AddVertex(v.Normalize(), &tr).ID
		}
		return out
	}

	seen := map[string]bool{}
	unique := func(idx []int) bool {
		s := append([]int(nil), idx...)
		sort.Ints(s)
		for i := 1; i < len(s); i++ {
			if s[i] == s[i-1] {
				return false
			}
		}
		key := fmt.Sprint(s)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	}

	// Template patch: a unit (dim-1)-cube tessellated in dim-space. Its
	// vertex IDs index the patch corners.
	patch := NewMesh(dim)
	unit := make([]float64, dim1)
	for i := range unit {
		unit[i] = 1
	}
	if err := patch.AddCube(unit, nil, nil); err != nil {
		return err
	}

	limit := den[0] * hsegs
	if dim == 2 {
		limit = segs
	}
	stds := make([]int, corners)
	quad := make([]int, corners)
	for base := 0; base < limit; base++ {
		for off := range stds {
			stds[off] = std(base, off)
		}
		sort.Ints(stds)
		for k, s := range stds {
			quad[k] = vertMap[s]
		}
		flip := 0
		if ((base+1)%segs == 0) == (dim&2 != 0) {
			flip = 1
		}
		for _, pf := range patch.faces {
			idx := make([]int, len(pf.Verts))
			for k, v := range pf.Verts {
				idx[k] = quad[v.ID]
			}
			idx[0], idx[flip] = idx[flip], idx[0]
			if !unique(idx) {
				continue
			}
			if _, err := m.AddFaceIdx(idx, mat); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddSimplex adds a regular dim-simplex with the given edge length centered
// at the origin, mapped by t. Vertex k has coordinates from the Helmert
// basis of the hyperplane orthogonal to (1,...,1) in dim+1 space.
func (m *Mesh) AddSimplex(edge float64, mat *Material, t *linalg.Transform) error {
	dim := m.dim
	if edge <= 0 {
		return fmt.Errorf("simplex edge %g must be > 0", edge)
	}
	s := edge / math.Sqrt2
	pts := make([]linalg.Vector, dim+1)
	for k := range pts {
		pts[k] = linalg.NewVector(dim)
	}
	for j := 1; j <= dim; j++ {
		norm := s / math.Sqrt(float64(j*(j+1)))
		for k := 0; k < j; k++ {
			pts[k][j-1] = norm
		}
		pts[j][j-1] = -float64(j) * norm
	}
	verts := make([]*Vertex, dim+1)
	for k, p := range pts {
		verts[k] = m.AddVertex(p, t)
	}
	center := linalg.NewVector(dim)
	for _, v := range verts {
		center.Inc(v.Pos)
	}
	center.ScaleBy(1 / float64(dim+1))
	for skip := range verts {
		facet := make([]*Vertex, 0, dim)
		for k, v := range verts {
			if k != skip {
				facet = append(facet, v)
			}
		}
		if dim >= 2 && outwardness(dim, facet, center) < 0 {
			facet[0], facet[1] = facet[1], facet[0]
		}
		face, err := m.AddFace(facet, mat)
		if err != nil {
			return err
		}
		if dim == 1 && face.Normal.Dot(face.Centroid().Sub(center)) < 0 {
			face.Normal = face.Normal.Neg()
		}
	}
	return nil
}

// outwardness is the sign of the facet normal against the direction from
// center to the facet centroid.
func outwardness(dim int, facet []*Vertex, center linalg.Vector) float64 {
	v0 := facet[0].Pos
	edges := make([]linalg.Vector, len(facet)-1)
	mid := v0.Clone()
	for i := 1; i < len(facet); i++ {
		edges[i-1] = facet[i].Pos.Sub(v0)
		mid.Inc(facet[i].Pos)
	}
	mid.ScaleBy(1 / float64(len(facet)))
	return linalg.Cross(edges...).Dot(mid.Dec(center))
}
