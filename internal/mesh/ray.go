package mesh

import (
	"math"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// Ray is a half-line query with a shrinking [Min, Max] distance window.
// After a pick, Face, Normal, Material and Max describe the nearest hit.
type Ray struct {
	Pos, Dir linalg.Vector
	Min, Max float64

	Face     *Face
	Normal   linalg.Vector
	Material *Material

	inv   linalg.Vector // 1/Dir, +Inf where the component is ~0
	swap  uint64        // bit i set when Dir[i] > 0
	align float64       // |Dir·Normal| of the current hit
}

// NewRay returns a ray with the default window [DefaultRayMin, +Inf).
func NewRay(pos, dir linalg.Vector) *Ray {
	return &Ray{Pos: pos, Dir: dir, Min: DefaultRayMin, Max: math.Inf(1)}
}

// Hit reports whether the last pick found a face.
func (r *Ray) Hit() bool { return r.Face != nil }

// Point returns Pos + Dir*Max.
func (r *Ray) Point() linalg.Vector { return r.Pos.Clone().AddScaled(r.Max, r.Dir) }

// prepare clears the hit record and caches the inverse direction and sign mask.
func (r *Ray) prepare() {
	r.Face, r.Normal, r.Material = nil, nil, nil
	r.align = 0
	if len(r.inv) != len(r.Dir) {
		r.inv = make(linalg.Vector, len(r.Dir))
	}
	var swap uint64
	for i, d := range r.Dir {
		if d > 0 {
			swap |= 1 << uint(i)
		}
		if math.Abs(d) > parallelEps {
			r.inv[i] = 1 / d
		} else {
			r.inv[i] = math.Inf(1)
		}
	}
	r.swap = swap
}
