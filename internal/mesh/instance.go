package mesh

import (
	"fmt"
	"math"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// Instance places a shared mesh in a parent mesh through an affine transform.
type Instance struct {
	Mesh      *Mesh
	Transform linalg.Transform
	Material  *Material

	inv    linalg.Transform
	normal linalg.Matrix // inverse transpose of Transform.Mat
	gen    uint64        // Mesh.gen at the parent's last build
}

func newInstance(sub *Mesh, t *linalg.Transform, mat *Material) (*Instance, error) {
	tr := linalg.IdentityTransform(sub.dim)
	if t != nil {
		if t.Dim() != sub.dim {
			return nil, fmt.Errorf("%w: transform of dim %d for mesh of dim %d", ErrDimension, t.Dim(), sub.dim)
		}
		tr = t.Clone()
	}
	inv, err := tr.Inverse()
	if err != nil {
		return nil, fmt.Errorf("instance: %w", err)
	}
	return &Instance{
		Mesh:      sub,
		Transform: tr,
		Material:  mat,
		inv:       inv,
		normal:    inv.Mat.Transpose(),
	}, nil
}

// Intersect picks the instanced mesh with ray mapped into its local space.
func (in *Instance) Intersect(ray *Ray) bool { return in.intersect(ray, false) }

func (in *Instance) intersect(ray *Ray, linear bool) bool {
	// The local direction stays unnormalized so distances remain in parent units.
	local := Ray{
		Pos: in.inv.Apply(ray.Pos),
		Dir: in.inv.Rotate(ray.Dir),
		Min: ray.Min,
		Max: ray.Max,
	}
	if linear {
		in.Mesh.RayPickLinear(&local)
	} else {
		// built by the parent's BuildBVH
		in.Mesh.bvh.raypick(&local)
	}
	if local.Face == nil {
		return false
	}
	ray.Face = local.Face
	ray.Max = local.Max
	ray.Material = local.Material
	if in.Material != nil {
		ray.Material = in.Material
	}
	ray.Normal = in.normal.MulVec(local.Normal).Normalize()
	ray.align = math.Abs(ray.Dir.Dot(ray.Normal))
	return true
}

// bounds widens [lo, hi] to contain the transformed corners of the
// instanced mesh's root box. An empty mesh contributes its origin.
func (in *Instance) bounds(lo, hi []float64) {
	grow := func(p linalg.Vector) {
		for i, x := range p {
			if x < lo[i] {
				lo[i] = x
			}
			if x > hi[i] {
				hi[i] = x
			}
		}
	}
	blo, bhi, ok := in.Mesh.bvh.rootBox()
	if !ok {
		grow(in.Transform.Off)
		return
	}
	dim := len(blo)
	corner := linalg.NewVector(dim)
	p := linalg.NewVector(dim)
	for i := 0; i < 1<<uint(dim); i++ {
		for j := 0; j < dim; j++ {
			if (i>>uint(j))&1 == 1 {
				corner[j] = bhi[j]
			} else {
				corner[j] = blo[j]
			}
		}
		in.Transform.Mat.MulVecTo(p, corner)
		grow(p.Inc(in.Transform.Off))
	}
}
