package mesh

import (
	"fmt"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// Mesh is an append-only collection of vertices, simplex faces and
// instances of other meshes, with a lazily rebuilt BVH over faces and
// instances.
//
// A mesh is not safe for concurrent mutation. Once BuildBVH has returned,
// any number of goroutines may call RayPick as long as nothing mutates the
// mesh or the meshes it instances.
type Mesh struct {
	dim   int
	verts []*Vertex
	faces []*Face
	insts []*Instance
	dirty bool
	gen   uint64
	bvh   bvh
}

// NewMesh returns an empty mesh in dim dimensions (1..MaxDim).
func NewMesh(dim int) *Mesh {
	if dim < 1 || dim > MaxDim {
		panic(fmt.Sprintf("mesh: dimension %d out of range 1..%d", dim, MaxDim))
	}
	m := &Mesh{dim: dim, dirty: true}
	m.bvh.init(dim)
	return m
}

func (m *Mesh) Dim() int               { return m.dim }
func (m *Mesh) Vertices() []*Vertex    { return m.verts }
func (m *Mesh) Faces() []*Face         { return m.faces }
func (m *Mesh) Instances() []*Instance { return m.insts }
func (m *Mesh) Dirty() bool            { return m.dirty }
func (m *Mesh) Params() BVHParams      { return m.bvh.params }
func (m *Mesh) Empty() bool            { return len(m.faces) == 0 && len(m.insts) == 0 }
func (m *Mesh) Objects() int           { return len(m.faces) + len(m.insts) }
func (m *Mesh) owns(v *Vertex) bool    { return v != nil && v.mesh == m }
func (m *Mesh) vertex(i int) *Vertex   { return m.verts[i] }

func (m *Mesh) touch() {
	m.dirty = true
	m.gen++
}

// SetBVHParams replaces the split cost model; zero fields take defaults.
func (m *Mesh) SetBVHParams(p BVHParams) {
	m.bvh.params = p.withDefaults(m.dim)
	m.touch()
}

// AddVertex appends a vertex at pos, mapped by t when t is non-nil.
func (m *Mesh) AddVertex(pos linalg.Vector, t *linalg.Transform) *Vertex {
	if len(pos) != m.dim {
		panic(fmt.Errorf("%w: vertex of dim %d in mesh of dim %d", linalg.ErrDimensionMismatch, len(pos), m.dim))
	}
	p := pos.Clone()
	if t != nil {
		p = t.Apply(p)
	}
	v := &Vertex{Pos: p, ID: len(m.verts), mesh: m}
	m.verts = append(m.verts, v)
	m.touch()
	return v
}

// AddFace appends a face over vertices of this mesh.
func (m *Mesh) AddFace(verts []*Vertex, mat *Material) (*Face, error) {
	if len(verts) > m.dim {
		return nil, fmt.Errorf("%w: %d vertices in dim %d", ErrTooManyVertices, len(verts), m.dim)
	}
	for i, v := range verts {
		if !m.owns(v) {
			return nil, fmt.Errorf("face vertex %d: %w", i, ErrForeignVertex)
		}
	}
	f := newFace(m.dim, append([]*Vertex(nil), verts...), mat)
	m.faces = append(m.faces, f)
	m.touch()
	return f, nil
}

// AddFaceIdx is AddFace with vertices given by index.
func (m *Mesh) AddFaceIdx(idx []int, mat *Material) (*Face, error) {
	if len(idx) > m.dim {
		return nil, fmt.Errorf("%w: %d vertices in dim %d", ErrTooManyVertices, len(idx), m.dim)
	}
	verts := make([]*Vertex, len(idx))
	for i, j := range idx {
		if j < 0 || j >= len(m.verts) {
			return nil, fmt.Errorf("face vertex %d: %w: %d of %d", i, ErrVertexIndex, j, len(m.verts))
		}
		verts[i] = m.vertex(j)
	}
	return m.AddFace(verts, mat)
}

// AddInstance places sub in this mesh through t (nil for identity) without
// copying its geometry. A non-nil mat overrides the sub-mesh materials.
func (m *Mesh) AddInstance(sub *Mesh, t *linalg.Transform, mat *Material) (*Instance, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrDimension)
	}
	if sub.dim != m.dim {
		return nil, fmt.Errorf("%w: instance of dim %d in mesh of dim %d", ErrDimension, sub.dim, m.dim)
	}
	if sub.reaches(m) {
		return nil, ErrInstanceCycle
	}
	inst, err := newInstance(sub, t, mat)
	if err != nil {
		return nil, err
	}
	m.insts = append(m.insts, inst)
	m.touch()
	return inst, nil
}

// AddMesh adds sub either as an instance or as a transformed copy of its
// vertices and faces. Copied faces keep their material unless mat is set.
// Instances inside sub are carried over as instances.
func (m *Mesh) AddMesh(sub *Mesh, mat *Material, t *linalg.Transform, instanced bool) error {
	if instanced {
		_, err := m.AddInstance(sub, t, mat)
		return err
	}
	if sub.dim != m.dim {
		return fmt.Errorf("%w: copy of dim %d into mesh of dim %d", ErrDimension, sub.dim, m.dim)
	}
	if sub == m {
		return fmt.Errorf("copy mesh into itself: %w", ErrInstanceCycle)
	}
	vmap := make([]*Vertex, len(sub.verts))
	for i, v := range sub.verts {
		vmap[i] = m.AddVertex(v.Pos, t)
	}
	for _, f := range sub.faces {
		verts := make([]*Vertex, len(f.Verts))
		for i, v := range f.Verts {
			verts[i] = vmap[v.ID]
		}
		fm := f.Material
		if mat != nil {
			fm = mat
		}
		if _, err := m.AddFace(verts, fm); err != nil {
			return err
		}
	}
	for _, in := range sub.insts {
		tr := in.Transform
		if t != nil {
			tr = t.Compose(tr)
		}
		im := in.Material
		if mat != nil {
			im = mat
		}
		if _, err := m.AddInstance(in.Mesh, &tr, im); err != nil {
			return err
		}
	}
	return nil
}

// reaches reports whether target is m or is instanced somewhere below m.
func (m *Mesh) reaches(target *Mesh) bool {
	seen := map[*Mesh]bool{}
	stack := []*Mesh{m}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, in := range cur.insts {
			stack = append(stack, in.Mesh)
		}
	}
	return false
}

// stale reports whether the BVH needs a rebuild: this mesh or any instanced
// mesh changed since the last build.
func (m *Mesh) stale() bool {
	if m.dirty {
		return true
	}
	for _, in := range m.insts {
		if in.gen != in.Mesh.gen || in.Mesh.stale() {
			return true
		}
	}
	return false
}

// BuildBVH rebuilds the acceleration structure of this mesh and of every
// instanced mesh. It is a no-op when nothing changed since the last build.
func (m *Mesh) BuildBVH() {
	if !m.stale() {
		return
	}
	m.bvh.build(m)
	m.dirty = false
}

// RayPick finds the nearest face hit by ray inside [ray.Min, ray.Max] and
// records it on the ray. The BVH is rebuilt first if the mesh or any mesh
// it instances changed.
func (m *Mesh) RayPick(ray *Ray) {
	m.BuildBVH()
	m.bvh.raypick(ray)
}

// RayPickLinear is RayPick by brute force over every face and instance.
func (m *Mesh) RayPickLinear(ray *Ray) {
	ray.prepare()
	for _, f := range m.faces {
		f.Intersect(ray)
	}
	for _, in := range m.insts {
		in.intersect(ray, true)
	}
}

// Bounds returns the axis-aligned box of all vertices and instances, built
// from the BVH root. ok is false for an empty mesh.
func (m *Mesh) Bounds() (lo, hi linalg.Vector, ok bool) {
	m.BuildBVH()
	return m.bvh.rootBox()
}
