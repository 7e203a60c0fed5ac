package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
	"github.com/lukaszgryglicki/ntrace/internal/mesh"
	"github.com/lukaszgryglicki/ntrace/internal/render"
)

// builder carries the state of one Build call.
type builder struct {
	cfg       *Config
	materials map[string]*mesh.Material
	meshes    map[string]*mesh.Mesh
	building  map[string]bool
	fallback  *mesh.Material
}

// Build validates the config and constructs the scene: materials, named
// meshes (each built before the objects that instance it), objects, camera
// and BVH cost model.
func (c *Config) Build() (*render.Scene, error) {
	if c.Dim < 1 || c.Dim > mesh.MaxDim {
		return nil, fmt.Errorf("%w: dim %d not in [1,%d]", ErrInvalid, c.Dim, mesh.MaxDim)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	b := &builder{
		cfg:       c,
		materials: make(map[string]*mesh.Material, len(c.Materials)),
		meshes:    make(map[string]*mesh.Mesh, len(c.Meshes)),
		building:  map[string]bool{},
		fallback:  mesh.NewMaterial(mesh.RGB{R: 1, G: 1, B: 1}),
	}
	for _, name := range sortedKeys(c.Materials) {
		mat, err := c.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		b.materials[name] = mat
	}
	for _, name := range sortedKeys(c.Meshes) {
		if _, err := b.mesh(name); err != nil {
			return nil, err
		}
	}

	s := render.NewScene(c.Dim, c.Width, c.Height)
	s.RaysPerPixel = c.RaysPerPixel
	s.MaxBounces = c.MaxBounces
	s.Eps = c.Eps
	s.MinEnergy = c.MinEnergy
	s.Mesh.SetBVHParams(c.BVH)
	for i, o := range c.Objects {
		if err := b.addObject(s.Mesh, o); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}

	pos := c.Camera.Position
	if pos == nil {
		pos = make([]float64, c.Dim)
	}
	angles := c.Camera.AnglesDeg
	if angles == nil {
		angles = make([]float64, linalg.RotationAngles(c.Dim))
	}
	if err := s.SetCamera(pos, radians(angles), c.Camera.Fov); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	return s, nil
}

func (mc MaterialCfg) build() (*mesh.Material, error) {
	if len(mc.Color) != 3 {
		return nil, fmt.Errorf("%w: color needs 3 components, got %d", mesh.ErrMaterial, len(mc.Color))
	}
	m := mesh.NewMaterial(mesh.RGB{R: mc.Color[0], G: mc.Color[1], B: mc.Color[2]})
	m.Luminosity = mc.Luminosity
	m.RefractProb = mc.RefractProb
	if mc.ReflectProb != nil {
		m.ReflectProb = *mc.ReflectProb
	}
	if mc.Diffusion != nil {
		m.Diffusion = *mc.Diffusion
	}
	if mc.RefractIndex != nil {
		m.RefractIndex = *mc.RefractIndex
	}
	if mc.AbsorbProb != nil {
		m.AbsorbProb = *mc.AbsorbProb
	}
	if mc.ScatterLen != 0 {
		m.ScatterLen = mc.ScatterLen
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// mesh returns the named mesh, building it and the meshes it instances on
// first use.
func (b *builder) mesh(name string) (*mesh.Mesh, error) {
	if m, ok := b.meshes[name]; ok {
		return m, nil
	}
	mc, ok := b.cfg.Meshes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	if b.building[name] {
		return nil, fmt.Errorf("mesh %q: %w", name, mesh.ErrInstanceCycle)
	}
	b.building[name] = true
	defer delete(b.building, name)

	m := mesh.NewMesh(b.cfg.Dim)
	m.SetBVHParams(b.cfg.BVH)
	for i, o := range mc.Objects {
		if err := b.addObject(m, o); err != nil {
			if errors.Is(err, mesh.ErrInstanceCycle) {
				return nil, err
			}
			return nil, fmt.Errorf("mesh %q object %d: %w", name, i, err)
		}
	}
	b.meshes[name] = m
	return m, nil
}

func (b *builder) material(name string) (*mesh.Material, error) {
	if name == "" {
		return nil, nil
	}
	mat, ok := b.materials[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return mat, nil
}

func (b *builder) addObject(m *mesh.Mesh, o ObjectCfg) error {
	kinds := 0
	for _, set := range []bool{o.Cube != nil, o.Sphere != nil, o.Simplex != nil, o.Face != nil, o.OBJ != "", o.Instance != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return ErrObjectKind
	}
	mat, err := b.material(o.Material)
	if err != nil {
		return err
	}
	tr, err := o.Transform.build(m.Dim())
	if err != nil {
		return err
	}
	if o.Instance != "" {
		sub, err := b.mesh(o.Instance)
		if err != nil {
			return err
		}
		return m.AddMesh(sub, mat, tr, !o.Copy)
	}
	if mat == nil {
		mat = b.fallback
	}

	dim := m.Dim()
	switch {
	case o.Cube != nil:
		return m.AddCube(o.Cube.Sides, mat, tr)
	case o.Sphere != nil:
		sp := o.Sphere
		center := sp.Center
		if center == nil {
			center = make([]float64, dim)
		}
		if !(sp.Radius > 0) {
			return fmt.Errorf("%w: sphere radius %g", ErrInvalid, sp.Radius)
		}
		faces := sp.MaxFaces
		if faces <= 0 {
			faces = DefaultSphereFaces
		}
		return m.AddSphere(center, sp.Radius, faces, mat, tr)
	case o.Simplex != nil:
		return m.AddSimplex(o.Simplex.Edge, mat, tr)
	case o.Face != nil:
		verts := make([]*mesh.Vertex, len(o.Face))
		for i, p := range o.Face {
			if len(p) != dim {
				return fmt.Errorf("%w: face vertex %d has %d coordinates", mesh.ErrDimension, i, len(p))
			}
			verts[i] = m.AddVertex(p, tr)
		}
		_, err := m.AddFace(verts, mat)
		return err
	default:
		path := o.OBJ
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.cfg.dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := m.LoadOBJ(f, mat, tr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
}

// build returns nil for a missing transform.
func (tc *TransformCfg) build(dim int) (*linalg.Transform, error) {
	if tc == nil {
		return nil, nil
	}
	off := linalg.NewVector(dim)
	if tc.Offset != nil {
		if len(tc.Offset) != dim {
			return nil, fmt.Errorf("%w: offset has %d values for dim %d", ErrInvalid, len(tc.Offset), dim)
		}
		copy(off, tc.Offset)
	}
	var angles []float64
	if tc.AnglesDeg != nil {
		if n := linalg.RotationAngles(dim); len(tc.AnglesDeg) != n {
			return nil, fmt.Errorf("%w: %d angles given, dim %d needs %d", ErrInvalid, len(tc.AnglesDeg), dim, n)
		}
		angles = radians(tc.AnglesDeg)
	}
	switch len(tc.Scale) {
	case 0, 1, dim:
	default:
		return nil, fmt.Errorf("%w: scale has %d values for dim %d", ErrInvalid, len(tc.Scale), dim)
	}
	t := linalg.NewTransform(off, angles, tc.Scale)
	return &t, nil
}

func radians(deg []float64) []float64 {
	out := make([]float64, len(deg))
	for i, d := range deg {
		out[i] = d * math.Pi / 180
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
