package mesh

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

func vec(xs ...float64) linalg.Vector { return linalg.Vector(xs) }

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func randPoint(rng *rand.Rand, dim int, scale float64) linalg.Vector {
	v := linalg.NewVector(dim)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * scale
	}
	return v
}

func triangleMesh(t *testing.T, mat *Material) (*Mesh, *Face) {
	t.Helper()
	m := NewMesh(3)
	a := m.AddVertex(vec(0, 0, 0), nil)
	b := m.AddVertex(vec(1, 0, 0), nil)
	c := m.AddVertex(vec(0, 1, 0), nil)
	f, err := m.AddFace([]*Vertex{a, b, c}, mat)
	if err != nil {
		t.Fatal(err)
	}
	return m, f
}

func TestFace_TriangleScenario(t *testing.T) {
	mat := NewMaterial(RGB{1, 1, 1})
	mat.Luminosity = 1
	m, f := triangleMesh(t, mat)
	ray := NewRay(vec(0.25, 0.25, 1), vec(0, 0, -1))
	m.RayPick(ray)
	if ray.Face != f {
		t.Fatalf("expected triangle hit, got %v", ray.Face)
	}
	if ray.Max != 1.0 {
		t.Fatalf("distance = %v, want exactly 1", ray.Max)
	}
	if ray.Material.Color != (RGB{1, 1, 1}) {
		t.Fatalf("color = %+v", ray.Material.Color)
	}
	if !ray.Point().Equal(vec(0.25, 0.25, 0), 1e-12) {
		t.Fatalf("hit point %v", ray.Point())
	}
}

func TestFace_Misses(t *testing.T) {
	m, _ := triangleMesh(t, nil)
	cases := []struct {
		name     string
		pos, dir linalg.Vector
	}{
		{"outside", vec(0.75, 0.75, 1), vec(0, 0, -1)},
		{"behind", vec(0.25, 0.25, -1), vec(0, 0, -1)},
		{"parallel", vec(0.25, 0.25, 1), vec(1, 0, 0)},
		{"negative weight", vec(-0.1, 0.5, 1), vec(0, 0, -1)},
	}
	for _, c := range cases {
		ray := NewRay(c.pos, c.dir)
		m.RayPick(ray)
		if ray.Hit() {
			t.Errorf("%s: unexpected hit at %v", c.name, ray.Max)
		}
	}
	ray := NewRay(vec(0.25, 0.25, 1), vec(0, 0, -1))
	ray.Max = 0.5
	m.RayPick(ray)
	if ray.Hit() {
		t.Fatalf("hit beyond ray.Max")
	}
}

func TestFace_NormalsUnitAndOrthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	for dim := 2; dim <= 6; dim++ {
		m := NewMesh(dim)
		for trial := 0; trial < 30; trial++ {
			verts := make([]*Vertex, dim)
			for i := range verts {
				verts[i] = m.AddVertex(randPoint(rng, dim, 1), nil)
			}
			f, err := m.AddFace(verts, nil)
			if err != nil {
				t.Fatal(err)
			}
			if f.Inert() {
				continue
			}
			if !almostEq(f.Normal.Len(), 1) {
				t.Fatalf("dim %d: normal length %v", dim, f.Normal.Len())
			}
			for i := 1; i < dim; i++ {
				e := verts[i].Pos.Sub(verts[0].Pos)
				if d := f.Normal.Dot(e); math.Abs(d) > 1e-6 {
					t.Fatalf("dim %d: normal·edge%d = %v", dim, i, d)
				}
			}
		}
	}
}

func TestFace_DegenerateIsInert(t *testing.T) {
	m := NewMesh(3)
	a := m.AddVertex(vec(0, 0, 0), nil)
	b := m.AddVertex(vec(1, 1, 1), nil)
	c := m.AddVertex(vec(2, 2, 2), nil)
	f, err := m.AddFace([]*Vertex{a, b, c}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Inert() {
		t.Fatalf("collinear triangle should be inert")
	}
	for _, x := range f.Normal {
		if math.IsNaN(x) {
			t.Fatalf("NaN normal %v", f.Normal)
		}
	}
	ray := NewRay(vec(1, 1, 5), vec(0, 0, -1))
	m.RayPick(ray)
	if ray.Hit() {
		t.Fatalf("inert face was hit")
	}
}

func TestFace_LowerDimensionalFace(t *testing.T) {
	m := NewMesh(3)
	a := m.AddVertex(vec(0, 0, 0), nil)
	b := m.AddVertex(vec(1, 0, 0), nil)
	f, err := m.AddFace([]*Vertex{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Inert() {
		t.Fatalf("segment in 3D should be inert")
	}
	if d := f.Normal.Dot(vec(1, 0, 0)); math.Abs(d) > 1e-12 || !almostEq(f.Normal.Len(), 1) {
		t.Fatalf("segment normal %v", f.Normal)
	}
}

func TestFace_OneDimensionalPoint(t *testing.T) {
	m := NewMesh(1)
	v := m.AddVertex(vec(2), nil)
	f, err := m.AddFace([]*Vertex{v}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ray := NewRay(vec(0), vec(1))
	m.RayPick(ray)
	if ray.Face != f || !almostEq(ray.Max, 2) {
		t.Fatalf("1D point: face=%v dist=%v", ray.Face, ray.Max)
	}
}

func TestAddFace_Validation(t *testing.T) {
	m := NewMesh(2)
	a := m.AddVertex(vec(0, 0), nil)
	b := m.AddVertex(vec(1, 0), nil)
	c := m.AddVertex(vec(0, 1), nil)
	if _, err := m.AddFace([]*Vertex{a, b, c}, nil); !errors.Is(err, ErrTooManyVertices) {
		t.Fatalf("expected ErrTooManyVertices, got %v", err)
	}
	if _, err := m.AddFaceIdx([]int{0, 1, 2}, nil); !errors.Is(err, ErrTooManyVertices) {
		t.Fatalf("expected ErrTooManyVertices, got %v", err)
	}
	if _, err := m.AddFaceIdx([]int{0, 7}, nil); !errors.Is(err, ErrVertexIndex) {
		t.Fatalf("expected ErrVertexIndex, got %v", err)
	}
	other := NewMesh(2)
	x := other.AddVertex(vec(5, 5), nil)
	if _, err := m.AddFace([]*Vertex{a, x}, nil); !errors.Is(err, ErrForeignVertex) {
		t.Fatalf("expected ErrForeignVertex, got %v", err)
	}
	if len(m.Faces()) != 0 {
		t.Fatalf("rejected faces were stored")
	}
}

func TestAddVertex_DimensionMismatchPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, linalg.ErrDimensionMismatch) {
			t.Fatalf("expected dimension mismatch panic, got %v", err)
		}
	}()
	NewMesh(3).AddVertex(vec(1, 2), nil)
}

func TestFace_TieBreakPrefersHeadOn(t *testing.T) {
	build := func(tiltedFirst bool) (*Mesh, *Face) {
		m := NewMesh(3)
		flat := func() *Face {
			a := m.AddVertex(vec(0, 0, 0), nil)
			b := m.AddVertex(vec(1, 0, 0), nil)
			c := m.AddVertex(vec(0, 1, 0), nil)
			f, _ := m.AddFace([]*Vertex{a, b, c}, nil)
			return f
		}
		tilted := func() {
			a := m.AddVertex(vec(0, 0, -0.25), nil)
			b := m.AddVertex(vec(1, 0, 0.75), nil)
			c := m.AddVertex(vec(0, 1, -0.25), nil)
			m.AddFace([]*Vertex{a, b, c}, nil)
		}
		if tiltedFirst {
			tilted()
			return m, flat()
		}
		f := flat()
		tilted()
		return m, f
	}
	for _, tiltedFirst := range []bool{false, true} {
		m, want := build(tiltedFirst)
		for _, linear := range []bool{false, true} {
			ray := NewRay(vec(0.25, 0.25, 1), vec(0, 0, -1))
			if linear {
				m.RayPickLinear(ray)
			} else {
				m.RayPick(ray)
			}
			if ray.Face != want {
				t.Fatalf("tiltedFirst=%v linear=%v: tie-break chose the oblique face", tiltedFirst, linear)
			}
		}
	}
}

func TestMaterial_DefaultsAndValidate(t *testing.T) {
	m := NewMaterial(RGB{0.5, 0.5, 0.5})
	if m.ReflectProb != 1 || m.Diffusion != 1 || m.RefractProb != 0 || m.RefractIndex != 1 ||
		!math.IsInf(m.ScatterLen, 1) || m.AbsorbProb != DefaultAbsorbProb {
		t.Fatalf("defaults: %+v", m)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	m.RefractProb = 1.5
	if err := m.Validate(); !errors.Is(err, ErrMaterial) {
		t.Fatalf("expected ErrMaterial, got %v", err)
	}
}
