package mesh

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

func TestInstance_MatchesCopiedGeometry(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	for dim := 2; dim <= 4; dim++ {
		cube := NewMesh(dim)
		sides := make([]float64, dim)
		for i := range sides {
			sides[i] = 1
		}
		if err := cube.AddCube(sides, nil, nil); err != nil {
			t.Fatal(err)
		}
		angles := make([]float64, linalg.RotationAngles(dim))
		for i := range angles {
			angles[i] = rng.Float64() * math.Pi
		}
		scale := make([]float64, dim)
		for i := range scale {
			scale[i] = 0.5 + rng.Float64()*2
		}
		tr := linalg.NewTransform(randPoint(rng, dim, 0.5), angles, scale)

		inst := NewMesh(dim)
		if _, err := inst.AddInstance(cube, &tr, nil); err != nil {
			t.Fatal(err)
		}
		copied := NewMesh(dim)
		if err := copied.AddMesh(cube, nil, &tr, false); err != nil {
			t.Fatal(err)
		}
		hits := 0
		for r := 0; r < 200; r++ {
			a := randomRay(rng, dim)
			b := NewRay(a.Pos.Clone(), a.Dir.Clone())
			inst.RayPick(a)
			copied.RayPick(b)
			if a.Hit() != b.Hit() {
				t.Fatalf("dim %d ray %d: instance hit=%v copy hit=%v", dim, r, a.Hit(), b.Hit())
			}
			if !a.Hit() {
				continue
			}
			hits++
			if math.Abs(a.Max-b.Max) > 1e-9 {
				t.Fatalf("dim %d: distance %v vs %v", dim, a.Max, b.Max)
			}
			if !a.Normal.Equal(b.Normal, 1e-9) {
				t.Fatalf("dim %d: normal %v vs %v", dim, a.Normal, b.Normal)
			}
		}
		if hits == 0 {
			t.Fatalf("dim %d: no hits", dim)
		}
	}
}

func TestInstance_CycleGuard(t *testing.T) {
	a := NewMesh(3)
	b := NewMesh(3)
	c := NewMesh(3)
	if _, err := a.AddInstance(a, nil, nil); !errors.Is(err, ErrInstanceCycle) {
		t.Fatalf("self instance: %v", err)
	}
	if _, err := a.AddInstance(b, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddInstance(c, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddInstance(a, nil, nil); !errors.Is(err, ErrInstanceCycle) {
		t.Fatalf("indirect cycle: %v", err)
	}
	if err := c.AddMesh(a, nil, nil, true); !errors.Is(err, ErrInstanceCycle) {
		t.Fatalf("AddMesh cycle: %v", err)
	}
	// Shared sub-meshes (a DAG) are fine.
	if _, err := a.AddInstance(c, nil, nil); err != nil {
		t.Fatalf("diamond: %v", err)
	}
	a.BuildBVH()
}

func TestInstance_Validation(t *testing.T) {
	m := NewMesh(3)
	if _, err := m.AddInstance(NewMesh(2), nil, nil); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
	flat := linalg.NewTransform(vec(0, 0, 0), nil, []float64{1, 0, 1})
	if _, err := m.AddInstance(NewMesh(3), &flat, nil); !errors.Is(err, linalg.ErrSingularMatrix) {
		t.Fatalf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestInstance_MaterialOverride(t *testing.T) {
	red := NewMaterial(RGB{1, 0, 0})
	blue := NewMaterial(RGB{0, 0, 1})
	sub, _ := triangleMesh(t, red)
	m := NewMesh(3)
	up := linalg.NewTransform(vec(0, 0, 1), nil, nil)
	if _, err := m.AddInstance(sub, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddInstance(sub, &up, blue); err != nil {
		t.Fatal(err)
	}
	ray := NewRay(vec(0.25, 0.25, 3), vec(0, 0, -1))
	m.RayPick(ray)
	if ray.Material != blue || !almostEq(ray.Max, 2) {
		t.Fatalf("upper instance: mat=%v dist=%v", ray.Material, ray.Max)
	}
	ray = NewRay(vec(0.25, 0.25, 0.5), vec(0, 0, -1))
	m.RayPick(ray)
	if ray.Material != red || !almostEq(ray.Max, 0.5) {
		t.Fatalf("lower instance: mat=%v dist=%v", ray.Material, ray.Max)
	}
}

func TestInstance_SubMeshMutationRebuildsParent(t *testing.T) {
	sub, _ := triangleMesh(t, nil)
	parent := NewMesh(3)
	if _, err := parent.AddInstance(sub, nil, nil); err != nil {
		t.Fatal(err)
	}
	parent.BuildBVH()
	a := sub.AddVertex(vec(10, 0, 0), nil)
	b := sub.AddVertex(vec(11, 0, 0), nil)
	c := sub.AddVertex(vec(10, 1, 0), nil)
	if _, err := sub.AddFace([]*Vertex{a, b, c}, nil); err != nil {
		t.Fatal(err)
	}
	if !parent.stale() || parent.Dirty() {
		t.Fatalf("parent should be stale through its instance only")
	}
	ray := NewRay(vec(10.25, 0.25, 1), vec(0, 0, -1))
	parent.RayPick(ray)
	linear := NewRay(vec(10.25, 0.25, 1), vec(0, 0, -1))
	parent.RayPickLinear(linear)
	if !ray.Hit() || !linear.Hit() || ray.Face != linear.Face {
		t.Fatalf("RayPick hit=%v, RayPickLinear hit=%v", ray.Hit(), linear.Hit())
	}
	if parent.stale() {
		t.Fatalf("RayPick left the parent stale")
	}
}

func TestInstance_EmptyMeshIsALeaf(t *testing.T) {
	m, _ := triangleMesh(t, nil)
	if _, err := m.AddInstance(NewMesh(3), nil, nil); err != nil {
		t.Fatal(err)
	}
	st := m.BVHStats()
	if st.Leaves != 2 || st.Instances != 1 {
		t.Fatalf("stats %+v", st)
	}
	ray := NewRay(vec(0.25, 0.25, 1), vec(0, 0, -1))
	m.RayPick(ray)
	if !ray.Hit() || !almostEq(ray.Max, 1) {
		t.Fatalf("face behind empty instance not hit")
	}
}

func TestInstance_LinearMatchesBVH(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	leaf := randomMesh(rng, 3, 40, 0.3)
	m := NewMesh(3)
	for i := 0; i < 5; i++ {
		tr := linalg.NewTransform(randPoint(rng, 3, 2), []float64{rng.Float64(), rng.Float64(), rng.Float64()}, []float64{0.5})
		if _, err := m.AddInstance(leaf, &tr, nil); err != nil {
			t.Fatal(err)
		}
	}
	for r := 0; r < 200; r++ {
		a := randomRay(rng, 3)
		b := NewRay(a.Pos.Clone(), a.Dir.Clone())
		m.RayPick(a)
		m.RayPickLinear(b)
		if a.Hit() != b.Hit() || (a.Hit() && math.Abs(a.Max-b.Max) >= a.Min) {
			t.Fatalf("ray %d: bvh (%v,%v) linear (%v,%v)", r, a.Hit(), a.Max, b.Hit(), b.Max)
		}
	}
}
