package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

func TestFresnel_NormalIncidence(t *testing.T) {
	// Air to glass reflects 4% head-on.
	ior := 1 / 1.5
	cost, ok := refraction(ior, 1)
	if !ok || !almostEq(cost, 1) {
		t.Fatalf("cost=%v ok=%v", cost, ok)
	}
	if p := fresnel(ior, 1, cost); !almostEq(p, 0.96) {
		t.Fatalf("transmission %v", p)
	}
	if p := fresnel(1, 0.3, 0.3); !almostEq(p, 1) {
		t.Fatalf("matched index must transmit everything, got %v", p)
	}
}

func TestRefraction_TotalInternal(t *testing.T) {
	// Glass to air beyond the critical angle (~41.8 degrees).
	if _, ok := refraction(1.5, math.Cos(60*math.Pi/180)); ok {
		t.Fatalf("expected total internal reflection")
	}
	if _, ok := refraction(1.5, math.Cos(30*math.Pi/180)); !ok {
		t.Fatalf("30 degrees must refract")
	}
}

func TestRefract_SnellAndUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for dim := 2; dim <= 6; dim++ {
		for i := 0; i < 50; i++ {
			n := linalg.NewVector(dim).Randomize(rng)
			dir := linalg.NewVector(dim).Randomize(rng)
			if dir.Dot(n) > 0 {
				dir.ScaleBy(-1)
			}
			cosi := -dir.Dot(n)
			if cosi < 1e-3 {
				continue
			}
			ior := 1 / 1.33
			cost, ok := refraction(ior, cosi)
			if !ok {
				t.Fatalf("entering a denser medium cannot reflect totally")
			}
			out := dir.Clone()
			refract(out, n, ior, cosi, cost)
			if !almostEq(out.Len(), 1) {
				t.Fatalf("dim %d: |refracted| = %v", dim, out.Len())
			}
			sini := math.Sqrt(1 - cosi*cosi)
			sint := math.Sqrt(math.Max(0, 1-out.Dot(n)*out.Dot(n)))
			if math.Abs(sint-ior*sini) > 1e-9 {
				t.Fatalf("dim %d: sin t %v, want %v", dim, sint, ior*sini)
			}
			if out.Dot(n) >= 0 {
				t.Fatalf("dim %d: refracted ray did not cross the surface", dim)
			}
		}
	}
}

func TestReflect_MirrorAndDiffuse(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := linalg.Vector{0, 0, 1}
	dir := linalg.Vector{1, 0, -1}.Normalize()
	rnd := linalg.NewVector(3)
	reflect(dir, n, -dir.Dot(n), 0, rnd, rng)
	if !dir.Equal(linalg.Vector{1, 0, 1}.Normalize(), 1e-12) {
		t.Fatalf("mirror gave %v", dir)
	}
	for i := 0; i < 200; i++ {
		d := linalg.Vector{0.3, -0.2, -1}.Normalize()
		reflect(d, n, -d.Dot(n), 1, rnd, rng)
		if !almostEq(d.Len(), 1) || d.Dot(n) < 0 {
			t.Fatalf("diffuse direction %v", d)
		}
	}
}
