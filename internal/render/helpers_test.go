package render

import (
	"math"
	"testing"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
	"github.com/lukaszgryglicki/ntrace/internal/mesh"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

// emitter returns an opaque material that ends every path after emitting.
func emitter(c mesh.RGB, lum float64) *mesh.Material {
	m := mesh.NewMaterial(c)
	m.Luminosity = lum
	m.ReflectProb = 0
	m.AbsorbProb = 0
	return m
}

// addQuad adds a square of half-size r in the plane z, facing +z when up is
// true and -z otherwise.
func addQuad(t *testing.T, m *mesh.Mesh, z, r float64, up bool, mat *mesh.Material) {
	t.Helper()
	a := m.AddVertex(linalg.Vector{-r, -r, z}, nil)
	b := m.AddVertex(linalg.Vector{r, -r, z}, nil)
	c := m.AddVertex(linalg.Vector{r, r, z}, nil)
	d := m.AddVertex(linalg.Vector{-r, r, z}, nil)
	faces := [][]*mesh.Vertex{{a, b, c}, {a, c, d}}
	if !up {
		faces = [][]*mesh.Vertex{{a, c, b}, {a, d, c}}
	}
	for _, vs := range faces {
		f, err := m.AddFace(vs, mat)
		if err != nil {
			t.Fatal(err)
		}
		if (f.Normal[2] > 0) != up {
			t.Fatalf("quad normal %v, want up=%v", f.Normal, up)
		}
	}
}

func uniform(t *testing.T, img []float64, want mesh.RGB) {
	t.Helper()
	for p := 0; p < len(img); p += 3 {
		got := mesh.RGB{R: img[p], G: img[p+1], B: img[p+2]}
		if !got.Equal(want, 1e-9) {
			t.Fatalf("pixel %d = %+v, want %+v", p/3, got, want)
		}
	}
}
