package mesh

import (
	"fmt"
	"math"
)

// RGB stores linear color components.
type RGB struct {
	R, G, B float64
}

func (c RGB) Add(o RGB) RGB       { return RGB{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c RGB) Mul(o RGB) RGB       { return RGB{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c RGB) Scale(s float64) RGB { return RGB{c.R * s, c.G * s, c.B * s} }
func (c RGB) Sum() float64        { return c.R + c.G + c.B }
func (c RGB) Equal(o RGB, tol float64) bool {
	return math.Abs(c.R-o.R) <= tol && math.Abs(c.G-o.G) <= tol && math.Abs(c.B-o.B) <= tol
}

// Material describes how a surface or the medium behind it interacts with
// light. Materials are shared by pointer and must not change once a render
// has started.
type Material struct {
	Color        RGB
	Luminosity   float64 // emitted radiance; > 0 makes the surface a light
	ReflectProb  float64
	Diffusion    float64 // 0 is a mirror, 1 is Lambertian
	RefractProb  float64
	RefractIndex float64
	ScatterLen   float64 // mean free path inside the medium, +Inf for none
	AbsorbProb   float64
}

// NewMaterial returns a diffuse, non-emissive, opaque material of the given color.
func NewMaterial(color RGB) *Material {
	return &Material{
		Color:        color,
		ReflectProb:  1,
		Diffusion:    1,
		RefractIndex: 1,
		ScatterLen:   math.Inf(1),
		AbsorbProb:   DefaultAbsorbProb,
	}
}

// Validate checks probabilities and physical constants.
func (m *Material) Validate() error {
	probs := []struct {
		name string
		v    float64
	}{
		{"reflectProb", m.ReflectProb},
		{"diffusion", m.Diffusion},
		{"refractProb", m.RefractProb},
		{"absorbProb", m.AbsorbProb},
	}
	for _, p := range probs {
		if !(p.v >= 0 && p.v <= 1) {
			return fmt.Errorf("%w: %s=%g not in [0,1]", ErrMaterial, p.name, p.v)
		}
	}
	if !(m.RefractIndex > 0) {
		return fmt.Errorf("%w: refractIndex=%g must be > 0", ErrMaterial, m.RefractIndex)
	}
	if !(m.ScatterLen > 0) {
		return fmt.Errorf("%w: scatterLen=%g must be > 0", ErrMaterial, m.ScatterLen)
	}
	if m.Luminosity < 0 {
		return fmt.Errorf("%w: luminosity=%g must be >= 0", ErrMaterial, m.Luminosity)
	}
	return nil
}
