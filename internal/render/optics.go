package render

import (
	"math"
	"math/rand"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
)

// The helpers below take the normal n already flipped to face the incoming
// direction, so cosi = -dir·n >= 0.

// refraction returns the cosine of the transmitted angle for relative index
// ior, and false on total internal reflection.
func refraction(ior, cosi float64) (float64, bool) {
	disc := 1 - ior*ior*(1-cosi*cosi)
	if disc <= 0 {
		return 0, false
	}
	return math.Sqrt(disc), true
}

// fresnel returns the probability of transmission: one minus the average of
// the s and p polarized reflectances.
func fresnel(ior, cosi, cost float64) float64 {
	a := ior * cost
	rs := (cosi - a) / (cosi + a)
	a = ior * cosi
	rp := (a - cost) / (a + cost)
	return 1 - (rs*rs+rp*rp)*0.5
}

// refract bends dir in place through the interface. The result is unit
// length when dir and n are.
func refract(dir, n linalg.Vector, ior, cosi, cost float64) {
	dir.ScaleBy(ior).AddScaled(ior*cosi-cost, n)
}

// reflect mirrors dir in place about n, then moves it towards a random
// direction of the n hemisphere by diffusion (0 mirror, 1 fully random).
// rnd is scratch space. dir is left unnormalized.
func reflect(dir, n linalg.Vector, cosi, diffusion float64, rnd linalg.Vector, rng *rand.Rand) {
	dir.AddScaled(2*cosi, n)
	if diffusion == 0 {
		return
	}
	rnd.Randomize(rng)
	if rnd.Dot(n) < 0 {
		rnd.ScaleBy(-1)
	}
	dir.ScaleBy(1 - diffusion).AddScaled(diffusion, rnd)
}
