package render

import (
	"math"
	"math/rand"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
	"github.com/lukaszgryglicki/ntrace/internal/mesh"
)

// Raytrace follows ray through the scene and adds the radiance it gathers to
// out. The ray's position and direction are consumed. Rays may start inside
// geometry; the medium is tracked from the faces the path crosses.
func (s *Scene) Raytrace(ray *mesh.Ray, rng *rand.Rand, out *mesh.RGB) {
	*out = out.Add(s.trace(ray, rng))
}

func (s *Scene) trace(ray *mesh.Ray, rng *rand.Rand) mesh.RGB {
	var (
		ambient *mesh.Material
		col     = mesh.RGB{R: 1, G: 1, B: 1}
		ret     mesh.RGB
		norm    = make(linalg.Vector, s.Dim)
		rnd     linalg.Vector
	)
	dir := ray.Dir
	for bounce := 0; bounce < s.MaxBounces; bounce++ {
		// Beer-Lambert free path inside the current medium.
		scatter := math.Inf(1)
		if ambient != nil && !math.IsInf(ambient.ScatterLen, 1) {
			scatter = -ambient.ScatterLen * math.Log(1-rng.Float64())
		}
		ray.Min, ray.Max = s.Eps, scatter
		s.pick(ray)
		dist := ray.Max
		if math.IsInf(dist, 1) {
			s.Stats.add(Escape)
			return ret
		}
		mat := ray.Material
		if mat == nil {
			mat = ambient
		}
		if mat == nil {
			s.Stats.add(NoMaterial)
			return ret
		}
		if rng.Float64() < mat.AbsorbProb {
			s.Stats.add(Absorb)
			return ret
		}
		ray.Pos.AddScaled(dist, dir)
		if ray.Face == nil {
			dir.Randomize(rng)
			s.Stats.add(Scatter)
			continue
		}

		copy(norm, ray.Normal)
		cosi := dir.Dot(norm)
		inside := cosi > 0
		if inside {
			norm.ScaleBy(-1)
			ambient = mat
		} else {
			cosi = -cosi
			col = col.Mul(mat.Color)
			ret = ret.Add(col.Scale(mat.Luminosity))
			if s.MinEnergy > 0 && math.Abs(col.R)+math.Abs(col.G)+math.Abs(col.B) < s.MinEnergy {
				s.Stats.add(LowEnergy)
				return ret
			}
		}

		refracted := false
		if rng.Float64() < mat.RefractProb {
			ior := mat.RefractIndex
			if !inside {
				ior = 1 / ior
			}
			if cost, ok := refraction(ior, cosi); ok && rng.Float64() < fresnel(ior, cosi, cost) {
				refract(dir, norm, ior, cosi, cost)
				if inside {
					ambient = nil
				} else {
					ambient = mat
				}
				refracted = true
				s.Stats.add(Refract)
			}
		}
		if !refracted {
			if rng.Float64() >= mat.ReflectProb {
				s.Stats.add(Terminated)
				return ret
			}
			if rnd == nil {
				rnd = make(linalg.Vector, s.Dim)
			}
			reflect(dir, norm, cosi, mat.Diffusion, rnd, rng)
			s.Stats.add(Reflect)
		}
		dir.NormalizeRand(rng)
	}
	s.Stats.add(BounceLimit)
	return ret
}
