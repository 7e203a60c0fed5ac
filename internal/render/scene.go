package render

import (
	"fmt"
	"math"

	"github.com/lukaszgryglicki/ntrace/internal/linalg"
	"github.com/lukaszgryglicki/ntrace/internal/mesh"
)

// Scene is a mesh seen through a pinhole camera, plus the radiance
// accumulated for every pixel so far.
type Scene struct {
	Dim           int
	Width, Height int
	Eps           float64 // near limit of every bounce
	RaysPerPixel  int
	MaxBounces    int
	MinEnergy     float64 // > 0 ends paths whose throughput drops below it
	Linear        bool    // pick by brute force instead of the BVH
	Mesh          *mesh.Mesh
	Stats         *Stats // optional path accounting

	camPos, camBL, camU, camV linalg.Vector

	sum     []float64 // 3 per pixel, row-major
	samples []int32
}

// NewScene returns an empty scene of the given dimension and image size with
// the camera at the origin looking down its default axis.
func NewScene(dim, width, height int) *Scene {
	if width <= 0 || height <= 0 {
		panic("image size must be positive")
	}
	s := &Scene{
		Dim:          dim,
		Width:        width,
		Height:       height,
		Eps:          DefaultEps,
		RaysPerPixel: DefaultRaysPerPixel,
		MaxBounces:   DefaultMaxBounces,
		Mesh:         mesh.NewMesh(dim),
		sum:          make([]float64, 3*width*height),
		samples:      make([]int32, width*height),
	}
	if err := s.SetCamera(linalg.NewVector(dim), make([]float64, linalg.RotationAngles(dim)), DefaultFov); err != nil {
		panic(err)
	}
	return s
}

// SetCamera places the camera at pos, rotated by one angle (radians) per
// coordinate plane, with a horizontal field of view of fovDeg degrees.
//
// The image plane sits at distance 1 along -z (the last axis below 3D).
// In 1D every pixel looks down -x; in 2D rows mirror each other.
func (s *Scene) SetCamera(pos linalg.Vector, angles []float64, fovDeg float64) error {
	dim := s.Dim
	if len(pos) != dim {
		return fmt.Errorf("%w: position of dim %d in dim %d", ErrCamera, len(pos), dim)
	}
	if n := linalg.RotationAngles(dim); len(angles) != n {
		return fmt.Errorf("%w: %d angles given, dim %d needs %d", ErrCamera, len(angles), dim, n)
	}
	if !(fovDeg > 0 && fovDeg < 180) {
		return fmt.Errorf("%w: fov %g not in (0,180)", ErrCamera, fovDeg)
	}
	x, y, z := linalg.NewVector(dim), linalg.NewVector(dim), linalg.NewVector(dim)
	if dim > 2 {
		z[2] = -1
	} else {
		z[dim-1] = -1
	}
	if dim > 1 {
		x[0] = math.Tan(fovDeg * math.Pi / 360)
	}
	if dim > 2 {
		y[1] = -x[0] * float64(s.Height) / float64(s.Width)
	}
	rot := linalg.Identity(dim).Rotate(angles)
	s.camPos = pos.Clone()
	s.camBL = rot.MulVec(z.Sub(x).Dec(y))
	s.camU = rot.MulVec(x).ScaleBy(2 / float64(s.Width))
	s.camV = rot.MulVec(y).ScaleBy(2 / float64(s.Height))
	return nil
}

// primary aims ray from the camera through image point (u, v) in pixels,
// reusing the ray's buffers.
func (s *Scene) primary(ray *mesh.Ray, u, v float64) {
	ray.Pos = append(ray.Pos[:0], s.camPos...)
	ray.Dir = append(ray.Dir[:0], s.camBL...)
	ray.Dir.AddScaled(u, s.camU).AddScaled(v, s.camV).Normalize()
	ray.Min, ray.Max = s.Eps, math.Inf(1)
}

func (s *Scene) pick(ray *mesh.Ray) {
	if s.Linear {
		s.Mesh.RayPickLinear(ray)
		return
	}
	s.Mesh.RayPick(ray)
}

// Samples returns the number of samples accumulated for pixel (x, y).
func (s *Scene) Samples(x, y int) int { return int(s.samples[y*s.Width+x]) }

// Image returns the average radiance per pixel as linear RGB, row-major,
// 3 values per pixel. Pixels without samples are black.
func (s *Scene) Image() []float64 {
	out := make([]float64, len(s.sum))
	for p, n := range s.samples {
		if n == 0 {
			continue
		}
		inv := 1 / float64(n)
		for c := 0; c < 3; c++ {
			out[3*p+c] = s.sum[3*p+c] * inv
		}
	}
	return out
}

// Reset drops all accumulated samples and path statistics.
func (s *Scene) Reset() {
	clear(s.sum)
	clear(s.samples)
	if s.Stats != nil {
		s.Stats.Reset()
	}
}

func (s *Scene) maxSamples() int64 {
	n := int32(0)
	for _, k := range s.samples {
		n = max(n, k)
	}
	return int64(n)
}
