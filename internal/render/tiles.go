package render

import (
	"context"
	"image"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukaszgryglicki/ntrace/internal/mesh"
)

// Progress receives the number of pixels finished by each tile.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

// RenderOptions control one Render call. Zero values select defaults.
type RenderOptions struct {
	Fast     bool // one centred sample per pixel, colour of the first hit
	Workers  int
	TileSize int
	Seed     int64
	Progress Progress
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.TileSize <= 0 {
		o.TileSize = DefaultTileSize
	}
	return o
}

// tileGrid splits a width x height image into square tiles, row by row.
func tileGrid(width, height, size int) []image.Rectangle {
	tiles := make([]image.Rectangle, 0, ((width+size-1)/size)*((height+size-1)/size))
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			tiles = append(tiles, image.Rect(x, y, min(x+size, width), min(y+size, height)))
		}
	}
	return tiles
}

// Render shoots RaysPerPixel jittered samples through every pixel and adds
// them to the accumulated radiance, returning the averaged image (see Image).
// In fast mode the accumulator is untouched and the returned buffer holds the
// colour of the first face seen through each pixel centre.
//
// Tiles run in parallel, each with its own random source derived from the
// seed, the tile index and the largest per-pixel sample count accumulated
// so far, so a render is reproducible regardless of scheduling and every
// pass over the same accumulator, resumed or not, draws new samples. When ctx is cancelled the pending
// tiles are skipped, finished tiles keep their samples and the context error
// is returned together with the partial image.
func (s *Scene) Render(ctx context.Context, opt RenderOptions) ([]float64, error) {
	opt = opt.withDefaults()
	if !s.Linear {
		s.Mesh.BuildBVH()
	}
	var fast []float64
	if opt.Fast {
		fast = make([]float64, 3*s.Width*s.Height)
	}
	pass := s.maxSamples()
	tiles := tileGrid(s.Width, s.Height, opt.TileSize)
	slog.Debug("render start", "tiles", len(tiles), "workers", opt.Workers, "pass", pass, "fast", opt.Fast)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Workers)
	for i, tile := range tiles {
		i, tile := i, tile // per-iteration copy (go < 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if opt.Fast {
				s.renderFast(tile, fast)
			} else {
				seed := opt.Seed ^ int64(uint64(i)*seedMix) ^ int64(uint64(pass+1)*seedMix<<1)
				s.renderTile(tile, rand.New(rand.NewSource(seed)))
			}
			if opt.Progress != nil {
				return opt.Progress.Add(tile.Dx() * tile.Dy())
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	slog.Debug("render done", "elapsed", time.Since(start), "err", err)
	if opt.Fast {
		return fast, err
	}
	return s.Image(), err
}

func (s *Scene) renderTile(r image.Rectangle, rng *rand.Rand) {
	rpp := max(s.RaysPerPixel, 1)
	ray := &mesh.Ray{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			var rgb mesh.RGB
			for k := 0; k < rpp; k++ {
				s.primary(ray, float64(x)+rng.Float64(), float64(y)+rng.Float64())
				s.Raytrace(ray, rng, &rgb)
			}
			p := y*s.Width + x
			s.sum[3*p] += rgb.R
			s.sum[3*p+1] += rgb.G
			s.sum[3*p+2] += rgb.B
			s.samples[p] += int32(rpp)
		}
	}
}

func (s *Scene) renderFast(r image.Rectangle, buf []float64) {
	ray := &mesh.Ray{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.primary(ray, float64(x)+0.5, float64(y)+0.5)
			s.pick(ray)
			if ray.Material == nil || math.IsInf(ray.Max, 1) {
				continue
			}
			p := 3 * (y*s.Width + x)
			c := ray.Material.Color
			buf[p], buf[p+1], buf[p+2] = c.R, c.G, c.B
		}
	}
}
