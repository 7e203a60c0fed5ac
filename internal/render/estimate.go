package render

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/lukaszgryglicki/ntrace/internal/mesh"
)

// EstimateCoverage returns the fraction of trials primary rays, aimed at
// random image points, that hit any face. A scene scoring 0 renders black
// unless the camera sits inside an emitting medium.
func (s *Scene) EstimateCoverage(trials int) float64 {
	if trials <= 0 || s.Mesh.Empty() {
		return 0
	}
	if !s.Linear {
		s.Mesh.BuildBVH()
	}
	workers := min(max(runtime.NumCPU(), 1), trials)
	per, rem := trials/workers, trials%workers

	var wg sync.WaitGroup
	hitsCh := make(chan int, workers)
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy (go < 1.22 loop semantics)
		n := per
		if w < rem {
			n++
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			seed := time.Now().UnixNano() ^ int64(uint64(w)*seedMix)
			rng := rand.New(rand.NewSource(seed))
			ray := &mesh.Ray{}
			hits := 0
			for i := 0; i < n; i++ {
				s.primary(ray, rng.Float64()*float64(s.Width), rng.Float64()*float64(s.Height))
				s.pick(ray)
				if ray.Hit() {
					hits++
				}
			}
			hitsCh <- hits
		}()
	}
	wg.Wait()
	close(hitsCh)

	total := 0
	for h := range hitsCh {
		total += h
	}
	return float64(total) / float64(trials)
}
