package ntrace

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/lukaszgryglicki/ntrace/internal/render"
)

// newProgress returns a progress bar on a terminal and a log reporter
// otherwise. finish must be called once rendering stops.
func newProgress(pixels int) (p render.Progress, finish func()) {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.Default(int64(pixels), "rendering")
		return bar, func() { _ = bar.Finish() }
	}
	return newLogProgress(pixels), func() {}
}

// logProgress logs every 10% of finished pixels.
type logProgress struct {
	total int64
	step  int64
	done  atomic.Int64
}

func newLogProgress(total int) *logProgress {
	return &logProgress{total: int64(total), step: max(int64(total)/10, 1)}
}

func (p *logProgress) Add(n int) error {
	after := p.done.Add(int64(n))
	before := after - int64(n)
	if before/p.step != after/p.step {
		slog.Info("progress", "pixels", after, "percent", float64(after*10000/p.total)/100)
	}
	return nil
}
