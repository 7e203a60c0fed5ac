package render

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveState writes the accumulated samples so an interrupted render can be
// resumed: int32 width and height, then one int32 sample count per pixel
// and three float64 radiance sums per pixel, all little-endian.
func (s *Scene) SaveState(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range []any{int32(s.Width), int32(s.Height), s.samples, s.sum} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write state %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// LoadState replaces the accumulated samples with the ones saved by
// SaveState. The saved image size must match the scene.
func (s *Scene) LoadState(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var w, h int32
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return fmt.Errorf("read state %s: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("read state %s: %w", path, err)
	}
	if int(w) != s.Width || int(h) != s.Height {
		return fmt.Errorf("%w: %s is %dx%d, scene is %dx%d", ErrStateMismatch, path, w, h, s.Width, s.Height)
	}
	samples := make([]int32, len(s.samples))
	sum := make([]float64, len(s.sum))
	if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("read state %s: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, sum); err != nil {
		return fmt.Errorf("read state %s: %w", path, err)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return fmt.Errorf("%w: %s has trailing data", ErrStateMismatch, path)
	}
	s.samples, s.sum = samples, sum
	return nil
}
