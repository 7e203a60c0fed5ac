package ntrace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

// setFlags sets the package switches for one test and restores them after.
func setFlags(t *testing.T, fast, neverBVH, resume bool) {
	t.Helper()
	oldFast, oldNever, oldResume, oldWorkers := Fast, NeverBVH, Resume, Workers
	Fast, NeverBVH, Resume, Workers = fast, neverBVH, resume, 2
	t.Cleanup(func() {
		Fast, NeverBVH, Resume, Workers = oldFast, oldNever, oldResume, oldWorkers
	})
}

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	doc := fmt.Sprintf(`
width: 12
height: 8
raysPerPixel: 2
output:
  path: %s
  state: %s
materials:
  lamp: {color: [1, 1, 1], luminosity: 1, reflectProb: 0, absorbProb: 0}
objects:
  - cube: {sides: [10, 10, 10]}
    material: lamp
    transform: {offset: [0, 0, -8]}
`, filepath.Join(dir, "img", "out.bmp"), filepath.Join(dir, "img", "out.state"))
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readBMP(t *testing.T, path string) (r, g, b uint32) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 8 {
		t.Fatalf("bounds %v", img.Bounds())
	}
	r, g, b, _ = img.At(6, 4).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestRun_RendersAndSaves(t *testing.T) {
	for _, never := range []bool{false, true} {
		setFlags(t, false, never, false)
		dir := t.TempDir()
		if err := Run(context.Background(), writeScene(t, dir)); err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if r, g, b := readBMP(t, filepath.Join(dir, "img", "out.bmp")); r != 255 || g != 255 || b != 255 {
			t.Fatalf("neverBVH=%v: centre pixel %d,%d,%d", never, r, g, b)
		}
		st, err := os.Stat(filepath.Join(dir, "img", "out.state"))
		if err != nil {
			t.Fatal(err)
		}
		if st.Size() != 8+28*12*8 {
			t.Fatalf("state size %d", st.Size())
		}
	}
}

func TestRun_FastAndResume(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScene(t, dir)

	setFlags(t, true, false, false)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("fast Run error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "img", "out.state")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("fast preview must not write state: %v", err)
	}

	setFlags(t, false, false, true)
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("resume without a state file must fail")
	}
	setFlags(t, false, false, false)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	setFlags(t, false, false, true)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("resume Run error: %v", err)
	}
}

func TestRun_Interrupted(t *testing.T) {
	setFlags(t, false, false, false)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, writeScene(t, dir))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "img", "out.bmp")); err != nil {
		t.Fatalf("partial image not saved: %v", err)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	setFlags(t, false, false, false)
	dir := t.TempDir()
	if err := Run(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("objects:\n  - instance: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), bad); err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Fatalf("build errors should name the config: %v", err)
	}
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(old)

	p := newLogProgress(100)
	for i := 0; i < 20; i++ {
		if err := p.Add(5); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(buf.String(), "msg=progress"); n != 10 {
		t.Fatalf("%d progress lines:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "percent=100") {
		t.Fatalf("missing final line:\n%s", buf.String())
	}
}
