package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// gammaScale maps linear radiance to [0, top] with Gamma, clamping at top.
func gammaScale(x, top float64) float64 {
	if !(x > 0) {
		return 0
	}
	return math.Min((top+1)*math.Pow(x, Gamma), top)
}

// ToRGBA quantizes a linear RGB buffer of w x h pixels to 8 bits per
// channel after gamma correction. Row 0 is the top of the image.
func ToRGBA(buf []float64, w, h int) (*image.RGBA, error) {
	if len(buf) != 3*w*h {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrBufferSize, len(buf), w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := 3 * (y*w + x)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(gammaScale(buf[p], 255)),
				G: uint8(gammaScale(buf[p+1], 255)),
				B: uint8(gammaScale(buf[p+2], 255)),
				A: 0xff,
			})
		}
	}
	return img, nil
}

// ToRGBA64 is ToRGBA with 16 bits per channel.
func ToRGBA64(buf []float64, w, h int) (*image.NRGBA64, error) {
	if len(buf) != 3*w*h {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrBufferSize, len(buf), w, h)
	}
	img := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := 3 * (y*w + x)
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(gammaScale(buf[p], 65535)),
				G: uint16(gammaScale(buf[p+1], 65535)),
				B: uint16(gammaScale(buf[p+2], 65535)),
				A: 0xffff,
			})
		}
	}
	return img, nil
}

// SaveBMP writes a 24-bit bitmap.
func SaveBMP(path string, buf []float64, w, h int) error {
	img, err := ToRGBA(buf, w, h)
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error { return bmp.Encode(f, img) })
}

// SavePNG16 writes a lossless PNG with 16 bits per channel.
func SavePNG16(path string, buf []float64, w, h int) error {
	img, err := ToRGBA64(buf, w, h)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return writeFile(path, func(f *os.File) error { return enc.Encode(f, img) })
}

// SaveImage picks the encoder from the path extension (.bmp or .png).
func SaveImage(path string, buf []float64, w, h int) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bmp":
		return SaveBMP(path, buf, w, h)
	case ".png":
		return SavePNG16(path, buf, w, h)
	default:
		return fmt.Errorf("%w: %q", ErrImageFormat, ext)
	}
}

func writeFile(path string, encode func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
