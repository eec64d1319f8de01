package frame

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
)

// Load decodes a PNG image from disk without any format conversion:
// grayscale files come back as *image.Gray / *image.Gray16.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// Rescale resizes img by a uniform factor. Scale 1 returns img untouched.
func Rescale(img image.Image, scale float64) image.Image {
	if scale == 1 {
		return img
	}
	bounds := img.Bounds()
	width := int(float64(bounds.Dx()) * scale)
	height := int(float64(bounds.Dy()) * scale)
	return imaging.Resize(img, width, height, imaging.Linear)
}

// Flatten returns img as 8-bit grayscale, converting only when needed.
// The wire codec ships single-channel pixel rows.
func Flatten(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
