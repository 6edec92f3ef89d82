package stripe

import (
	"image"
)

// PixelSource is the pixel-query capability the loader needs from a decoded
// image. Coordinates are zero-based with (0, 0) at the top-left corner.
type PixelSource interface {
	Width() int
	Height() int
	// Arity is the channel count of every Color returned by At (3 or 4).
	Arity() int
	At(x, y int) Color
}

// imageSource adapts an image.Image to PixelSource.
type imageSource struct {
	img    image.Image
	bounds image.Rectangle
	arity  int
}

// FromImage wraps img as a PixelSource.
// Images whose color model can carry transparency report arity 4; all other
// images (grayscale, YCbCr JPEGs, CMYK) report arity 3.
func FromImage(img image.Image) PixelSource {
	return &imageSource{img: img, bounds: img.Bounds(), arity: arityOf(img)}
}

func (s *imageSource) Width() int  { return s.bounds.Dx() }
func (s *imageSource) Height() int { return s.bounds.Dy() }
func (s *imageSource) Arity() int  { return s.arity }

func (s *imageSource) At(x, y int) Color {
	return fromStd(s.img.At(s.bounds.Min.X+x, s.bounds.Min.Y+y), s.arity)
}

func arityOf(img image.Image) int {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.Paletted, *image.Alpha, *image.Alpha16:
		return 4
	}
	return 3
}
