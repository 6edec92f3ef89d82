package stripe

import (
	"image/color"
)

// Color is a pixel value with named channels.
//
// Arity is 3 for opaque sources and 4 when the source carries an alpha
// channel. For arity 3 colors A is always 255 so that comparisons between
// opaque pixels never see an alpha difference.
type Color struct {
	R, G, B, A uint8
	Arity      int
}

// RGB returns an opaque arity-3 color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff, Arity: 3}
}

// RGBA returns an arity-4 color with straight (non-premultiplied) alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a, Arity: 4}
}

// Gray returns an opaque arity-3 color with all channels set to v.
func Gray(v uint8) Color {
	return RGB(v, v, v)
}

// HasAlpha reports whether the color carries a meaningful alpha channel.
func (c Color) HasAlpha() bool {
	return c.Arity == 4
}

// NRGBA converts the color to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// fromStd converts any standard color into a Color of the given arity.
func fromStd(c color.Color, arity int) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if arity == 4 {
		return RGBA(n.R, n.G, n.B, n.A)
	}
	return RGB(n.R, n.G, n.B)
}

// Column is a single pixel column, one Color per row from top to bottom.
type Column []Color

// Uniform returns a column of height h filled with c.
func Uniform(c Color, h int) Column {
	col := make(Column, h)
	for i := range col {
		col[i] = c
	}
	return col
}

// Equal reports whether two columns hold identical pixels.
func (c Column) Equal(other Column) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}
