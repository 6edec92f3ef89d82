package stripe

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/unshred/pkg/errors"
)

// DefaultWidth is the stripe width used when none is configured.
const DefaultWidth = 32

// Collection is the ordered, immutable set of stripes cut from one image.
type Collection struct {
	stripes     []Stripe
	stripeWidth int
	width       int
	height      int
	arity       int
}

// Load validates the stripe width against src and extracts every stripe's
// edge columns. It returns an INVALID_CONFIG error when width is not
// positive or does not evenly divide the image width, and an INPUT_LOAD
// error when src is nil or empty. No collection is returned on error.
func Load(src PixelSource, width int) (*Collection, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInputLoad, "no pixel source")
	}
	w, h := src.Width(), src.Height()
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInputLoad, "image has no pixels (%dx%d)", w, h)
	}
	if width <= 0 {
		return nil, errors.Configuration("stripe width must be positive, got %d", width)
	}
	if w%width != 0 {
		return nil, errors.Configuration("stripe width %d does not evenly divide image width %d", width, w).
			WithHint("widths that divide %d: %s", w, joinInts(Widths(w)))
	}

	n := w / width
	stripes := make([]Stripe, n)
	for i := range stripes {
		x0 := i * width
		x1 := x0 + width - 1
		left := make(Column, h)
		right := make(Column, h)
		for y := 0; y < h; y++ {
			left[y] = src.At(x0, y)
			right[y] = src.At(x1, y)
		}
		stripes[i] = Stripe{id: i, offset: x0, width: width, left: left, right: right}
	}

	return &Collection{
		stripes:     stripes,
		stripeWidth: width,
		width:       w,
		height:      h,
		arity:       src.Arity(),
	}, nil
}

// NewCollection assembles a collection from pre-built stripes.
// Stripe ids are reassigned to their position in the argument list. All
// stripes must share one width and one height.
func NewCollection(stripes ...Stripe) (*Collection, error) {
	if len(stripes) == 0 {
		return &Collection{}, nil
	}
	width, height := stripes[0].width, stripes[0].Height()
	if width <= 0 {
		return nil, errors.Configuration("stripe width must be positive, got %d", width)
	}
	arity := 3
	out := make([]Stripe, len(stripes))
	for i, s := range stripes {
		if s.width != width {
			return nil, errors.Configuration("stripe %d has width %d, want %d", i, s.width, width)
		}
		if len(s.left) != height || len(s.right) != height {
			return nil, errors.Configuration("stripe %d has height %d/%d, want %d", i, len(s.left), len(s.right), height)
		}
		if height > 0 && s.left[0].HasAlpha() {
			arity = 4
		}
		out[i] = Stripe{id: i, offset: i * width, width: width, left: s.left, right: s.right}
	}
	return &Collection{
		stripes:     out,
		stripeWidth: width,
		width:       width * len(out),
		height:      height,
		arity:       arity,
	}, nil
}

// Len returns the number of stripes.
func (c *Collection) Len() int { return len(c.stripes) }

// StripeCount returns image width divided by stripe width.
func (c *Collection) StripeCount() int {
	if c.stripeWidth == 0 {
		return 0
	}
	return c.width / c.stripeWidth
}

// At returns the stripe with the given id.
func (c *Collection) At(id int) Stripe { return c.stripes[id] }

// Stripes returns a copy of the stripe list in id order.
func (c *Collection) Stripes() []Stripe {
	out := make([]Stripe, len(c.stripes))
	copy(out, c.stripes)
	return out
}

// StripeWidth returns the configured stripe width.
func (c *Collection) StripeWidth() int { return c.stripeWidth }

// Width returns the source image width.
func (c *Collection) Width() int { return c.width }

// Height returns the source image height, shared by every stripe.
func (c *Collection) Height() int { return c.height }

// Arity returns the channel count of the source pixels.
func (c *Collection) Arity() int { return c.arity }

// Widths returns every stripe width that evenly divides imageWidth, in
// ascending order.
func Widths(imageWidth int) []int {
	var small, large []int
	for d := 1; d*d <= imageWidth; d++ {
		if imageWidth%d != 0 {
			continue
		}
		small = append(small, d)
		if q := imageWidth / d; q != d {
			large = append(large, q)
		}
	}
	slices.Reverse(large)
	return append(small, large...)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
