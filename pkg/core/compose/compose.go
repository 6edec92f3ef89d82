// Package compose lays out a reconstructed stripe order as an image.
//
// The [Compositor] interface is the boundary between the core and image
// output. [Strip] is the default implementation: it crops every stripe
// from the source and pastes it at position*stripeWidth into a transparent
// canvas the size of the source.
package compose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/unshred/pkg/core/stripe"
	"github.com/matzehuels/unshred/pkg/errors"
)

// Compositor produces the final image for a placement order.
type Compositor interface {
	Compose(src image.Image, c *stripe.Collection, order []int) (*image.NRGBA, error)
}

// Strip is the default Compositor.
type Strip struct{}

// Compose places stripe order[k] at horizontal offset k*StripeWidth.
// Ids outside the collection are rejected. An order shorter than the
// collection (possible under the faithful policy) leaves the trailing
// columns transparent; repeated ids are pasted again.
func (Strip) Compose(src image.Image, c *stripe.Collection, order []int) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source image")
	}
	b := src.Bounds()
	if b.Dx() != c.Width() || b.Dy() != c.Height() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source is %dx%d, collection was loaded from %dx%d",
			b.Dx(), b.Dy(), c.Width(), c.Height())
	}
	if len(order) > c.Len() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "order has %d entries for %d stripes", len(order), c.Len())
	}

	canvas := imaging.New(c.Width(), c.Height(), color.NRGBA{})
	w := c.StripeWidth()
	for pos, id := range order {
		if id < 0 || id >= c.Len() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown stripe id %d at position %d", id, pos)
		}
		s := c.At(id)
		rect := image.Rect(b.Min.X+s.Offset(), b.Min.Y, b.Min.X+s.Offset()+w, b.Max.Y)
		canvas = imaging.Paste(canvas, imaging.Crop(src, rect), image.Pt(pos*w, 0))
	}
	return canvas, nil
}

// Shred cuts src into stripes of the given width and reassembles them in
// the given order. It is the inverse of Compose and is used to produce
// test inputs and demo images.
func Shred(src image.Image, width int, order []int) (*image.NRGBA, error) {
	c, err := stripe.Load(stripe.FromImage(src), width)
	if err != nil {
		return nil, err
	}
	if len(order) != c.Len() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "order has %d entries for %d stripes", len(order), c.Len())
	}
	return Strip{}.Compose(src, c, order)
}
