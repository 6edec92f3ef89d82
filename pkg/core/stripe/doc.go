// Package stripe holds the data model of a shredded image: fixed-arity
// colors, pixel columns, stripes and the stripe collection.
//
// A [Collection] is built once by [Load] from a [PixelSource] and never
// mutated afterwards. Each [Stripe] keeps only what the scoring stage needs:
// its left and right edge columns plus its geometry.
//
// # Loading
//
// The configured stripe width must evenly divide the image width. When it
// does not, [Load] fails with an INVALID_CONFIG error before any stripe is
// created:
//
//	src := stripe.FromImage(img)
//	c, err := stripe.Load(src, 32)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // width does not divide the image
//	}
//	fmt.Println(c.StripeCount())
package stripe
