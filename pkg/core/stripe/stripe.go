package stripe

// Stripe is one fixed-width vertical slice of the source image.
// Stripes are immutable; the accessors return the loaded values.
type Stripe struct {
	id     int
	offset int
	width  int
	left   Column
	right  Column
}

// New creates a stripe from explicit edge columns.
// It is used to build collections that do not come from an image, such as
// fixtures and replays; offset is derived from the id and width.
func New(id, width int, left, right Column) Stripe {
	return Stripe{id: id, offset: id * width, width: width, left: left, right: right}
}

// ID returns the stripe identity, which is its position in the collection.
func (s Stripe) ID() int { return s.id }

// Offset returns the x coordinate of the stripe's first column in the source image.
func (s Stripe) Offset() int { return s.offset }

// Width returns the stripe width in pixels.
func (s Stripe) Width() int { return s.width }

// Height returns the stripe height in pixels.
func (s Stripe) Height() int { return len(s.left) }

// LeftEdge returns the pixel column at the stripe's left boundary.
func (s Stripe) LeftEdge() Column { return s.left }

// RightEdge returns the pixel column at the stripe's right boundary.
func (s Stripe) RightEdge() Column { return s.right }
