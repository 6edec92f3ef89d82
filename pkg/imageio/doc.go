// Package imageio reads shredded images and writes reconstructed images
// and candidate traces.
//
// # Images
//
// Decoding goes through disintegration/imaging, so PNG, JPEG, GIF, TIFF and
// BMP are supported out of the box; WebP decoding is registered from
// golang.org/x/image. Any failure to open or decode is reported as an
// INPUT_LOAD error:
//
//	img, err := imageio.Open("shredded.png")
//	if errors.Is(err, errors.ErrCodeInputLoad) {
//	    // unreadable image
//	}
//
// Output images are encoded with [Encode] or written with [Save]; the
// format follows the file extension. [OutputPath] derives the default
// output name "unshredded-<name>.png" next to the input.
//
// # Traces
//
// A [Trace] is the JSON record of one reconstruction: every candidate
// (start id, total cost, sequence) plus the chosen solution. Traces are
// debugging aids and golden-test fixtures:
//
//	{
//	  "source": "shredded.png",
//	  "stripe_width": 32,
//	  "policy": "faithful",
//	  "candidates": [
//	    {"start": 0, "cost": 1234, "sequence": [0, 5, 3]}
//	  ],
//	  "solution": {"order": [3, 5, 0], "walk": [0, 5, 3], "cost": 1234, "start": 0, "policy": "faithful"}
//	}
package imageio
