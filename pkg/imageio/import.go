package imageio

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/unshred/pkg/errors"
)

// Decode reads an image from r.
// EXIF orientation is ignored so pixels are used exactly as stored.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.InputLoad(err, "decode image")
	}
	return img, nil
}

// Open reads and decodes the image file at path.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InputLoad(err, "open %s", path)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.InputLoad(err, "decode %s", path)
	}
	return img, nil
}

// ReadTrace decodes a JSON trace from r.
// ReadTrace does not close r.
func ReadTrace(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &t, nil
}

// ImportTrace reads a JSON trace file at path.
func ImportTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTrace(f)
}
