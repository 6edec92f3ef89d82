package imageio

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/unshred/pkg/errors"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

var formats = map[string]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatJPEG: imaging.JPEG,
	"jpg":      imaging.JPEG,
	FormatGIF:  imaging.GIF,
	FormatTIFF: imaging.TIFF,
	"tif":      imaging.TIFF,
	FormatBMP:  imaging.BMP,
}

// ValidateFormat checks that an output format is supported.
func ValidateFormat(format string) error {
	if _, ok := formats[strings.ToLower(format)]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpeg, gif, tiff, bmp)", format)
	}
	return nil
}

// ContentType returns the MIME type of an output format.
func ContentType(format string) string {
	switch formats[strings.ToLower(format)] {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	f, ok := formats[strings.ToLower(format)]
	if !ok {
		return ValidateFormat(format)
	}
	if err := imaging.Encode(w, img, f); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// Save writes img to path, choosing the format from the file extension.
func Save(img image.Image, path string) error {
	if err := ValidateFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// OutputPath returns the default output path for input:
// "unshredded-<name>.<format>" in the input's directory.
func OutputPath(input, format string) string {
	if format == "" {
		format = FormatPNG
	}
	dir, base := filepath.Split(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "unshredded-"+name+"."+format)
}

// WriteTrace encodes t as indented JSON and writes it to w.
func WriteTrace(t *Trace, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTrace writes t to a JSON file at path.
func ExportTrace(t *Trace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTrace(t, f)
}
