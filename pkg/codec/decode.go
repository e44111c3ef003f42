package codec

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/errors"
)

// Options configures decoding.
type Options struct {
	// Strict rejects pixels that are neither pure black nor pure white.
	Strict bool

	// MaxPixels rejects images whose header declares more than this many
	// pixels, before any pixel data is decoded. Zero means no limit.
	MaxPixels int64
}

// Decode loads the image at path as a padded bitmap.
func Decode(path string, opts Options) (*bitmap.Bitmap, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(path, data, opts)
}

// ReadFile reads the raw bytes of the image at path. Errors name the path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "%s could not be opened", path)
	}
	return data, nil
}

// DecodeBytes decodes data previously read from path. The path only
// appears in error messages.
func DecodeBytes(path string, data []byte, opts Options) (*bitmap.Bitmap, error) {
	b, _, err := Read(bytes.NewReader(data), opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s was not properly loaded", path)
	}
	return b, nil
}

// Read decodes an image from r and returns the padded bitmap along with the
// name of the detected format.
func Read(r io.Reader, opts Options) (*bitmap.Bitmap, string, error) {
	if opts.MaxPixels > 0 {
		var header bytes.Buffer
		cfg, format, err := image.DecodeConfig(io.TeeReader(r, &header))
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "unrecognised or corrupt image")
		}
		if n := int64(cfg.Width) * int64(cfg.Height); n > opts.MaxPixels {
			return nil, format, errors.New(errors.ErrCodeTooLarge,
				"image is %d×%d (%d pixels, limit %d)", cfg.Width, cfg.Height, n, opts.MaxPixels)
		}
		r = io.MultiReader(&header, r)
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "unrecognised or corrupt image")
	}
	b, err := FromImage(img, opts)
	if err != nil {
		return nil, format, err
	}
	return b, format, nil
}

// FromImage converts img to a padded bitmap. Logical pixel (x, y), relative to
// the image bounds, lands at (x+1, y+1).
func FromImage(img image.Image, opts Options) (*bitmap.Bitmap, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := bitmap.NewPadded(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch {
			case isBlack(c):
				b.Set(x+1, y+1, true)
			case opts.Strict && !isWhite(c):
				return nil, errors.New(errors.ErrCodeNonBinary, "non black and white pixel at (%d, %d)", x, y)
			}
		}
	}
	return b, nil
}

func isBlack(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r == 0 && g == 0 && b == 0 && a == 0xffff
}

func isWhite(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}
