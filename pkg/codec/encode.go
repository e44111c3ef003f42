package codec

import (
	"bufio"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/errors"
)

// Palette is the two-colour palette used for encoded output:
// index 0 is background (white), index 1 is foreground (black).
var Palette = color.Palette{color.White, color.Black}

// ToImage converts b to a paletted image with the padding border stripped.
func ToImage(b *bitmap.Bitmap) *image.Paletted {
	w, h := b.LogicalSize()
	img := image.NewPaletted(image.Rect(0, 0, w, h), Palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if b.At(x+1, y+1) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// Encode writes b to path in the format implied by its extension.
func Encode(path string, b *bitmap.Bitmap) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	err = writeAtomic(path, func(w io.Writer) error {
		return Write(w, b, format)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "%s was not properly saved", path)
	}
	return nil
}

// WriteFile atomically writes already-encoded image bytes to path.
func WriteFile(path string, data []byte) error {
	err := writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "%s was not properly saved", path)
	}
	return nil
}

// writeAtomic streams fn's output to a temporary file next to path and
// renames it into place once everything has been flushed.
func writeAtomic(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".skeletonize-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	w := bufio.NewWriter(tmp)
	if err := fn(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Write encodes b to w in the given format.
func Write(w io.Writer, b *bitmap.Bitmap, format Format) error {
	if lw, lh := b.LogicalSize(); lw == 0 || lh == 0 {
		return errors.New(errors.ErrCodeEncode, "cannot encode an empty %dx%d image", lw, lh)
	}

	img := ToImage(b)
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatGIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: len(Palette)})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode %s", format)
	}
	return nil
}
