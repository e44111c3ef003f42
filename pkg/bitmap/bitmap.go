package bitmap

import (
	"fmt"
	"strings"
)

// Pixel glyphs used by [FromRows] and [Bitmap.Rows].
const (
	GlyphForeground = '#'
	GlyphBackground = '.'
)

// noCopy lets go vet's copylocks check flag Bitmap values that are copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Bitmap is a fixed-size grid of foreground/background pixels.
type Bitmap struct {
	_ noCopy

	width  int
	height int
	pix    []bool
}

// New creates a width×height bitmap with every pixel set to fill.
// Negative dimensions are clamped to zero.
func New(width, height int, fill bool) *Bitmap {
	width, height = max(width, 0), max(height, 0)
	pix := make([]bool, width*height)
	if fill {
		for i := range pix {
			pix[i] = true
		}
	}
	return &Bitmap{width: width, height: height, pix: pix}
}

// NewPadded creates an all-background bitmap for a logical image of
// width×height pixels, plus the one-pixel padding border on every side.
// Logical pixel (x, y) lives at (x+1, y+1).
func NewPadded(width, height int) *Bitmap {
	return New(max(width, 0)+2, max(height, 0)+2, false)
}

// FromRows builds a padded bitmap from an ASCII picture of the logical image.
// '#' is foreground; any other byte is background. Rows shorter than the
// longest row are treated as background-filled.
func FromRows(rows ...string) *Bitmap {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	b := NewPadded(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] == GlyphForeground {
				b.Set(x+1, y+1, true)
			}
		}
	}
	return b
}

// Width returns the bitmap width, border included.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height, border included.
func (b *Bitmap) Height() int { return b.height }

// Size returns (width, height), border included.
func (b *Bitmap) Size() (int, int) { return b.width, b.height }

// LogicalSize returns the dimensions with the padding border stripped.
func (b *Bitmap) LogicalSize() (int, int) {
	return max(b.width-2, 0), max(b.height-2, 0)
}

// At reports whether (x, y) is foreground.
func (b *Bitmap) At(x, y int) bool {
	return b.pix[y*b.width+x]
}

// Set writes the pixel at (x, y).
func (b *Bitmap) Set(x, y int, v bool) {
	b.pix[y*b.width+x] = v
}

// Count returns the number of foreground pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.pix {
		if v {
			n++
		}
	}
	return n
}

// BorderIntact reports whether the outermost ring is entirely background.
func (b *Bitmap) BorderIntact() bool {
	if b.width == 0 || b.height == 0 {
		return true
	}
	for x := 0; x < b.width; x++ {
		if b.At(x, 0) || b.At(x, b.height-1) {
			return false
		}
	}
	for y := 0; y < b.height; y++ {
		if b.At(0, y) || b.At(b.width-1, y) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of b. It is the only supported way to
// duplicate a bitmap.
func (b *Bitmap) Clone() *Bitmap {
	pix := make([]bool, len(b.pix))
	copy(pix, b.pix)
	return &Bitmap{width: b.width, height: b.height, pix: pix}
}

// Equal reports whether both bitmaps have the same size and pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i, v := range b.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// Rows renders the logical image (border stripped) in the [FromRows] format.
func (b *Bitmap) Rows() []string {
	w, h := b.LogicalSize()
	rows := make([]string, h)
	var sb strings.Builder
	for y := 0; y < h; y++ {
		sb.Reset()
		for x := 0; x < w; x++ {
			if b.At(x+1, y+1) {
				sb.WriteByte(GlyphForeground)
			} else {
				sb.WriteByte(GlyphBackground)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// String implements fmt.Stringer.
func (b *Bitmap) String() string {
	return fmt.Sprintf("bitmap(%dx%d, %d foreground)", b.width, b.height, b.Count())
}
