package thinning

import "github.com/matzehuels/skeletonize/pkg/bitmap"

// position is an interior pixel coordinate.
type position struct{ x, y int }

// Subiterate runs one pass of the given parity over the interior of b and
// returns how many pixels it erased. Every position is classified against
// the bitmap as it stood when the pass started; erasures are applied only
// after the scan completes.
func Subiterate(b *bitmap.Bitmap, p Parity) int {
	return subiterate(b, p, nil)
}

// subiterate reuses buf for the candidate list to avoid reallocating it on
// every pass of a run.
func subiterate(b *bitmap.Bitmap, p Parity, buf *[]position) int {
	var candidates []position
	if buf != nil {
		candidates = (*buf)[:0]
	}

	w, h := b.Size()
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if Erodable(b, x, y, p) {
				candidates = append(candidates, position{x, y})
			}
		}
	}

	for _, c := range candidates {
		b.Set(c.x, c.y, false)
	}

	if buf != nil {
		*buf = candidates
	}
	return len(candidates)
}
