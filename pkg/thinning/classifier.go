package thinning

import "github.com/matzehuels/skeletonize/pkg/bitmap"

// Parity selects which half of an erosion round a pass belongs to.
type Parity int

const (
	// First is the subiteration evaluated with the unrotated ring.
	First Parity = iota
	// Second evaluates the direction check with the ring rotated by 180°.
	Second
)

// Rotation returns the ring index offset used by the direction check.
func (p Parity) Rotation() int {
	if p == Second {
		return 4
	}
	return 0
}

func (p Parity) String() string {
	if p == Second {
		return "second"
	}
	return "first"
}

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}

// at reads ring index i modulo the ring size.
func at(ring [bitmap.RingSize]bool, i int) bool {
	return ring[i%bitmap.RingSize]
}

// CrossingNumber returns Hilditch's crossing number Xh for a neighbour ring.
func CrossingNumber(ring [bitmap.RingSize]bool) int {
	xh := 0
	for k := 0; k < 4; k++ {
		if !at(ring, 2*k) && (at(ring, 2*k+1) || at(ring, 2*k+2)) {
			xh++
		}
	}
	return xh
}

// Connectivity returns the neighbour pair counts N1 and N2.
func Connectivity(ring [bitmap.RingSize]bool) (n1, n2 int) {
	for k := 0; k < 4; k++ {
		n1 += bit(at(ring, 2*k+1) || at(ring, 2*k))
		n2 += bit(at(ring, 2*k+2) || at(ring, 2*k+1))
	}
	return n1, n2
}

// directional reports whether G3 (or G3' for the second parity) holds.
func directional(ring [bitmap.RingSize]bool, p Parity) bool {
	r := p.Rotation()
	blocked := (at(ring, 1+r) || at(ring, 2+r) || !at(ring, 7-r)) && at(ring, r)
	return !blocked
}

// Erodable reports whether the pixel at (x, y) may be erased in a pass of
// the given parity. (x, y) must be an interior position of a padded bitmap.
func Erodable(b *bitmap.Bitmap, x, y int, p Parity) bool {
	if !b.At(x, y) {
		return false
	}

	ring := b.Ring(x, y)

	// G1
	if CrossingNumber(ring) != 1 {
		return false
	}

	// G2
	n1, n2 := Connectivity(ring)
	if m := min(n1, n2); m < 2 || m > 3 {
		return false
	}

	// G3 / G3'
	return directional(ring, p)
}
