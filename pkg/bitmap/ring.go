package bitmap

// RingSize is the number of neighbours in a pixel's ring.
const RingSize = 8

// ringOffsets lists neighbour offsets clockwise from east; north is y-1.
var ringOffsets = [RingSize][2]int{
	{1, 0},   // east
	{1, -1},  // northeast
	{0, -1},  // north
	{-1, -1}, // northwest
	{-1, 0},  // west
	{-1, 1},  // southwest
	{0, 1},   // south
	{1, 1},   // southeast
}

// RingOffset returns the (dx, dy) offset of ring index i. The index is taken
// modulo 8, so callers may rotate freely.
func RingOffset(i int) (dx, dy int) {
	o := ringOffsets[((i%RingSize)+RingSize)%RingSize]
	return o[0], o[1]
}

// Neighbor returns the position of ring neighbour i of (x, y).
func Neighbor(x, y, i int) (nx, ny int) {
	dx, dy := RingOffset(i)
	return x + dx, y + dy
}

// Ring reads the eight neighbours of (x, y) in ring order. (x, y) must not lie
// on the outermost row or column.
func (b *Bitmap) Ring(x, y int) [RingSize]bool {
	var r [RingSize]bool
	for i := range r {
		r[i] = b.At(Neighbor(x, y, i))
	}
	return r
}
