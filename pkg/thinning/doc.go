// Package thinning reduces a padded binary bitmap to its topological skeleton.
//
// # Overview
//
// Thinning repeatedly peels boundary pixels off foreground shapes until only
// a one-pixel-wide curve set remains. The curves keep the connectivity and the
// endpoints of the original shapes. The implementation is the parallel,
// two-subiteration scheme: every pass classifies the whole interior against a
// frozen snapshot and only then erases, so the result does not depend on scan
// order.
//
// # Removability Test
//
// [Erodable] reads the pixel's eight-neighbour ring x0..x7 (clockwise from
// east, see package bitmap) and accepts the pixel only when three conditions
// hold:
//
//   - G1: Hilditch's crossing number Xh equals 1, where
//     Xh = Σ (¬x[2k]) ∧ (x[2k+1] ∨ x[2k+2]) for k = 0..3.
//   - G2: 2 ≤ min(N1, N2) ≤ 3, where N1 and N2 count occupied neighbour
//     pairs on the two interleaved pairings of the ring.
//   - G3: ((x[1+r] ∨ x[2+r] ∨ ¬x[7-r]) ∧ x[r]) = 0, with r = 0 in the first
//     subiteration and r = 4 (a 180° rotation) in the second.
//
// Alternating r between subiterations balances the erosion so that no
// direction is eaten faster than its opposite.
//
// # Rounds
//
// [Subiterate] runs one pass at a fixed [Parity]. An [Engine] round is a
// [First] pass followed by a [Second] pass; [Engine.Run] repeats rounds until
// one erases nothing. The final, unproductive round is counted, so an image
// that is already a skeleton reports one round.
//
//	res := thinning.New().Run(b)
//	fmt.Println(res.Rounds, res.Elapsed)
//
// The core never fails and never blocks: given a bitmap with an intact
// padding border it always converges, because every productive round strictly
// reduces the foreground count.
package thinning
