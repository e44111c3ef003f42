// Package bitmap provides the padded binary raster that the thinning engine
// erodes in place.
//
// # Overview
//
// A [Bitmap] is a flat grid of boolean pixels: true is foreground (black),
// false is background (white). Pixels are stored row-major, so (x, y) lives at
// index y*width + x.
//
// # Padding Border
//
// Bitmaps produced by [NewPadded], [FromRows] and the codec package carry a
// one-pixel background frame around the logical image. Every pixel that is
// ever classified lies strictly inside that frame, so reading its eight
// neighbours never leaves the grid and "just outside the image" reads as
// background without any bounds checks.
//
// # Ownership
//
// A bitmap is a move-only resource. It embeds a noCopy marker so that
// go vet's copylocks check reports accidental value copies, and every API in
// this module passes *Bitmap. The pointer is the ownership token: whoever holds
// it may mutate it, and handing it on (to the engine, to a result, to the
// encoder) transfers ownership. [Bitmap.Clone] is the only way to duplicate the
// pixel data.
//
// # Neighbour Ring
//
// [RingOffset] maps ring indices 0..7 to offsets clockwise from east with y
// growing downward:
//
//	3 2 1
//	4 p 0
//	5 6 7
//
// The ordering is load-bearing for the thinning conditions and is not
// interchangeable with any other "equivalent" enumeration.
package bitmap
