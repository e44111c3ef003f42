// Package codec converts between image files and padded binary bitmaps.
//
// # Decoding
//
// [Decode] and [Read] accept any format registered with the standard image
// package: PNG, GIF and JPEG from the standard library, plus BMP, TIFF and
// WebP from golang.org/x/image. Pure black pixels become foreground and every
// other pixel becomes background. The resulting bitmap always carries the
// one-pixel background border the thinning engine relies on, including for
// 1×1 and zero-width images.
//
// With [Options.Strict] set, any pixel that is neither pure black nor pure
// white is rejected with an ErrCodeNonBinary error naming the first offending
// coordinate, since thinning assumes a strictly binary image.
//
// # Encoding
//
// [Encode] strips the border and writes a two-colour paletted image in the
// format implied by the output extension (.png, .gif, .bmp, .tif, .tiff).
// Output is written to a temporary file and renamed into place, so a failed
// encode never leaves a partial image behind.
package codec
