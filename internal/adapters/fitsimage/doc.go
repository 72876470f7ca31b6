// Package fitsimage loads integer bitmask images and their headers from FITS files
//
// Design choices:
// - Decoding is delegated to astrogo/fitsio; this package only picks HDUs and widens pixels.
// - Pixel data and header may come from different HDUs (defaults: HDU 2 for data, SCI for header).
// - A ".gz" suffix is decompressed on the fly.
// - Every failure is an ErrorCodeLoad so the runner can skip the image.
package fitsimage
