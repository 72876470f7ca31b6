package fitsimage

import (
	"math"

	"maskstat/internal/core/bitplane"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/services/maskstat/domain"

	"github.com/astrogo/fitsio"
)

// decodePixels widens an integer image HDU into a bitmask image.
// NAXIS1 is the column count and NAXIS2 the row count.
func decodePixels(img fitsio.Image) (domain.Image, error) {
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return domain.Image{}, perr.Loadf("want a 2-D image, got %d axes", len(axes))
	}
	cols, rows := axes[0], axes[1]
	out := bitplane.NewImage(rows, cols)

	zero, err := offset(hdr)
	if err != nil {
		return domain.Image{}, err
	}

	switch hdr.Bitpix() {
	case 8:
		err = widen[uint8](img, zero, out.Pix)
	case 16:
		err = widen[int16](img, zero, out.Pix)
	case 32:
		err = widen[int32](img, zero, out.Pix)
	case 64:
		if zero == 1<<63 {
			return out, unsigned64(img, out.Pix)
		}
		err = widen[int64](img, zero, out.Pix)
	default:
		return domain.Image{}, perr.Loadf("unsupported BITPIX %d, want an integer image", hdr.Bitpix())
	}
	return out, err
}

type integer interface {
	uint8 | int16 | int32 | int64
}

func widen[T integer](img fitsio.Image, zero float64, dst []uint64) error {
	if zero >= 1<<63 {
		return perr.Loadf("BZERO %v out of range for this BITPIX", zero)
	}
	buf := make([]T, len(dst))
	if err := img.Read(&buf); err != nil {
		return perr.Wrap(err, perr.ErrorCodeLoad, "read pixels")
	}
	z := int64(zero)
	for i, x := range buf {
		v := int64(x) + z
		if v < 0 {
			return perr.Loadf("negative pixel value %d at offset %d", v, i)
		}
		dst[i] = uint64(v)
	}
	return nil
}

// unsigned64 handles BITPIX 64 stored with BZERO = 2^63
func unsigned64(img fitsio.Image, dst []uint64) error {
	buf := make([]int64, len(dst))
	if err := img.Read(&buf); err != nil {
		return perr.Wrap(err, perr.ErrorCodeLoad, "read pixels")
	}
	for i, x := range buf {
		dst[i] = uint64(x) ^ (1 << 63)
	}
	return nil
}

// offset returns BZERO. Scaled images (BSCALE != 1) or fractional offsets
// cannot hold bit flags.
func offset(hdr *fitsio.Header) (float64, error) {
	if c := hdr.Get("BSCALE"); c != nil {
		if s, ok := number(c.Value); !ok || s != 1 {
			return 0, perr.Loadf("BSCALE %v is not supported for bitmask images", c.Value)
		}
	}
	c := hdr.Get("BZERO")
	if c == nil {
		return 0, nil
	}
	z, ok := number(c.Value)
	if !ok || z != math.Trunc(z) || math.Abs(z) > 1<<63 {
		return 0, perr.Loadf("BZERO %v is not an integer offset", c.Value)
	}
	return z, nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
