package bitplane

import "slices"

// Image is a 2D array of pixel bitfields stored row-major.
type Image struct {
	Rows, Cols int
	Pix        []uint64 // len = Rows*Cols
}

// NewImage allocates a zeroed rows x cols image.
func NewImage(rows, cols int) Image {
	return Image{Rows: rows, Cols: cols, Pix: make([]uint64, rows*cols)}
}

// FromRows builds an image from equal-length rows. It panics on ragged input.
func FromRows(rows [][]uint64) Image {
	if len(rows) == 0 {
		return Image{}
	}
	img := NewImage(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != img.Cols {
			panic("bitplane: ragged rows")
		}
		copy(img.Pix[r*img.Cols:], row)
	}
	return img
}

func pixOffset(cols, r, c int) int { return r*cols + c }

// At returns the pixel at row r, column c.
func (im Image) At(r, c int) uint64 { return im.Pix[pixOffset(im.Cols, r, c)] }

// Set stores v at row r, column c.
func (im Image) Set(r, c int, v uint64) { im.Pix[pixOffset(im.Cols, r, c)] = v }

// Empty reports whether the image has no pixels.
func (im Image) Empty() bool { return im.Rows == 0 || im.Cols == 0 }

// Distinct returns the sorted unique pixel values.
func (im Image) Distinct() []uint64 {
	seen := make(map[uint64]struct{})
	for _, v := range im.Pix {
		seen[v] = struct{}{}
	}
	out := make([]uint64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
