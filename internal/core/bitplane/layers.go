package bitplane

import (
	"gonum.org/v1/gonum/mat"
)

// Stack holds one layer per universe bit, all shaped like the source image.
// Layer i carries Universe.At(i) wherever that bit is set in the source pixel
// and 0 elsewhere.
type Stack struct {
	Universe   Universe
	Rows, Cols int
	layers     []*mat.Dense
}

// Synthesize builds the layer stack for img over u.
// Pixels are grouped by distinct value; each value is decomposed once and its
// bits are written to every position holding that value.
func Synthesize(img Image, u Universe) Stack {
	s := Stack{Universe: u, Rows: img.Rows, Cols: img.Cols, layers: make([]*mat.Dense, u.Len())}
	for i := range s.layers {
		s.layers[i] = newLayer(img.Rows, img.Cols)
	}
	if img.Empty() || u.Len() == 0 {
		return s
	}

	positions := make(map[uint64][]int)
	for off, v := range img.Pix {
		if v == 0 {
			continue
		}
		positions[v] = append(positions[v], off)
	}

	for val, offs := range positions {
		for _, b := range Decompose(val) {
			idx := u.Index(b)
			if idx < 0 {
				// universe was built from another image
				continue
			}
			raw := s.layers[idx].RawMatrix()
			for _, off := range offs {
				r, c := off/img.Cols, off%img.Cols
				raw.Data[r*raw.Stride+c] = float64(b)
			}
		}
	}
	return s
}

// mat.NewDense rejects zero dimensions; the zero Dense stands in for an empty plane.
func newLayer(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

// Len is the number of layers.
func (s Stack) Len() int { return len(s.layers) }

// Layer returns layer i. The returned matrix is shared with the stack.
func (s Stack) Layer(i int) *mat.Dense { return s.layers[i] }

// At returns the stored value at (r, c) in layer i.
func (s Stack) At(r, c, i int) uint64 { return uint64(s.layers[i].At(r, c)) }

// Sum adds every layer pixel-wise in uint64. For a stack built by Synthesize
// this reproduces the source image values, including bits above 2^53 that a
// float64 accumulator would round away.
func (s Stack) Sum() Image {
	out := NewImage(s.Rows, s.Cols)
	for r := range s.Rows {
		for c := range s.Cols {
			var v uint64
			for i := range s.layers {
				v += s.At(r, c, i)
			}
			out.Set(r, c, v)
		}
	}
	return out
}
