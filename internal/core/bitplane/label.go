package bitplane

import (
	"gonum.org/v1/gonum/mat"
)

// ComponentStat is the result of labeling one layer.
type ComponentStat struct {
	Components int // maximal 8-connected foreground groups
	Area       int // foreground pixel count
}

// Labels is a per-pixel component map. 0 is background; components are
// numbered from 1 in raster order of their first pixel.
type Labels struct {
	Rows, Cols int
	IDs        []int // len = Rows*Cols
	Count      int
}

// At returns the component id at (r, c).
func (l Labels) At(r, c int) int { return l.IDs[pixOffset(l.Cols, r, c)] }

// neighbours for full 2D adjacency: edges and corners
var neighbours = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// LabelImage partitions the non-zero entries of layer into connected
// components using full (8-neighbour) adjacency.
func LabelImage(layer mat.Matrix) Labels {
	rows, cols := dims(layer)
	l := Labels{Rows: rows, Cols: cols, IDs: make([]int, rows*cols)}
	if rows == 0 || cols == 0 {
		return l
	}

	fg := make([]bool, rows*cols)
	for r := range rows {
		for c := range cols {
			fg[pixOffset(cols, r, c)] = layer.At(r, c) != 0
		}
	}

	var stack []int
	for start, on := range fg {
		if !on || l.IDs[start] != 0 {
			continue
		}
		l.Count++
		id := l.Count
		l.IDs[start] = id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pr, pc := p/cols, p%cols
			for _, d := range neighbours {
				nr, nc := pr+d[0], pc+d[1]
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				n := pixOffset(cols, nr, nc)
				if !fg[n] || l.IDs[n] != 0 {
					continue
				}
				l.IDs[n] = id
				stack = append(stack, n)
			}
		}
	}
	return l
}

// Label counts the connected foreground groups of layer and its area.
// An all-zero layer yields (0, 0).
func Label(layer mat.Matrix) ComponentStat {
	l := LabelImage(layer)
	area := 0
	for _, id := range l.IDs {
		if id != 0 {
			area++
		}
	}
	return ComponentStat{Components: l.Count, Area: area}
}

// dims tolerates the zero Dense, whose Dims call is safe but whose At is not.
func dims(m mat.Matrix) (int, int) {
	if m == nil {
		return 0, 0
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return 0, 0
	}
	return m.Dims()
}
