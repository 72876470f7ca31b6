package bitplane

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func dense(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for r, row := range rows {
		m.SetRow(r, row)
	}
	return m
}

func TestLabel_Cases(t *testing.T) {
	cases := []struct {
		name  string
		layer [][]float64
		want  ComponentStat
	}{
		{"all zero", [][]float64{{0, 0}, {0, 0}}, ComponentStat{0, 0}},
		{"single pixel", [][]float64{{0, 0, 0}, {0, 4, 0}}, ComponentStat{1, 1}},
		{"diagonal pair", [][]float64{{2, 0}, {0, 2}}, ComponentStat{1, 2}},
		{"anti diagonal pair", [][]float64{{0, 2}, {2, 0}}, ComponentStat{1, 2}},
		{"separated", [][]float64{{1, 0, 1}, {0, 0, 0}, {1, 0, 1}}, ComponentStat{4, 4}},
		{"ring", [][]float64{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}}, ComponentStat{1, 8}},
		{"u shape", [][]float64{{1, 0, 1}, {1, 0, 1}, {1, 1, 1}}, ComponentStat{1, 7}},
		{"two blobs", [][]float64{{8, 8, 0, 0}, {8, 8, 0, 8}, {0, 0, 0, 8}}, ComponentStat{2, 6}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Label(dense(c.layer))
			if got != c.want {
				t.Fatalf("Label = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestLabel_AreaMatchesNonZero(t *testing.T) {
	img := sampleImage()
	s := Synthesize(img, NewUniverse(img.Distinct()))
	for i := range s.Len() {
		l := s.Layer(i)
		nz := 0
		for _, v := range l.RawMatrix().Data {
			if v != 0 {
				nz++
			}
		}
		if got := Label(l).Area; got != nz {
			t.Fatalf("layer %d area = %d, want %d", i, got, nz)
		}
	}
}

func TestLabelImage_IDsInRasterOrder(t *testing.T) {
	l := LabelImage(dense([][]float64{
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 1},
	}))
	if l.Count != 3 {
		t.Fatalf("Count = %d, want 3", l.Count)
	}
	if l.At(0, 1) != 1 || l.At(1, 3) != 2 || l.At(2, 3) != 2 || l.At(2, 0) != 3 {
		t.Fatalf("unexpected ids: %v", l.IDs)
	}
	if l.At(0, 0) != 0 {
		t.Fatalf("background labeled: %v", l.IDs)
	}
}

func TestLabel_EmptyMatrix(t *testing.T) {
	if got := Label(&mat.Dense{}); got != (ComponentStat{}) {
		t.Fatalf("Label(empty) = %+v", got)
	}
}
