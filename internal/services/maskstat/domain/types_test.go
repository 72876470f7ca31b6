package domain

import (
	"slices"
	"testing"
)

func TestResultTable_Bands(t *testing.T) {
	tb := ResultTable{Records: []ImageRecord{{Band: "z"}, {Band: "g"}, {Band: "z"}, {Band: "r"}}}
	if got := tb.Bands(); !slices.Equal(got, []string{"g", "r", "z"}) {
		t.Fatalf("Bands = %v", got)
	}
	if got := (ResultTable{}).Bands(); len(got) != 0 {
		t.Fatalf("empty Bands = %v", got)
	}
	if tb.Len() != 4 {
		t.Fatalf("Len = %d", tb.Len())
	}
}
