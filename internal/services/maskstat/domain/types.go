// Package domain holds the data structures shared by the maskstat pipeline
package domain

import (
	"slices"

	"maskstat/internal/core/bitplane"
)

// Image re-exports the bitmask image shape used by the core
type Image = bitplane.Image

// Metadata is one image's header: card name -> decoded value (string, int64,
// float64, bool). Keys are case sensitive and match the header verbatim.
type Metadata map[string]any

// Header keys read into every record
const (
	KeyExpNum   = "EXPNUM"
	KeyMJD      = "MJD-OBS"
	KeyBand     = "BAND"
	KeyNite     = "NITE"
	KeyCCDNum   = "CCDNUM"
	KeyReqNum   = "REQNUM"
	KeyAttNum   = "ATTNUM"
	KeyUnitName = "UNITNAME"
)

// ImageRecord is one output row. Bits, NClust and Area are aligned by index
// and all have the length of the image's bit universe.
type ImageRecord struct {
	Ref      string
	ExpNum   int64
	MJD      float64
	Band     string
	Nite     int64
	CCDNum   int64
	ReqNum   int64
	AttNum   int64
	UnitName string

	Bits   []uint64
	NClust []int
	Area   []int
}

// ResultTable is the ordered output of one batch
type ResultTable struct {
	RunID   string
	Records []ImageRecord
}

// Len returns the number of records
func (t ResultTable) Len() int { return len(t.Records) }

// Bands returns the distinct band ids in ascending order
func (t ResultTable) Bands() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.Records {
		if _, ok := seen[r.Band]; ok {
			continue
		}
		seen[r.Band] = struct{}{}
		out = append(out, r.Band)
	}
	slices.Sort(out)
	return out
}

// RunStats summarizes a finished batch for logs and the console
type RunStats struct {
	Refs      int
	Processed int
	LoadFail  int
	MetaFail  int
}

// Skipped is the number of references that produced no record
func (s RunStats) Skipped() int { return s.LoadFail + s.MetaFail }

// Report is what a batch run hands back to the command
type Report struct {
	Table ResultTable
	Stats RunStats
	Dest  string
}
