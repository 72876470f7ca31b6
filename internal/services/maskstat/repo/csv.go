// Package repo provides the sinks a finished result table can be written to
package repo

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/text"
	"maskstat/internal/services/maskstat/domain"
)

// CSVColumns is the header row of the csv artifact
var CSVColumns = []string{
	"expnum", "mjd", "band", "bit", "bit_nclust", "bit_area",
	"reqnum", "attnum", "unitname", "nite", "ccdnum",
}

// CSV writes the table to a local csv file
type CSV struct {
	// Path is the destination; empty derives one from the bands and pid
	Path string

	pid func() int
}

// NewCSV returns a csv sink writing to path
func NewCSV(path string) *CSV { return &CSV{Path: path, pid: os.Getpid} }

var _ domain.Sink = (*CSV)(nil)

// DefaultName is maskStat_{bands}_PID{pid}.csv with the bands concatenated.
// Band ids come from image headers and are made safe for a file name first.
func DefaultName(bands []string, pid int) string {
	var sb strings.Builder
	for _, b := range bands {
		sb.WriteString(text.FileComponent(b))
	}
	return fmt.Sprintf("maskStat_%s_PID%d.csv", sb.String(), pid)
}

// Write encodes t into a temp file next to the destination and renames it
// into place, so a failed run never leaves a truncated artifact.
func (c *CSV) Write(ctx context.Context, t domain.ResultTable) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := c.Path
	if dest == "" {
		dest = DefaultName(t.Bands(), c.pid())
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeSerialization, "create %s", dest)
	}
	if err := Encode(f, t); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", perr.Wrapf(err, perr.ErrorCodeSerialization, "close %s", dest)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", perr.Wrapf(err, perr.ErrorCodeSerialization, "rename to %s", dest)
	}
	return dest, nil
}

// Encode writes the header and one line per record
func Encode(w io.Writer, t domain.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return perr.Wrap(err, perr.ErrorCodeSerialization, "write csv header")
	}
	for i, r := range t.Records {
		if err := cw.Write(csvRow(r)); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeSerialization, "write csv record %d", i)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeSerialization, "flush csv")
	}
	return nil
}

func csvRow(r domain.ImageRecord) []string {
	return []string{
		strconv.FormatInt(r.ExpNum, 10),
		formatFloat(r.MJD),
		r.Band,
		listCell(r.Bits),
		listCell(r.NClust),
		listCell(r.Area),
		strconv.FormatInt(r.ReqNum, 10),
		strconv.FormatInt(r.AttNum, 10),
		r.UnitName,
		strconv.FormatInt(r.Nite, 10),
		strconv.FormatInt(r.CCDNum, 10),
	}
}

// formatFloat keeps a decimal point on integral values (56543 -> 56543.0)
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// listCell renders [1, 2, 4]; an empty list is []
func listCell[T uint64 | int](xs []T) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range xs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatUint(uint64(x), 10))
	}
	sb.WriteByte(']')
	return sb.String()
}
