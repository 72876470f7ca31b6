package fitsimage

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"maskstat/internal/core/bitplane"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/validate"
	"maskstat/internal/services/maskstat/domain"
)

// Section is a half open pixel window: columns [X1, X2), rows [Y1, Y2)
type Section struct {
	X1 int `name:"x1" validate:"gte=0"`
	Y1 int `name:"y1" validate:"gte=0"`
	X2 int `name:"x2" validate:"gtfield=X1"`
	Y2 int `name:"y2" validate:"gtfield=Y1"`
}

// ParseSection reads "x1 y1 x2 y2" (spaces or commas). Empty input means no section.
func ParseSection(s string) (*Section, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 4 {
		return nil, perr.WithField(perr.InvalidArgf("section wants x1 y1 x2 y2, got %d values", len(fields)), "section")
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("section value %q is not an integer", f), "section")
		}
		v[i] = n
	}
	sec := Section{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	if err := validate.Struct(sec); err != nil {
		return nil, err
	}
	return &sec, nil
}

// String renders the section in input order
func (s Section) String() string { return fmt.Sprintf("%d %d %d %d", s.X1, s.Y1, s.X2, s.Y2) }

// Crop copies the window out of img
func (s Section) Crop(img domain.Image) (domain.Image, error) {
	if s.X2 > img.Cols || s.Y2 > img.Rows {
		return domain.Image{}, perr.Loadf("section %s exceeds image of %d rows x %d cols", s, img.Rows, img.Cols)
	}
	out := bitplane.NewImage(s.Y2-s.Y1, s.X2-s.X1)
	for r := range out.Rows {
		src := (s.Y1+r)*img.Cols + s.X1
		copy(out.Pix[r*out.Cols:(r+1)*out.Cols], img.Pix[src:src+out.Cols])
	}
	return out, nil
}
