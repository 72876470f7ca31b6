package fitsimage

import (
	"strconv"
	"strings"

	perr "maskstat/internal/platform/errors"

	"github.com/astrogo/fitsio"
)

// Selector picks one HDU, by EXTNAME when Name is set, else by zero based index
type Selector struct {
	Index int
	Name  string
}

// ParseSelector reads "2" as an index and anything else as an EXTNAME
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return Selector{Index: n}
	}
	return Selector{Name: s}
}

// String renders the selector the way it was given
func (s Selector) String() string {
	if s.Name != "" {
		return s.Name
	}
	return strconv.Itoa(s.Index)
}

func (s Selector) pick(hdus []fitsio.HDU) (fitsio.HDU, error) {
	if s.Name == "" {
		if s.Index < 0 || s.Index >= len(hdus) {
			return nil, perr.Loadf("hdu %d out of range, file has %d", s.Index, len(hdus))
		}
		return hdus[s.Index], nil
	}
	for _, h := range hdus {
		if strings.EqualFold(extName(h.Header()), s.Name) {
			return h, nil
		}
	}
	return nil, perr.Loadf("no hdu named %q", s.Name)
}

func extName(h *fitsio.Header) string {
	c := h.Get("EXTNAME")
	if c == nil {
		return ""
	}
	name, _ := c.Value.(string)
	return strings.TrimSpace(name)
}
