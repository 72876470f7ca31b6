package fitsimage

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const block = 2880

type card struct {
	key string
	val any
}

// hdu is one header data unit of a test file; an empty data slice writes NAXIS = 0
type hdu struct {
	bitpix int
	rows   int
	cols   int
	data   []int64
	cards  []card
}

func cardLine(key string, val any) string {
	var v string
	switch x := val.(type) {
	case string:
		v = fmt.Sprintf("'%-8s'", x)
		return pad(fmt.Sprintf("%-8s= %-20s", key, v), 80)
	case bool:
		v = "F"
		if x {
			v = "T"
		}
	case int:
		v = strconv.Itoa(x)
	case int64:
		v = strconv.FormatInt(x, 10)
	case float64:
		v = strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(v, ".E") {
			v += ".0"
		}
	default:
		panic(fmt.Sprintf("unsupported card value %T", val))
	}
	return pad(fmt.Sprintf("%-8s= %20s", key, v), 80)
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

func padBlock(b *bytes.Buffer, fill byte) {
	for b.Len()%block != 0 {
		b.WriteByte(fill)
	}
}

// encodeFITS renders hdus as a FITS byte stream; the first one is the primary
func encodeFITS(t *testing.T, hdus ...hdu) []byte {
	t.Helper()
	var out bytes.Buffer
	for i, h := range hdus {
		var hb bytes.Buffer
		if i == 0 {
			hb.WriteString(cardLine("SIMPLE", true))
		} else {
			hb.WriteString(cardLine("XTENSION", "IMAGE"))
		}
		bitpix := h.bitpix
		if bitpix == 0 {
			bitpix = 16
		}
		hb.WriteString(cardLine("BITPIX", bitpix))
		if len(h.data) == 0 {
			hb.WriteString(cardLine("NAXIS", 0))
		} else {
			hb.WriteString(cardLine("NAXIS", 2))
			hb.WriteString(cardLine("NAXIS1", h.cols))
			hb.WriteString(cardLine("NAXIS2", h.rows))
		}
		if i == 0 {
			hb.WriteString(cardLine("EXTEND", true))
		} else {
			hb.WriteString(cardLine("PCOUNT", 0))
			hb.WriteString(cardLine("GCOUNT", 1))
		}
		for _, c := range h.cards {
			hb.WriteString(cardLine(c.key, c.val))
		}
		hb.WriteString(pad("END", 80))
		padBlock(&hb, ' ')
		out.Write(hb.Bytes())

		if len(h.data) == 0 {
			continue
		}
		if len(h.data) != h.rows*h.cols {
			t.Fatalf("hdu %d: %d pixels for %dx%d", i, len(h.data), h.rows, h.cols)
		}
		var db bytes.Buffer
		for _, v := range h.data {
			var err error
			switch bitpix {
			case 8:
				err = binary.Write(&db, binary.BigEndian, uint8(v))
			case 16:
				err = binary.Write(&db, binary.BigEndian, int16(v))
			case 32:
				err = binary.Write(&db, binary.BigEndian, int32(v))
			case 64:
				err = binary.Write(&db, binary.BigEndian, v)
			case -32:
				err = binary.Write(&db, binary.BigEndian, float32(v))
			default:
				t.Fatalf("unsupported bitpix %d", bitpix)
			}
			if err != nil {
				t.Fatalf("encode pixel: %v", err)
			}
		}
		padBlock(&db, 0)
		out.Write(db.Bytes())
	}
	return out.Bytes()
}

func writeFITS(t *testing.T, name string, hdus ...hdu) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	raw := encodeFITS(t, hdus...)
	if strings.HasSuffix(name, ".gz") {
		var gz bytes.Buffer
		w := gzip.NewWriter(&gz)
		if _, err := w.Write(raw); err != nil {
			t.Fatalf("gzip: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		raw = gz.Bytes()
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// decamLike mirrors a reduced CCD file: empty primary, SCI header, then the mask in HDU 2
func decamLike(mask hdu) []hdu {
	sciCards := []card{
		{"EXTNAME", "SCI"},
		{"EXPNUM", 229686},
		{"MJD-OBS", 56543.0191944},
		{"BAND", "g"},
		{"REQNUM", 1105},
		{"ATTNUM", 1},
		{"UNITNAME", "D00229686"},
		{"NITE", 20130910},
		{"CCDNUM", 1},
	}
	mask.cards = append([]card{{"EXTNAME", "MSK"}}, mask.cards...)
	return []hdu{
		{},
		{bitpix: -32, rows: 1, cols: 1, data: []int64{0}, cards: sciCards},
		mask,
	}
}
