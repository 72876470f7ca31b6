package fitsimage

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	perr "maskstat/internal/platform/errors"
)

func mask16() hdu {
	return hdu{bitpix: 16, rows: 3, cols: 4, data: []int64{
		0, 1, 0, 16,
		4, 5, 0, 16,
		0, 0, 3, 0,
	}}
}

func TestLoad_DefaultLayout(t *testing.T) {
	path := writeFITS(t, "c01.fits", decamLike(mask16())...)
	img, meta, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Rows != 3 || img.Cols != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", img.Rows, img.Cols)
	}
	if img.At(0, 3) != 16 || img.At(1, 0) != 4 || img.At(2, 2) != 3 {
		t.Fatalf("pixels misplaced: %v", img.Pix)
	}
	if meta["EXPNUM"] != int64(229686) || meta["CCDNUM"] != int64(1) {
		t.Fatalf("int cards = %v %v", meta["EXPNUM"], meta["CCDNUM"])
	}
	if meta["MJD-OBS"] != 56543.0191944 {
		t.Fatalf("MJD-OBS = %v", meta["MJD-OBS"])
	}
	if _, ok := meta["BAND"].(string); !ok {
		t.Fatalf("BAND = %T", meta["BAND"])
	}
}

func TestLoad_BitpixVariants(t *testing.T) {
	for _, bp := range []int{8, 16, 32, 64} {
		m := hdu{bitpix: bp, rows: 2, cols: 2, data: []int64{0, 1, 2, 128}}
		path := writeFITS(t, "bp.fits", decamLike(m)...)
		img, _, err := New().Load(context.Background(), path)
		if err != nil {
			t.Fatalf("bitpix %d: %v", bp, err)
		}
		if !slices.Equal(img.Pix, []uint64{0, 1, 2, 128}) {
			t.Fatalf("bitpix %d: pix = %v", bp, img.Pix)
		}
	}
}

func TestLoad_SelectorsByNameAndIndex(t *testing.T) {
	path := writeFITS(t, "sel.fits", decamLike(mask16())...)
	l := New(WithDataHDU(ParseSelector("msk")), WithHeaderHDU(ParseSelector("1")))
	img, meta, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Rows != 3 || meta["NITE"] != int64(20130910) {
		t.Fatalf("unexpected result rows=%d nite=%v", img.Rows, meta["NITE"])
	}
}

func TestLoad_Section(t *testing.T) {
	path := writeFITS(t, "sec.fits", decamLike(mask16())...)
	sec, err := ParseSection("1 0 4 2")
	if err != nil {
		t.Fatalf("ParseSection: %v", err)
	}
	img, _, err := New(WithSection(sec)).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Rows != 2 || img.Cols != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", img.Rows, img.Cols)
	}
	if !slices.Equal(img.Pix, []uint64{1, 0, 16, 5, 0, 16}) {
		t.Fatalf("pix = %v", img.Pix)
	}

	big, _ := ParseSection("0 0 5 3")
	if _, _, err := New(WithSection(big)).Load(context.Background(), path); !perr.IsCode(err, perr.ErrorCodeLoad) {
		t.Fatalf("oversized section: code = %v", perr.CodeOf(err))
	}
}

func TestLoad_Gzip(t *testing.T) {
	path := writeFITS(t, "c01.fits.gz", decamLike(mask16())...)
	img, _, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.At(1, 1) != 5 {
		t.Fatalf("pix = %v", img.Pix)
	}
}

func TestLoad_UnsignedOffset(t *testing.T) {
	m := mask16()
	m.data = []int64{-32768, -32767, -32768, -32768, -32768, -32768, -32768, -32768, -32768, -32768, -32768, 32767}
	m.cards = []card{{"BZERO", 32768}, {"BSCALE", 1}}
	path := writeFITS(t, "u16.fits", decamLike(m)...)
	img, _, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.At(0, 0) != 0 || img.At(0, 1) != 1 || img.At(2, 3) != 65535 {
		t.Fatalf("pix = %v", img.Pix)
	}
}

func TestLoad_Failures(t *testing.T) {
	neg := mask16()
	neg.data[5] = -1
	float := hdu{bitpix: -32, rows: 3, cols: 4, data: make([]int64, 12)}
	scaled := mask16()
	scaled.cards = []card{{"BSCALE", 2.5}}

	cases := []struct {
		name string
		path func(t *testing.T) string
		opts []Option
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.fits") }, nil},
		{"not fits", func(t *testing.T) string { return writeRaw(t, "junk.fits", []byte("hello")) }, nil},
		{"negative pixel", func(t *testing.T) string { return writeFITS(t, "n.fits", decamLike(neg)...) }, nil},
		{"float image", func(t *testing.T) string { return writeFITS(t, "f.fits", decamLike(float)...) }, nil},
		{"scaled image", func(t *testing.T) string { return writeFITS(t, "s.fits", decamLike(scaled)...) }, nil},
		{"index out of range", func(t *testing.T) string { return writeFITS(t, "i.fits", decamLike(mask16())...) }, []Option{WithDataHDU(Selector{Index: 7})}},
		{"primary has no axes", func(t *testing.T) string { return writeFITS(t, "p.fits", decamLike(mask16())...) }, []Option{WithDataHDU(Selector{Index: 0})}},
		{"unknown header hdu", func(t *testing.T) string { return writeFITS(t, "h.fits", decamLike(mask16())...) }, []Option{WithHeaderHDU(Selector{Name: "WGT"})}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := New(c.opts...).Load(context.Background(), c.path(t))
			if !perr.IsCode(err, perr.ErrorCodeLoad) {
				t.Fatalf("code = %v, want load (err %v)", perr.CodeOf(err), err)
			}
		})
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := New().Load(ctx, "whatever.fits"); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
