package fitsimage

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"

	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/logger"
	"maskstat/internal/services/maskstat/domain"

	"github.com/astrogo/fitsio"
)

// Defaults match the layout of DECam reduced CCD images
const (
	DefaultDataHDU   = "2"
	DefaultHeaderHDU = "SCI"
)

// Loader implements domain.Loader for FITS files on disk
type Loader struct {
	data    Selector
	header  Selector
	section *Section
}

// Option configures the loader
type Option func(*Loader)

// WithDataHDU selects the HDU holding the bitmask pixels
func WithDataHDU(s Selector) Option { return func(l *Loader) { l.data = s } }

// WithHeaderHDU selects the HDU whose header feeds the metadata
func WithHeaderHDU(s Selector) Option { return func(l *Loader) { l.header = s } }

// WithSection crops every image to sec; nil keeps the full frame
func WithSection(sec *Section) Option { return func(l *Loader) { l.section = sec } }

// New builds a loader with the default HDU selectors
func New(opts ...Option) *Loader {
	l := &Loader{
		data:   ParseSelector(DefaultDataHDU),
		header: ParseSelector(DefaultHeaderHDU),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

var _ domain.Loader = (*Loader)(nil)

// Load reads the pixels and header of one FITS file
func (l *Loader) Load(ctx context.Context, ref string) (domain.Image, domain.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, nil, err
	}
	rc, err := openRef(ref)
	if err != nil {
		return domain.Image{}, nil, perr.Wrapf(err, perr.ErrorCodeLoad, "open %s", ref)
	}
	defer func() { _ = rc.Close() }()

	f, err := fitsio.Open(rc)
	if err != nil {
		return domain.Image{}, nil, perr.Wrapf(err, perr.ErrorCodeLoad, "parse %s", ref)
	}
	defer func() { _ = f.Close() }()
	hdus := f.HDUs()

	hdu, err := l.data.pick(hdus)
	if err != nil {
		return domain.Image{}, nil, err
	}
	im, ok := hdu.(fitsio.Image)
	if !ok {
		return domain.Image{}, nil, perr.Loadf("hdu %s is not an image", l.data)
	}
	img, err := decodePixels(im)
	if err != nil {
		return domain.Image{}, nil, err
	}
	if l.section != nil {
		if img, err = l.section.Crop(img); err != nil {
			return domain.Image{}, nil, err
		}
	}

	hh, err := l.header.pick(hdus)
	if err != nil {
		return domain.Image{}, nil, err
	}
	meta := Cards(hh.Header())

	logger.C(ctx).Debug().
		Str("data_hdu", l.data.String()).
		Str("header_hdu", l.header.String()).
		Int("rows", img.Rows).
		Int("cols", img.Cols).
		Msg("fitsimage: loaded")
	return img, meta, nil
}

// Cards flattens a header into metadata. Integer cards become int64; a
// repeated key keeps its first card.
func Cards(h *fitsio.Header) domain.Metadata {
	keys := h.Keys()
	meta := make(domain.Metadata, len(keys))
	for _, k := range keys {
		c := h.Get(k)
		if c == nil {
			continue
		}
		switch v := c.Value.(type) {
		case int:
			meta[k] = int64(v)
		default:
			meta[k] = v
		}
	}
	return meta
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gerr
}

func openRef(ref string) (io.ReadCloser, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(ref, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return gzipFile{Reader: gz, f: f}, nil
}
