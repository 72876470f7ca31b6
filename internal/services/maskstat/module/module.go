// Package module provides the maskstat module implementation
package module

import (
	"strings"

	"maskstat/internal/adapters/fitsimage"
	"maskstat/internal/modkit"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/services/maskstat/domain"
	"maskstat/internal/services/maskstat/repo"
	"maskstat/internal/services/maskstat/service"
)

// Ports defines the maskstat module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the maskstat module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the maskstat module from already resolved options.
// It wires the FITS loader, the selected sink and the batch runner.
func New(deps modkit.Deps, opts Options) (*Module, error) {
	opts.Sink = strings.ToLower(strings.TrimSpace(opts.Sink))
	if opts.Sink == "" {
		opts.Sink = SinkCSV
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sec, err := fitsimage.ParseSection(opts.Section)
	if err != nil {
		return nil, err
	}
	loader := fitsimage.New(
		fitsimage.WithDataHDU(fitsimage.ParseSelector(opts.DataHDU)),
		fitsimage.WithHeaderHDU(fitsimage.ParseSelector(opts.HeaderHDU)),
		fitsimage.WithSection(sec),
	)

	sink, err := newSink(deps, opts)
	if err != nil {
		return nil, err
	}

	svc := service.New(loader, sink, service.Config{
		Workers: opts.Workers,
		RunID:   opts.RunID,
	})

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// NewFromConfig constructs the module using options from deps.Cfg only
func NewFromConfig(deps modkit.Deps) (*Module, error) {
	return New(deps, FromConfig(deps.Cfg))
}

func newSink(deps modkit.Deps, opts Options) (domain.Sink, error) {
	switch opts.Sink {
	case SinkPG:
		if deps.PG == nil {
			return nil, perr.WithField(perr.InvalidArgf("sink pg needs a postgres connection (MASKSTAT_PGSQL_DBURL)"), "sink")
		}
		return repo.NewPGSink(deps.PG), nil
	case SinkCH:
		if deps.CH == nil {
			return nil, perr.WithField(perr.InvalidArgf("sink ch needs a clickhouse connection (MASKSTAT_CLICKHOUSE_DBURL)"), "sink")
		}
		return repo.NewCHSink(deps.CH), nil
	default:
		return repo.NewCSV(opts.Out), nil
	}
}

// Name returns the module name
func (m *Module) Name() string { return "maskstat" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }
