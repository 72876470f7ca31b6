// Package service provides the maskstat batch runner
package service

import (
	"context"
	"errors"
	"time"

	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/logger"
	"maskstat/internal/services/maskstat/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration options for the runner
type Config struct {
	// Workers is the number of images measured concurrently; <=0 -> 1
	Workers int

	// RunID stamps the result table; empty -> random uuid
	RunID string
}

// Service implements domain.RunnerPort
type Service struct {
	Loader domain.Loader
	Sink   domain.Sink
	Cfg    Config

	// Aggregate is swappable in tests
	Aggregate func(domain.Image, domain.Metadata) (domain.ImageRecord, error)
}

// New constructs the runner
func New(l domain.Loader, s domain.Sink, cfg Config) *Service {
	if l == nil {
		panic("maskstat.Service requires a non nil Loader")
	}
	if s == nil {
		panic("maskstat.Service requires a non nil Sink")
	}
	return &Service{Loader: l, Sink: s, Cfg: cfg, Aggregate: Aggregate}
}

var _ domain.RunnerPort = (*Service)(nil)

// outcome is the per-reference result slot
type outcome struct {
	rec  *domain.ImageRecord
	code perr.ErrorCode
}

// Run measures every reference in order, skipping images that fail to load
// or carry a bad header, and writes the resulting table to the sink.
// Records keep the order of their references. A batch with no usable image
// still writes an empty table.
func (s *Service) Run(ctx context.Context, refs []string) (domain.Report, error) {
	runID := s.Cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)
	start := time.Now()

	slots := make([]outcome, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Cfg.Workers, 1))
	for i, ref := range refs {
		// cancellation is only observed between images
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			o, err := s.one(gctx, ref)
			if err != nil {
				return err
			}
			slots[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		Table: domain.ResultTable{RunID: runID, Records: make([]domain.ImageRecord, 0, len(refs))},
		Stats: domain.RunStats{Refs: len(refs)},
	}
	for _, o := range slots {
		switch {
		case o.rec != nil:
			report.Table.Records = append(report.Table.Records, *o.rec)
		case o.code == perr.ErrorCodeLoad:
			report.Stats.LoadFail++
		default:
			report.Stats.MetaFail++
		}
	}
	report.Stats.Processed = report.Table.Len()

	dest, err := s.Sink.Write(ctx, report.Table)
	if err != nil {
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeSerialization, "write result table")
		}
		return domain.Report{}, err
	}
	report.Dest = dest

	log.Info().
		Int("refs", report.Stats.Refs).
		Int("processed", report.Stats.Processed).
		Int("load_failed", report.Stats.LoadFail).
		Int("meta_failed", report.Stats.MetaFail).
		Str("dest", dest).
		Dur("elapsed", time.Since(start)).
		Msg("maskstat: batch finished")
	return report, nil
}

// one loads and aggregates a single reference. Per-image failures come back
// as an outcome with a code; only errors that must abort the batch are returned.
func (s *Service) one(ctx context.Context, ref string) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}
	ctx = logger.WithRef(ctx, ref)
	log := logger.C(ctx)

	img, meta, err := s.Loader.Load(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return outcome{}, err
		}
		if !perr.IsCode(err, perr.ErrorCodeLoad) {
			if _, ok := perr.As(err); !ok {
				err = perr.Wrap(err, perr.ErrorCodeUnknown, "loader failed")
			}
			return outcome{}, perr.WithOp(err, "load "+ref)
		}
		log.Warn().Err(err).Msg("maskstat: issue opening image, skipped")
		return outcome{code: perr.ErrorCodeLoad}, nil
	}

	rec, err := s.Aggregate(img, meta)
	if err != nil {
		code := perr.CodeOf(err)
		if code != perr.ErrorCodeMissingField && code != perr.ErrorCodeMalformedValue {
			return outcome{}, perr.WithOp(err, "aggregate "+ref)
		}
		log.Warn().Err(err).Str("field", perr.FieldOf(err)).Msg("maskstat: bad header, skipped")
		return outcome{code: code}, nil
	}
	rec.Ref = ref

	log.Debug().Int("bits", len(rec.Bits)).Int("rows", img.Rows).Int("cols", img.Cols).Msg("maskstat: image measured")
	return outcome{rec: &rec}, nil
}
