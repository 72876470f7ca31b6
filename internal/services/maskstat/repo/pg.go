package repo

import (
	"context"
	"fmt"
	"math"

	"maskstat/internal/modkit/repokit"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/logger"
	"maskstat/internal/platform/store"
	"maskstat/internal/services/maskstat/domain"
)

// Table is the name used by the database sinks
const Table = "mask_stats"

const pgSchema = `
CREATE TABLE IF NOT EXISTS mask_stats (
	run_id     text             NOT NULL,
	seq        integer          NOT NULL,
	ref        text             NOT NULL,
	expnum     bigint           NOT NULL,
	mjd        double precision NOT NULL,
	band       text             NOT NULL,
	bits       bigint[]         NOT NULL,
	bit_nclust bigint[]         NOT NULL,
	bit_area   bigint[]         NOT NULL,
	reqnum     bigint           NOT NULL,
	attnum     bigint           NOT NULL,
	unitname   text             NOT NULL,
	nite       bigint           NOT NULL,
	ccdnum     bigint           NOT NULL,
	created_at timestamptz      NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, seq)
)`

// PGColumns is the COPY column order for mask_stats
var PGColumns = []string{
	"run_id", "seq", "ref", "expnum", "mjd", "band", "bits", "bit_nclust", "bit_area",
	"reqnum", "attnum", "unitname", "nite", "ccdnum",
}

type pg struct{ q repokit.Queryer }

// NewPG returns the binder that scopes Storage to a pool or a transaction
func NewPG() repokit.Binder[Storage] {
	return repokit.BindFunc[Storage](func(q repokit.Queryer) Storage { return &pg{q: q} })
}

// Storage defines the mask_stats repository
type Storage interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, rows [][]any) (int64, error)
	Count(ctx context.Context, runID string) (int64, error)
}

// EnsureSchema implements Storage
func (s *pg) EnsureSchema(ctx context.Context) error {
	_, err := store.Exec(ctx, s.q, pgSchema)
	return err
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return s.q.CopyFrom(ctx, Table, PGColumns, rows)
}

// Count implements Storage
func (s *pg) Count(ctx context.Context, runID string) (int64, error) {
	return store.Scalar[int64](ctx, s.q, `SELECT count(*) FROM mask_stats WHERE run_id = $1`, runID)
}

// PGRows converts records into COPY rows. Bit 2^63 does not fit a signed
// bigint and fails as a serialization error.
func PGRows(runID string, recs []domain.ImageRecord) ([][]any, error) {
	out := make([][]any, len(recs))
	for i, r := range recs {
		bits := make([]int64, len(r.Bits))
		for j, b := range r.Bits {
			if b > math.MaxInt64 {
				return nil, perr.Serializationf("record %d: bit %d does not fit bigint", i, b)
			}
			bits[j] = int64(b)
		}
		out[i] = []any{
			runID, int32(i), r.Ref, r.ExpNum, r.MJD, r.Band,
			bits, int64s(r.NClust), int64s(r.Area),
			r.ReqNum, r.AttNum, r.UnitName, r.Nite, r.CCDNum,
		}
	}
	return out, nil
}

func int64s(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

// PGSink writes a table into mask_stats inside one transaction
type PGSink struct {
	tx       repokit.TxRunner
	bind     repokit.Binder[Storage]
	attempts int
}

// NewPGSink builds a sink over a transaction runner
func NewPGSink(tx repokit.TxRunner) *PGSink {
	return &PGSink{tx: tx, bind: NewPG(), attempts: 3}
}

var _ domain.Sink = (*PGSink)(nil)

// Write implements domain.Sink. Contention errors retry the whole transaction.
func (s *PGSink) Write(ctx context.Context, t domain.ResultTable) (string, error) {
	rows, err := PGRows(t.RunID, t.Records)
	if err != nil {
		return "", err
	}
	log := logger.C(ctx)

	var n int64
	for attempt := 1; ; attempt++ {
		err = repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
			st := repokit.MustBind(s.bind, q)
			if err := st.EnsureSchema(ctx); err != nil {
				return err
			}
			var err error
			if n, err = st.Insert(ctx, rows); err != nil {
				return err
			}
			// a short COPY rolls the transaction back
			got, err := st.Count(ctx, t.RunID)
			if err != nil {
				return err
			}
			if got != int64(len(rows)) {
				return perr.DBf("run %s: wrote %d rows, table holds %d", t.RunID, len(rows), got)
			}
			return nil
		})
		if err == nil {
			break
		}
		if attempt >= s.attempts || !perr.IsRetryable(err) {
			return "", perr.FromPostgresf(err, "write %s", Table)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("maskstat: pg write conflict, retrying")
	}
	return fmt.Sprintf("postgres:%s run_id=%s rows=%d", Table, t.RunID, n), nil
}
