package repo

import (
	"context"
	"fmt"

	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/store"
	"maskstat/internal/services/maskstat/domain"
)

const chSchema = `
CREATE TABLE IF NOT EXISTS mask_stats (
	run_id     String,
	seq        UInt32,
	ref        String,
	expnum     Int64,
	mjd        Float64,
	band       LowCardinality(String),
	bits       Array(UInt64),
	bit_nclust Array(Int64),
	bit_area   Array(Int64),
	reqnum     Int64,
	attnum     Int64,
	unitname   String,
	nite       Int64,
	ccdnum     Int64,
	created_at DateTime DEFAULT now()
) ENGINE = MergeTree
ORDER BY (run_id, seq)`

// CHSink appends a table to mask_stats in ClickHouse as one batch
type CHSink struct {
	ch store.Clickhouse
}

// NewCHSink builds a sink over the clickhouse seam
func NewCHSink(ch store.Clickhouse) *CHSink { return &CHSink{ch: ch} }

var _ domain.Sink = (*CHSink)(nil)

// CHRows converts records into batch rows; column order is PGColumns
func CHRows(runID string, recs []domain.ImageRecord) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		out[i] = []any{
			runID, uint32(i), r.Ref, r.ExpNum, r.MJD, r.Band,
			append([]uint64(nil), r.Bits...), int64s(r.NClust), int64s(r.Area),
			r.ReqNum, r.AttNum, r.UnitName, r.Nite, r.CCDNum,
		}
	}
	return out
}

// Write implements domain.Sink
func (s *CHSink) Write(ctx context.Context, t domain.ResultTable) (string, error) {
	if err := s.ch.Exec(ctx, chSchema); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeDB, "create %s", Table)
	}
	if err := s.ch.Insert(ctx, Table, PGColumns, CHRows(t.RunID, t.Records)); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeDB, "insert %s", Table)
	}
	got, err := s.count(ctx, t.RunID)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeDB, "count %s", Table)
	}
	if got != uint64(t.Len()) {
		return "", perr.DBf("run %s: wrote %d rows, table holds %d", t.RunID, t.Len(), got)
	}
	return fmt.Sprintf("clickhouse:%s run_id=%s rows=%d", Table, t.RunID, t.Len()), nil
}

func (s *CHSink) count(ctx context.Context, runID string) (uint64, error) {
	rows, err := s.ch.Query(ctx, "SELECT count() FROM mask_stats WHERE run_id = ?", runID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
