package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"maskstat/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the surface *pgxpool.Pool and pgx.Tx share
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// traced is a RowQuerier over a pool or a transaction that reports every
// statement to the tracer. A nil tracer turns reporting off.
type traced struct {
	c      pgxQuerier
	tracer pg.QueryTracer
	slowUS int64 // <= 0 never marks a statement slow
}

var _ RowQuerier = traced{}

func (q traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := q.c.Exec(ctx, sql, args...)
	q.emit(ctx, sql, args, start, err)
	return tag{ct}, err
}

// QueryRow reports once Scan returns, since pgx defers the error until then
func (q traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return row{
		r:     q.c.QueryRow(ctx, sql, args...),
		after: func(err error) { q.emit(ctx, sql, args, start, err) },
	}
}

func (q traced) CopyFrom(ctx context.Context, table string, columns []string, src [][]any) (int64, error) {
	start := time.Now()
	n, err := q.c.CopyFrom(ctx, ident(table), columns, pgx.CopyFromRows(src))
	q.emit(ctx, copySQL(table, columns), len(src), start, err)
	return n, err
}

func (q traced) emit(ctx context.Context, sql string, args any, start time.Time, err error) {
	if q.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	q.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      q.slowUS > 0 && us >= q.slowUS,
	})
}

// pgAdapter is the pool backed TxRunner handed out by Open
type pgAdapter struct {
	traced
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{
		traced: traced{c: p.Pool, tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000},
		p:      p,
	}
}

// Tx runs fn in one transaction; statements inside it are traced the same way
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(traced{c: tx, tracer: a.tracer, slowUS: a.slowUS}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Ping bypasses the tracer so readiness probes stay out of the sql log
func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }

// ident splits "schema.table" into a quoted pgx identifier
func ident(table string) pgx.Identifier { return pgx.Identifier(strings.Split(table, ".")) }

// copySQL renders a COPY for trace lines only; the rows go over the wire protocol
func copySQL(table string, columns []string) string {
	return "COPY " + ident(table).Sanitize() + " (" + strings.Join(columns, ", ") + ") FROM STDIN"
}
