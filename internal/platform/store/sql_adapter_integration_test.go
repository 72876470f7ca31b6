//go:build integration_pg

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	kit "maskstat/internal/platform/testkit"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "maskstat",
				"POSTGRES_PASSWORD": "maskstat",
				"POSTGRES_DB":       "masks",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://maskstat:maskstat@%s:%s/masks?sslmode=disable", host, port.Port())
}

func TestStore_Integration_PG(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var logs bytes.Buffer
	s, err := Open(ctx, Config{
		AppName: "maskstat-store-it",
		PG:      PGConfig{Enabled: true, URL: dsn, MaxConns: 2, LogSQL: true, ConnectRetries: 3},
	}, WithLogger(zerolog.New(&logs)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	db := s.PG

	if _, err := db.Exec(ctx, `CREATE TABLE probe (seq INT PRIMARY KEY, bits BIGINT[] NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	// commit
	err = db.Tx(ctx, func(q RowQuerier) error {
		_, err := q.CopyFrom(ctx, "probe", []string{"seq", "bits"}, [][]any{
			{0, []int64{1, 4}},
			{1, []int64{}},
		})
		return err
	})
	if err != nil {
		t.Fatalf("copy in tx: %v", err)
	}

	// rollback
	rollback := errors.New("rollback")
	err = db.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO probe VALUES (2, '{8}')`); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("tx err = %v", err)
	}

	n, err := Scalar[int](ctx, db, `SELECT COALESCE(SUM(cardinality(bits)), 0)::int FROM probe`)
	if err != nil || n != 2 {
		t.Fatalf("sum cardinality = %d, %v", n, err)
	}

	seqs, err := Scalar[string](ctx, db, `SELECT string_agg(seq::text, ',' ORDER BY seq) FROM probe`)
	if err != nil || seqs != "0,1" {
		t.Fatalf("seqs = %q, %v", seqs, err)
	}

	app, err := Scalar[string](ctx, db, `SELECT current_setting('application_name')`)
	if err != nil || app != "maskstat-store-it" {
		t.Fatalf("application_name = %q, %v", app, err)
	}

	kit.MustContain(t, logs.String(), `COPY \"probe\" (seq, bits) FROM STDIN`)
}
