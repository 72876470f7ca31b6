package store

import (
	"context"
	"fmt"
	"time"

	chx "maskstat/internal/platform/store/ch"
	"maskstat/internal/platform/store/pg"
)

const (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 6
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	// ping the pool directly so boot retries stay out of the sql trace
	err = retry(ctx, attempts, func() error {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Ping(toCtx)
	}, func(i int, err error) {
		s.Log.Warn().Err(err).Int("attempt", i+1).Int("of", attempts).Msg("store: postgres not ready")
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:  cfg.CH.URL,
		Name: cfg.CH.ClientName,
		Tag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	err = retry(ctx, 3, func() error { return c.Ping(ctx) }, func(i int, err error) {
		s.Log.Warn().Err(err).Int("attempt", i+1).Msg("store: clickhouse not ready")
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}
	return newCHAdapter(c), nil
}

var sleep = time.Sleep

// retry calls fn up to attempts times with capped exponential backoff.
// It stops early when ctx is done and returns the last error.
func retry(ctx context.Context, attempts int, fn func() error, onFail func(int, error)) error {
	var lastErr error
	backoff := backoffStart
	for i := range attempts {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if onFail != nil {
			onFail(i, lastErr)
		}
		if i == attempts-1 {
			break
		}
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
