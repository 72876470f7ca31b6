package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_NothingEnabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var zl zerolog.Logger
	s, err := Open(ctx, Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("unexpected seams PG=%T CH=%T", s.PG, s.CH)
	}
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close on empty store returned error: %v", err)
	}
}

func TestOpen_PGEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

func TestOpen_CHEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true, URL: "://bad"}})
	if err == nil || s != nil {
		t.Fatalf("expected Open error for bad CH URL, got store=%#v err=%v", s, err)
	}
}

func TestOpen_OptionError(t *testing.T) {
	t.Parallel()

	boom := func(*Store) error { return context.Canceled }
	if _, err := Open(context.Background(), Config{}, boom); err != context.Canceled {
		t.Fatalf("err = %v", err)
	}
}
