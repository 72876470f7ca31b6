package config

import (
	"testing"
	"time"

	kit "maskstat/internal/platform/testkit"
)

func TestPrefix(t *testing.T) {
	pg := New().Prefix("MASKSTAT_").Prefix("PGSQL_")
	if got := pg.key("DBURL"); got != "MASKSTAT_PGSQL_DBURL" {
		t.Fatalf("key = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("MASKSTAT_PGSQL_")
	t.Setenv("MASKSTAT_PGSQL_DBURL", "  postgres://db/masks ")
	if got := c.MustString("DBURL"); got != "postgres://db/masks" {
		t.Fatalf("MustString = %q", got)
	}
	t.Setenv("MASKSTAT_PGSQL_BLANK", "   ")
	kit.MustPanic(t, func() { _ = c.MustString("BLANK") })
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMay(t *testing.T) {
	c := New().Prefix("MASKSTAT_")
	t.Setenv("MASKSTAT_OUT", " night.csv ")
	t.Setenv("MASKSTAT_WORKERS", "6")
	t.Setenv("MASKSTAT_BAD_WORKERS", "six")
	t.Setenv("MASKSTAT_LOG_SQL", "true")
	t.Setenv("MASKSTAT_BAD_BOOL", "perhaps")
	t.Setenv("MASKSTAT_PING", "250ms")
	t.Setenv("MASKSTAT_BAD_PING", "soon")

	if got := c.MayString("OUT", "x"); got != "night.csv" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayString("UNSET", "x"); got != "x" {
		t.Fatalf("MayString default = %q", got)
	}

	ints := map[string]int{"WORKERS": 6, "BAD_WORKERS": 1, "UNSET": 1}
	for k, want := range ints {
		if got := c.MayInt(k, 1); got != want {
			t.Fatalf("MayInt(%s) = %d want %d", k, got, want)
		}
	}
	bools := map[string]bool{"LOG_SQL": true, "BAD_BOOL": false, "UNSET": false}
	for k, want := range bools {
		if got := c.MayBool(k, false); got != want {
			t.Fatalf("MayBool(%s) = %v want %v", k, got, want)
		}
	}
	durs := map[string]time.Duration{"PING": 250 * time.Millisecond, "BAD_PING": 3 * time.Second, "UNSET": 3 * time.Second}
	for k, want := range durs {
		if got := c.MayDuration(k, 3*time.Second); got != want {
			t.Fatalf("MayDuration(%s) = %v want %v", k, got, want)
		}
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("MASKSTAT_")

	if got := c.MayEnum("SINK", "csv", "csv", "pg", "ch"); got != "csv" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("MASKSTAT_SINK", " PG ")
	if got := c.MayEnum("SINK", "csv", "csv", "pg", "ch"); got != "pg" {
		t.Fatalf("canonical spelling expected, got %q", got)
	}
	t.Setenv("MASKSTAT_SINK", "parquet")
	kit.MustPanic(t, func() { _ = c.MayEnum("SINK", "csv", "csv", "pg", "ch") })
}
