// Command maskstat measures the bit flags of a batch of bitmask images and
// writes one row per image to csv, postgres or clickhouse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"maskstat/internal/adapters/reflist"
	"maskstat/internal/core/version"
	"maskstat/internal/modkit"
	"maskstat/internal/modkit/module"
	"maskstat/internal/platform/config"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/platform/logger"
	"maskstat/internal/platform/store"

	msdomain "maskstat/internal/services/maskstat/domain"
	msmod "maskstat/internal/services/maskstat/module"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit so it can be driven from tests
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := config.New()
	l := logger.Named("maskstat")

	// env first, flags override
	opts := msmod.FromConfig(root)
	fs := flag.NewFlagSet("maskstat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "usage: maskstat [flags] <list-file>")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.DataHDU, "ext", opts.DataHDU, "data extension: index or EXTNAME")
	fs.StringVar(&opts.HeaderHDU, "hdr-ext", opts.HeaderHDU, "header extension: index or EXTNAME")
	fs.StringVar(&opts.Section, "sec", opts.Section, `section "x1 y1 x2 y2", half open, x is the column`)
	fs.StringVar(&opts.Out, "out", opts.Out, "csv destination (default maskStat_{bands}_PID{pid}.csv)")
	fs.StringVar(&opts.Sink, "sink", opts.Sink, "result sink: csv | pg | ch")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "images measured concurrently")
	fs.StringVar(&opts.RunID, "run-id", opts.RunID, "run id stamped on the table (default random)")
	fVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return perr.ExitCode(perr.ErrorCodeInvalidArgument)
	}
	if *fVersion {
		_, _ = fmt.Fprintln(stdout, version.Info())
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return perr.ExitCode(perr.ErrorCodeInvalidArgument)
	}
	if err := opts.Validate(); err != nil {
		l.Error().Err(err).Str("flag", perr.FieldOf(err)).Msg("invalid options")
		return perr.Exit(err)
	}

	refs, err := reflist.ReadFile(fs.Arg(0))
	if err != nil {
		l.Error().Err(err).Str("list", fs.Arg(0)).Msg("cannot read reference list")
		return perr.Exit(err)
	}

	st, err := openStore(ctx, root, opts)
	if err != nil {
		l.Error().Err(err).Str("sink", opts.Sink).Msg("store.Open failed")
		return perr.Exit(err)
	}
	if st != nil {
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	m, err := msmod.New(modkit.FromStore(*l, root, st), opts)
	if err != nil {
		l.Error().Err(err).Str("flag", perr.FieldOf(err)).Msg("maskstat module wiring failed")
		return perr.Exit(err)
	}
	runner := module.MustPortsOf[msdomain.RunnerPort](m)

	l.Info().Int("refs", len(refs)).Str("sink", opts.Sink).Int("workers", opts.Workers).Msg("maskstat: starting batch")
	rep, err := runner.Run(ctx, refs)
	if err != nil {
		l.Error().Err(err).Msg("maskstat: batch aborted")
		return perr.Exit(err)
	}
	if rep.Stats.Skipped() > 0 {
		l.Warn().Int("skipped", rep.Stats.Skipped()).Int("refs", rep.Stats.Refs).Msg("maskstat: some images were skipped")
	}
	_, _ = fmt.Fprintf(stdout, "Saved: %s\n", rep.Dest)
	return 0
}

// openStore opens only the backend the selected sink writes to; csv needs none
func openStore(ctx context.Context, root config.Conf, opts msmod.Options) (*store.Store, error) {
	cfg := store.Config{AppName: "maskstat"}
	switch {
	case opts.NeedsPG():
		cfg.PG = store.PGFromEnv(root.Prefix("MASKSTAT_PGSQL_"))
	case opts.NeedsCH():
		cfg.CH = store.CHFromEnv(root.Prefix("MASKSTAT_CLICKHOUSE_"), "cli")
	default:
		return nil, nil
	}
	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Named("store")))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "store open")
	}
	if err := st.Guard(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "store not ready")
	}
	return st, nil
}
