// Package modkit provides module wiring and core deps
package modkit

import (
	"maskstat/internal/modkit/repokit"
	"maskstat/internal/platform/config"
	"maskstat/internal/platform/logger"
	"maskstat/internal/platform/store"
)

// Deps holds core dependencies passed to modules.
// PG and CH are nil unless the selected sink opened them.
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore builds Deps around an opened store; a nil store leaves both backends nil
func FromStore(log logger.Logger, cfg config.Conf, s *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if s != nil {
		d.PG, d.CH = s.PG, s.CH
	}
	return d
}
