package module

import (
	"maskstat/internal/adapters/fitsimage"
	"maskstat/internal/platform/config"
	"maskstat/internal/platform/validate"
)

// Sink kinds
const (
	SinkCSV = "csv"
	SinkPG  = "pg"
	SinkCH  = "ch"
)

// Options holds configuration options for the maskstat module.
// The name tags match the command flags so validation messages read naturally.
type Options struct {
	Workers   int    `name:"workers" validate:"gte=1,lte=256"`
	Sink      string `name:"sink" validate:"oneof=csv pg ch"`
	DataHDU   string `name:"ext" validate:"required"`
	HeaderHDU string `name:"hdr-ext" validate:"required"`
	Section   string `name:"sec"`
	Out       string `name:"out"`
	RunID     string `name:"run-id" validate:"omitempty,max=64,printascii"`
}

// FromConfig reads the maskstat options from config with MASKSTAT_ prefix
func FromConfig(cfg config.Conf) Options {
	ms := cfg.Prefix("MASKSTAT_")
	return Options{
		Workers:   ms.MayInt("WORKERS", 1),
		Sink:      ms.MayEnum("SINK", SinkCSV, SinkCSV, SinkPG, SinkCH),
		DataHDU:   ms.MayString("EXT", fitsimage.DefaultDataHDU),
		HeaderHDU: ms.MayString("HDR_EXT", fitsimage.DefaultHeaderHDU),
		Section:   ms.MayString("SECTION", ""),
		Out:       ms.MayString("OUT", ""),
		RunID:     ms.MayString("RUN_ID", ""),
	}
}

// Validate checks the options, reporting the first bad one by its flag name
func (o Options) Validate() error { return validate.Struct(o) }

// NeedsPG reports whether the selected sink writes to postgres
func (o Options) NeedsPG() bool { return o.Sink == SinkPG }

// NeedsCH reports whether the selected sink writes to clickhouse
func (o Options) NeedsCH() bool { return o.Sink == SinkCH }
