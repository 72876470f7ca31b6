package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"maskstat/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo names this process in system.query_log: the product with
// its role tag, then the build version, go version, commit and host
func BuildClientInfo(name, tag string) clickhouse.ClientInfo {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "maskstat"
	}
	host, _ := os.Hostname()
	bi := version.Info()

	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []product{
		{Name: name, Version: strings.TrimSpace(tag)},
		{Name: "build", Version: bi.Version},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: commit(bi.Commit)},
		{Name: "host", Version: host},
	}}
}

// commit prefers the ldflags commit and falls back to the vcs stamp
func commit(ldflags string) string {
	if ldflags != "" && ldflags != "none" {
		return ldflags
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}
