package store

import (
	"time"

	"maskstat/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 6 (about 10s max with capped exponential backoff)
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// PGFromEnv reads a PGConfig from a prefixed view (DBURL, MAX_CONNS, SLOW_MS,
// LOG_SQL, CONNECT_RETRIES, PING_TIMEOUT). DBURL is required.
func PGFromEnv(c config.Conf) PGConfig {
	return PGConfig{
		Enabled:        true,
		URL:            c.MustString("DBURL"),
		MaxConns:       int32(c.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		LogSQL:         c.MayBool("LOG_SQL", false),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 6),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}

// CHFromEnv reads a CHConfig from a prefixed view. DBURL is required.
func CHFromEnv(c config.Conf, tag string) CHConfig {
	return CHConfig{
		Enabled:    true,
		URL:        c.MustString("DBURL"),
		ClientName: c.MayString("CLIENT_NAME", "maskstat"),
		ClientTag:  tag,
	}
}
