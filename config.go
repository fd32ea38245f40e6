package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

const (
	modeRing   = "ring"
	modeCopy   = "copy"
	modeSplice = "splice"
)

// config holds relay settings resolved from flags and XJRELAY_* variables.
type config struct {
	Listen      string
	Upstream    string
	Mode        string
	RingSize    int
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	fs.StringVar(&cfg.Listen, "listen",
		getEnv("XJRELAY_LISTEN", "localhost:8080"),
		"Address to accept clients on (env: XJRELAY_LISTEN)")
	fs.StringVar(&cfg.Upstream, "upstream",
		getEnv("XJRELAY_UPSTREAM", "localhost:22"),
		"Address every client is relayed to (env: XJRELAY_UPSTREAM)")
	fs.StringVar(&cfg.Mode, "mode",
		getEnv("XJRELAY_MODE", modeRing),
		"Relay strategy: ring, copy, splice (linux only) (env: XJRELAY_MODE)")
	fs.IntVar(&cfg.RingSize, "ring-size",
		getEnvInt("XJRELAY_RING_SIZE", 64*1024),
		"Ring capacity in bytes per direction (env: XJRELAY_RING_SIZE)")
	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("XJRELAY_LOG_LEVEL", "info"),
		"Log level: trace, debug, info, warn, error (env: XJRELAY_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("XJRELAY_LOG_FORMAT", "json"),
		"Log format: json, text (env: XJRELAY_LOG_FORMAT)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr",
		getEnv("XJRELAY_METRICS_ADDR", ""),
		"Serve Prometheus metrics on this address, empty to disable (env: XJRELAY_METRICS_ADDR)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.Upstream == "" {
		return errors.New("upstream address is required")
	}
	switch c.Mode {
	case modeRing, modeCopy:
	case modeSplice:
		if !spliceSupported {
			return fmt.Errorf("mode %q is not supported on this platform", c.Mode)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.RingSize < 1 {
		return fmt.Errorf("ring size must be at least 1, got %d", c.RingSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
