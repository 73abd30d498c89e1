package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   URL probed for connectivity
//	-i int      online check interval in seconds
//	-d string   SQLite database file
//	-w int      concurrent network calls
//	-t int      request timeout in seconds
//	-log string log backend (slog|zap)
//	-debug      debug logging
//	-refresh    refresh stale cache records after synchronize
//
// Arguments for flags not defined here (such as -c) are skipped by flagx.Parse.
func parseFlags(cfg *Config) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "URL probed for connectivity")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite database file")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "concurrent network calls")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogBackend, "log", cfg.LogBackend, "log backend (slog|zap)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging")
	fs.BoolVar(&cfg.RefreshOnSync, "refresh", cfg.RefreshOnSync, "refresh stale cache records after synchronize")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	return nil
}
