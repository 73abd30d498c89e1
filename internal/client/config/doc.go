// Package config loads runtime configuration for the offlinesync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. OFFLINE_* environment variables (caarlos0/env).
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080/",
//	  "online_check_interval": "3s",
//	  "database_dsn": "offlinesync.db",
//	  "workers": 4,
//	  "request_timeout": "30s",
//	  "refresh_on_sync": true,
//	  "log_backend": "slog",
//	  "s3_base_endpoint": "http://127.0.0.1:9000"
//	}
package config
