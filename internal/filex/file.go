// Package filex holds filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DSNPath returns the file a SQLite DSN refers to, or "" for in-memory
// databases. Both plain paths and "file:" URIs are understood.
func DSNPath(dsn string) string {
	if dsn == "" || dsn == ":memory:" {
		return ""
	}
	if rest, ok := strings.CutPrefix(dsn, "file:"); ok {
		path, query, _ := strings.Cut(rest, "?")
		if path == ":memory:" || strings.Contains(query, "mode=memory") {
			return ""
		}
		return path
	}
	return dsn
}

// EnsureParentDir creates the directory that will hold the database file of
// dsn. In-memory DSNs and files in the working directory need nothing.
func EnsureParentDir(dsn string) error {
	path := DSNPath(dsn)
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
