// Package flagx lets several flag sets share one command line: each set
// parses only the arguments naming its own flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the arguments of args that belong to flags defined on fs,
// in their original order.
//
// Accepted forms are -name, --name, -name=value and --name=value. A separate
// value is taken from the next argument unless it starts with '-' or the
// flag is boolean, so "-debug file.db" never swallows file.db.
func FilterArgs(args []string, fs *flag.FlagSet) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline := flagName(arg)
		if name == "" {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		filtered = append(filtered, arg)
		if inline || isBoolFlag(f) {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// Parse filters args for fs and parses the result. Usage output is discarded;
// the error is returned instead.
func Parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	return fs.Parse(FilterArgs(args, fs))
}

// ConfigPath returns the config file named by -c or -config in args, or ""
// when neither is present. With both, the last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = Parse(fs, args)

	return path
}

// flagName extracts the flag name from arg and reports whether the value is
// attached with '='. Non-flag arguments and the "--" terminator yield "".
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name := arg[1:]
	if name[0] == '-' {
		name = name[1:]
	}
	if name == "" || name[0] == '-' || name[0] == '=' {
		return "", false
	}
	name, _, inline := strings.Cut(name, "=")
	return name, inline
}

func isBoolFlag(f *flag.Flag) bool {
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok {
		return bf.IsBoolFlag()
	}
	return false
}
