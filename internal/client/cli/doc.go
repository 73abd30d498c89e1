// Package cli provides the interactive offlinesync command-line client.
//
// It wires configuration, the local SQLite store, the network clients and the
// offline engine behind a small REPL. At start it replays requests left
// queued by a previous run, then a background watcher probes connectivity
// and synchronizes whenever the client comes back online.
//
// Commands:
//   - get <url>     fetch data (cached copy first, then the network)
//   - image <url>   fetch and decode an image
//   - post <url> <body...>
//   - sync          replay the unsent queue now
//   - pending       list queued requests
//   - flush data|images|unsent|all
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
