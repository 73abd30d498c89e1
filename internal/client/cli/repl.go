package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Get(ctx context.Context, url string) error
	Image(ctx context.Context, url string) error
	Post(ctx context.Context, url string, body string) error
	Sync(ctx context.Context) error
	ListPending(ctx context.Context) error
	Flush(ctx context.Context, what string) error
}

const helpText = "Available commands: get <url>, image <url>, post <url> <body>, sync, pending, flush data|images|unsent|all, exit"

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit". Errors are printed; they never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("offline %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "get":
			if len(args) != 1 {
				printlnFn("Usage: get <url>")
				continue
			}
			err = a.Get(ctx, args[0])

		case "image":
			if len(args) != 1 {
				printlnFn("Usage: image <url>")
				continue
			}
			err = a.Image(ctx, args[0])

		case "post":
			if len(args) < 1 {
				printlnFn("Usage: post <url> <body>")
				continue
			}
			err = a.Post(ctx, args[0], strings.Join(args[1:], " "))

		case "sync":
			err = a.Sync(ctx)

		case "pending":
			err = a.ListPending(ctx)

		case "flush":
			if len(args) != 1 {
				printlnFn("Usage: flush data|images|unsent|all")
				continue
			}
			err = a.Flush(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
