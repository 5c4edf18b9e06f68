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
	isLoggedIn() bool
	isDoctor() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Pending(ctx context.Context) error
	All(ctx context.Context) error
	Select(ctx context.Context) error
	Show(ctx context.Context) error
	Upload(ctx context.Context) error
	Approve(ctx context.Context) error
	Diet(ctx context.Context) error
	Chat(ctx context.Context) error
	History(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				if a.isDoctor() {
					printlnFn("Available commands: (l)ist, pending, all, select, show, approve, diet, chat, history, whoami, logout, exit")
				} else {
					printlnFn("Available commands: (l)ist, select, show, upload, diet, chat, history, whoami, logout, exit")
				}
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "all":
			_ = a.All(ctx)

		case "select":
			_ = a.Select(ctx)

		case "show":
			_ = a.Show(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "approve":
			_ = a.Approve(ctx)

		case "diet":
			_ = a.Diet(ctx)

		case "chat":
			_ = a.Chat(ctx)

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
