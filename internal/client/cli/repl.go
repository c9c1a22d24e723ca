package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Countries(ctx context.Context) error
	Like(ctx context.Context, id int) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// runREPL starts a simple read–eval–print loop for the tripcat CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current session (from statusFn) and accepts commands:
//
//	Anonymous:
//	  - help                 — show available commands
//	  - register             — create an account
//	  - login                — authenticate
//	  - (l)ist               — show the vacation catalog
//	  - refresh              — reload the catalog from the service
//	  - countries            — show the countries reference list
//	  - exit | quit          — leave the program
//
//	Traveler (logged in):
//	  - like <id>            — toggle a like on a vacation
//	  - whoami               — show the current account
//	  - logout               — log out
//	  plus the catalog commands above
//
//	Admin (logged in):
//	  - add                  — create a vacation
//	  - edit <id>            — update a vacation
//	  - delete <id>          — delete a vacation
//	  plus whoami, logout and the catalog commands
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tripcat %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn("Available commands: (l)ist, refresh, countries, add, edit <id>, delete <id>, whoami, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: (l)ist, refresh, countries, like <id>, whoami, logout, exit")
			default:
				printlnFn("Available commands: register, login, (l)ist, refresh, countries, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "countries":
			_ = a.Countries(ctx)

		case "like":
			id, ok := parseID(args)
			if !ok {
				printlnFn("Usage: like <vacation id>")
				continue
			}
			_ = a.Like(ctx, id)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			id, ok := parseID(args)
			if !ok {
				printlnFn("Usage: edit <vacation id>")
				continue
			}
			_ = a.Edit(ctx, id)

		case "delete":
			id, ok := parseID(args)
			if !ok {
				printlnFn("Usage: delete <vacation id>")
				continue
			}
			_ = a.Delete(ctx, id)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func parseID(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
