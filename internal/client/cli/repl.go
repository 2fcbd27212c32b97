package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface is the command surface the REPL needs. App satisfies it; tests
// use a stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Users(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	SendImage(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	Inbox(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, help, exit"
	helpLoggedIn  = "Available commands: whoami, users, history <userID>, send <userID> <text>, " +
		"sendimg <userID> <path>, avatar <path>, inbox [n], logout, help, exit"
)

// runREPL reads one command per line and dispatches it to a. Command errors
// are printed and the loop goes on. It returns on EOF, exit or quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, println func(...any)) {
	for {
		println(fmt.Sprintf("chat %s> ", statusFn()))
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
			if a.isLoggedIn() {
				println(helpLoggedIn)
			} else {
				println(helpLoggedOut)
			}
		case "signup":
			err = a.Signup(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "users":
			err = a.Users(ctx)
		case "history":
			err = a.History(ctx, args)
		case "send":
			err = a.Send(ctx, args)
		case "sendimg":
			err = a.SendImage(ctx, args)
		case "avatar":
			err = a.Avatar(ctx, args)
		case "inbox":
			err = a.Inbox(ctx, args)
		case "exit", "quit":
			println("Bye!")
			return
		default:
			println("Unknown command:", cmd)
		}

		if err != nil {
			println("Error:", err)
		}
	}
}
