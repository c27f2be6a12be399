package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, os.Stdin, os.Stdout, os.Stderr)
	registry := NewCommandRegistry(VersionInfo{Version: version, Commit: commit, Date: date})
	registerCommands(registry, a)

	if err := registry.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry, a *app) {
	r.Register(&Command{
		Name:        "search",
		Description: "Search orders by id, exact date or look-back window",
		Usage:       "orderctl search [--id <order id>] [--date YYYY-MM-DD] [--range 7|30|365]",
		Examples: []string{
			"orderctl search",
			"orderctl search --id 1051",
			"orderctl search --date 2026-10-14 --range 30",
		},
	})
	r.Register(&Command{
		Name:        "stats",
		Description: "Show order counts and revenue for the last N days",
		Usage:       "orderctl stats [--range 7|30|365]",
		Examples:    []string{"orderctl stats --range 30"},
	})
	r.Register(&Command{
		Name:        "accept",
		Description: "Accept a pending order",
		Usage:       "orderctl accept [--yes] <order id>",
		Examples:    []string{"orderctl accept 1052"},
	})
	r.Register(&Command{
		Name:        "cancel",
		Description: "Cancel a pending or confirmed order",
		Usage:       "orderctl cancel [--reason <text>] [--yes] <order id>",
		Examples: []string{
			"orderctl cancel 1051",
			`orderctl cancel --reason "Hết hàng" --yes 1051`,
		},
	})
	r.Register(&Command{
		Name:        "status",
		Description: "Force an order into a status",
		Usage:       "orderctl status [--yes] <order id> <pending|confirmed|shipping|completed|cancelled>",
		Examples:    []string{"orderctl status 1050 completed"},
	})
	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "orderctl version",
		Run: func([]string) error {
			fmt.Fprintf(a.stdout, "orderctl %s (commit %s, built %s)\n", r.version.Version, r.version.Commit, r.version.Date)
			return nil
		},
	})

	for name, run := range map[string]func(*Command, []string) error{
		"search": a.search,
		"stats":  a.stats,
		"accept": a.accept,
		"cancel": a.cancel,
		"status": a.updateStatus,
	} {
		cmd := r.commands[name]
		run := run
		cmd.Run = func(args []string) error { return run(cmd, args) }
	}
}

func newApp(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		ctx:    ctx,
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
		open:   openService,
	}
}
