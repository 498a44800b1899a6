// Package main is the entry point for the kanban CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"kanban/internal/cli"
	"kanban/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// A nil factory talks to the configured REST API.
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)
	fd := os.Stdout.Fd()
	dispatcher.SetColor(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
