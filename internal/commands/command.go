// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"kanban/internal/config"
	"kanban/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, API URL).
	// svc is nil unless NeedsService reports true for the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// ServiceUser is implemented by commands that call the backend without
// requiring a session, such as login and register.
type ServiceUser interface {
	NeedsService() bool
}

// NeedsService reports whether the dispatcher must build a service before
// running c.
func NeedsService(c Command) bool {
	if c.NeedsAuth() {
		return true
	}
	if su, ok := c.(ServiceUser); ok {
		return su.NeedsService()
	}
	return false
}
