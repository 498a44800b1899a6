package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/service"
)

// reportError prints err to errOut and returns its exit code.
//
//   - session rejected: auth error with a login hint
//   - lookup failures and 4xx responses: user error
//   - everything else: backend error
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fmt.Fprintln(errOut, "error: not logged in (run: kanban login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintln(errOut, "error: backend error: request timed out")
		return exitcode.BackendError
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.BackendError
	}

	if status := service.HTTPStatus(err); status >= 400 && status < 500 {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// usageError prints a user error.
func usageError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// printOK prints "ok" unless --quiet was given.
func printOK(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

