package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/output"
	"kanban/internal/service"
)

func init() {
	Register(&RegisterCmd{})
	Register(&LoginCmd{})
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
	Register(&ProfileCmd{})
}

// readPassword returns the first line of in without its line ending.
func readPassword(in io.Reader) (string, error) {
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// passwordFrom returns flagValue if set, else a line read from in.
func passwordFrom(flagValue string, in io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	pw, err := readPassword(in)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password required (use --password or stdin)")
	}
	return pw, nil
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	fullName string
	password string
	in       io.Reader
}

// SetInput sets where the password is read from (for testing).
func (c *RegisterCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetEmail sets the email (for testing).
func (c *RegisterCmd) SetEmail(email string) {
	c.email = email
}

func (c *RegisterCmd) Name() string       { return "register" }
func (c *RegisterCmd) Aliases() []string  { return nil }
func (c *RegisterCmd) Synopsis() string   { return "Create an account" }
func (c *RegisterCmd) Usage() string      { return "kanban register --email <email> [--name <full name>] [--password <pw>] <username>" }
func (c *RegisterCmd) NeedsAuth() bool    { return false }
func (c *RegisterCmd) NeedsService() bool { return true }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.fullName, "name", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "username required")
	}
	if strings.TrimSpace(c.email) == "" {
		return usageError(errOut, "email required")
	}

	password, err := passwordFrom(c.password, c.in)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	user, err := svc.Register(ctx, service.UserCreate{
		Username: strings.TrimSpace(args[0]),
		Email:    strings.TrimSpace(c.email),
		FullName: strings.TrimSpace(c.fullName),
		Password: password,
	})
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered %s (run: kanban login %s)\n", user.Username, user.Username)
	}
	return exitcode.Success
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
	force    bool
	in       io.Reader
}

// SetInput sets where the password is read from (for testing).
func (c *LoginCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetForce sets the force flag (for testing).
func (c *LoginCmd) SetForce(force bool) {
	c.force = force
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Log in to the kanban server" }
func (c *LoginCmd) Usage() string      { return "kanban login [--password <pw>] [--force] <username>" }
func (c *LoginCmd) NeedsAuth() bool    { return false }
func (c *LoginCmd) NeedsService() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "username required")
	}

	if svc.LoggedIn() && !c.force {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in (use --force to switch user)")
		}
		return exitcode.Success
	}

	password, err := passwordFrom(c.password, c.in)
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := svc.Login(ctx, strings.TrimSpace(args[0]), password); err != nil {
		if status := service.HTTPStatus(err); status >= 400 && status < 500 {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		return reportError(errOut, err)
	}

	return printOK(cfg, out)
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string      { return "kanban logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool    { return false }
func (c *LogoutCmd) NeedsService() bool { return true }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !svc.LoggedIn() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	svc.Logout()
	return printOK(cfg, out)
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Print the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "kanban whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out, cfg.Color).User(user)
	return exitcode.Success
}

// ProfileCmd implements the profile command.
type ProfileCmd struct {
	email         optString
	fullName      optString
	passwordStdin bool
	in            io.Reader
}

// SetInput sets where the new password is read from (for testing).
func (c *ProfileCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return nil }
func (c *ProfileCmd) Synopsis() string  { return "Update the logged-in user" }
func (c *ProfileCmd) Usage() string {
	return "kanban profile [--email <email>] [--name <full name>] [--password-stdin]"
}
func (c *ProfileCmd) NeedsAuth() bool { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	c.email, c.fullName = optString{}, optString{}
	fs.Var(&c.email, "email", "")
	fs.Var(&c.fullName, "name", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	update := service.UserUpdate{
		Email:    c.email.ptr(),
		FullName: c.fullName.ptr(),
	}
	if c.passwordStdin {
		pw, err := readPassword(c.in)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		if pw == "" {
			return usageError(errOut, "password required")
		}
		update.Password = &pw
	}
	if update.Email == nil && update.FullName == nil && update.Password == nil {
		return usageError(errOut, "nothing to update")
	}

	user, err := svc.UpdateCurrentUser(ctx, update)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out, cfg.Color).User(user)
	return exitcode.Success
}
