package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "kanban help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	name := strings.TrimSpace(args[0])
	cmd, ok := DefaultRegistry.Find(name)
	if !ok {
		if s := DefaultRegistry.Suggest(name); s != "" {
			return usageError(errOut, "unknown command: %s (did you mean %s?)", name, s)
		}
		return usageError(errOut, "unknown command: %s", name)
	}

	fmt.Fprintf(out, "%s - %s\n\nUsage:\n  %s\n", cmd.Name(), cmd.Synopsis(), cmd.Usage())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
	}
	return exitcode.Success
}

const helpText = `Usage:
  kanban                                           List boards
  kanban register [--email <e>] [--name <n>] [--password <p>] <username>
  kanban login [--password <p>] [--force] <username>
  kanban logout
  kanban whoami
  kanban profile [--email <e>] [--name <n>] [--password-stdin]

  kanban boards
  kanban board <board>                             Columns and numbered tasks
  kanban mkboard [--description <d>] [--public] <name...>
  kanban editboard [--name <n>] [--description <d>] [--public[=false]] <board>
  kanban rmboard [--force] <board>
  kanban members <board>
  kanban addmember [--role member|owner] <board> <user-id>

  kanban columns <board>
  kanban mkcol [--position <n>] [--color <hex>] <board> <name...>
  kanban editcol [--name <n>] [--position <n>] [--color <hex>] <board> <column>
  kanban rmcol [--force] <board> <column>

  kanban tasks [--column <c>] [--status <s>] <board>
  kanban show [--board <board>] <ref>
  kanban add --board <board> [--column <c>] [--priority <p>] [--description <d>]
             [--due YYYY-MM-DD] [--tags a,b] [--assign <user-id>] <title...>
  kanban edit [--board <board>] [--title <t>] [--description <d>] [--priority <p>]
              [--status <s>] [--due YYYY-MM-DD] [--tags a,b] [--assign <user-id>] <ref>
  kanban mv [--board <board>] [--position <n>] <ref> <column...>
  kanban done [--board <board>] <ref>
  kanban rm [--board <board>] <ref>
  kanban search [--board <board>] <query...>

  kanban comments [--board <board>] <ref>
  kanban comment [--board <board>] <ref> <text...>
  kanban editcomment <comment-id> <text...>
  kanban rmcomment <comment-id>
  kanban attachments [--board <board>] <ref>
  kanban attach [--board <board>] [--name <filename>] <ref> <file>
  kanban getattach [--output <file>] [--force] <attachment-id>
  kanban rmattach <attachment-id>

  kanban google-login [--force]
  kanban import                                    List Google Tasks lists
  kanban import --board <board> [--column <c>] <google-list...>

  kanban help [<command>]
  kanban version

A <ref> is a task ID, or a task number from 'kanban board' when --board is given.
Boards and columns are matched by ID or by name (case-insensitive).

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --no-color       Disable colored output
`
