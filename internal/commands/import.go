package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"kanban/internal/backend/googletasks"
	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/service"
)

// errGoogleLoginRequired is returned when no Google token is stored.
var errGoogleLoginRequired = errors.New("not logged in to Google (run: kanban google-login)")

// ImportSourceFactory builds the task source for import. Tests replace it.
var ImportSourceFactory = func(ctx context.Context, cfg *config.Config) (service.TaskSource, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%s not found in %s (run: kanban google-login)", config.OAuthClientFile, cfg.Dir)
	}
	if !cfg.HasGoogleToken() {
		return nil, errGoogleLoginRequired
	}
	return googletasks.New(ctx, cfg)
}

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command: copies the open tasks of a Google
// Tasks list into a board column.
type ImportCmd struct {
	board  string
	column string
}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import open tasks from Google Tasks" }
func (c *ImportCmd) Usage() string {
	return "kanban import [common flags] [--board <board> [--column <column>] <google-list...>]"
}
func (c *ImportCmd) NeedsAuth() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
	fs.StringVar(&c.column, "column", "", "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	listName := strings.TrimSpace(strings.Join(args, " "))
	if listName != "" && strings.TrimSpace(c.board) == "" {
		return usageError(errOut, "board required (use --board)")
	}

	source, err := ImportSourceFactory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if listName == "" {
		return c.printLists(ctx, cfg, source, out, errOut)
	}

	// Resolve the destination before reading from Google so a typo in
	// --board costs no API calls.
	board, err := resolveBoard(ctx, svc, c.board)
	if err != nil {
		return reportError(errOut, err)
	}
	layout, err := loadBoardLayout(ctx, svc, board)
	if err != nil {
		return reportError(errOut, err)
	}
	col, err := targetColumn(ctx, svc, layout, c.column)
	if err != nil {
		return reportError(errOut, err)
	}

	list, err := source.ResolveList(ctx, listName)
	if err != nil {
		return reportError(errOut, err)
	}
	tasks, err := source.ListOpenTasks(ctx, list.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	position := layout.ColumnCount(col.ID)
	imported := 0
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		in := service.TaskCreate{
			BoardID:     board.ID,
			ColumnID:    col.ID,
			Title:       title,
			Description: strings.TrimSpace(t.Notes),
			Position:    position,
		}
		if t.Due != nil {
			in.DueDate = service.TimeRef(*t.Due)
		}
		if _, err := svc.CreateTask(ctx, in); err != nil {
			if imported > 0 {
				fmt.Fprintf(errOut, "imported %d of %d tasks before failing\n", imported, len(tasks))
			}
			return reportError(errOut, err)
		}
		position++
		imported++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d %s\n", imported, plural(imported, "task", "tasks"))
	}
	return exitcode.Success
}

func (c *ImportCmd) printLists(ctx context.Context, cfg *config.Config, source service.TaskSource, out, errOut io.Writer) int {
	lists, err := source.ListLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no google lists found")
		}
		return exitcode.Success
	}
	for _, l := range lists {
		title := l.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(out, "%s  %s\n", l.ID, title)
	}
	return exitcode.Success
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
