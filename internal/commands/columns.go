package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/output"
	"kanban/internal/service"
)

func init() {
	Register(&ColumnsCmd{})
	Register(&MkColCmd{})
	Register(&EditColCmd{})
	Register(&RmColCmd{})
}

// ColumnsCmd implements the columns command.
type ColumnsCmd struct{}

func (c *ColumnsCmd) Name() string      { return "columns" }
func (c *ColumnsCmd) Aliases() []string { return []string{"cols"} }
func (c *ColumnsCmd) Synopsis() string  { return "Print a board's columns" }
func (c *ColumnsCmd) Usage() string     { return "kanban columns [common flags] <board>" }
func (c *ColumnsCmd) NeedsAuth() bool   { return true }

func (c *ColumnsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ColumnsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return usageError(errOut, "board required")
	}

	board, err := resolveBoard(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	layout, err := loadBoardLayout(ctx, svc, board)
	if err != nil {
		return reportError(errOut, err)
	}

	p := output.NewPrinter(out, cfg.Color)
	shown := 0
	for _, col := range layout.Columns {
		if col.Column.ID == "" {
			continue
		}
		p.Column(col.Column, len(col.Tasks))
		shown++
	}
	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no columns found")
	}
	return exitcode.Success
}

// MkColCmd implements the mkcol command.
type MkColCmd struct {
	position optInt
	color    string
}

func (c *MkColCmd) Name() string      { return "mkcol" }
func (c *MkColCmd) Aliases() []string { return []string{"addcol"} }
func (c *MkColCmd) Synopsis() string  { return "Add a column to a board" }
func (c *MkColCmd) Usage() string {
	return "kanban mkcol [--position <n>] [--color <hex>] <board> <name...>"
}
func (c *MkColCmd) NeedsAuth() bool { return true }

func (c *MkColCmd) RegisterFlags(fs *flag.FlagSet) {
	c.position = optInt{}
	fs.Var(&c.position, "position", "")
	fs.StringVar(&c.color, "color", "", "")
}

func (c *MkColCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return usageError(errOut, "board and column name required")
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return usageError(errOut, "column name required")
	}
	if c.position.set && c.position.value < 0 {
		return usageError(errOut, "invalid position: %d", c.position.value)
	}

	board, err := resolveBoard(ctx, svc, args[0])
	if err != nil {
		return reportError(errOut, err)
	}
	columns, err := svc.ListColumns(ctx, board.ID)
	if err != nil {
		return reportError(errOut, err)
	}
	for _, col := range columns {
		if strings.EqualFold(strings.TrimSpace(col.Name), name) {
			return usageError(errOut, "column already exists: %s", name)
		}
	}

	// New columns go after the last one unless a position is given.
	position := 0
	for _, col := range columns {
		if col.Position >= position {
			position = col.Position + 1
		}
	}
	if c.position.set {
		position = c.position.value
	}

	if _, err := svc.CreateColumn(ctx, service.ColumnCreate{
		BoardID:  board.ID,
		Name:     name,
		Position: position,
		Color:    strings.TrimSpace(c.color),
	}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// EditColCmd implements the editcol command.
type EditColCmd struct {
	name     optString
	position optInt
	color    optString
}

func (c *EditColCmd) Name() string      { return "editcol" }
func (c *EditColCmd) Aliases() []string { return nil }
func (c *EditColCmd) Synopsis() string  { return "Rename, move or recolor a column" }
func (c *EditColCmd) Usage() string {
	return "kanban editcol [--name <name>] [--position <n>] [--color <hex>] <board> <column>"
}
func (c *EditColCmd) NeedsAuth() bool { return true }

func (c *EditColCmd) RegisterFlags(fs *flag.FlagSet) {
	c.name, c.position, c.color = optString{}, optInt{}, optString{}
	fs.Var(&c.name, "name", "")
	fs.Var(&c.position, "position", "")
	fs.Var(&c.color, "color", "")
}

func (c *EditColCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return usageError(errOut, "board and column required")
	}

	update := service.ColumnUpdate{
		Name:     c.name.ptr(),
		Position: c.position.ptr(),
		Color:    c.color.ptr(),
	}
	if update.Name == nil && update.Position == nil && update.Color == nil {
		return usageError(errOut, "nothing to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return usageError(errOut, "column name required")
	}
	if update.Position != nil && *update.Position < 0 {
		return usageError(errOut, "invalid position: %d", *update.Position)
	}

	col, err := findColumn(ctx, svc, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.UpdateColumn(ctx, col.ID, update); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// RmColCmd implements the rmcol command.
type RmColCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmColCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmColCmd) Name() string      { return "rmcol" }
func (c *RmColCmd) Aliases() []string { return nil }
func (c *RmColCmd) Synopsis() string  { return "Delete a column" }
func (c *RmColCmd) Usage() string     { return "kanban rmcol [--force] <board> <column>" }
func (c *RmColCmd) NeedsAuth() bool   { return true }

func (c *RmColCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmColCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return usageError(errOut, "board and column required")
	}

	board, err := resolveBoard(ctx, svc, args[0])
	if err != nil {
		return reportError(errOut, err)
	}
	col, err := resolveColumn(ctx, svc, board.ID, strings.Join(args[1:], " "))
	if err != nil {
		return reportError(errOut, err)
	}

	if !c.force {
		layout, err := loadBoardLayout(ctx, svc, board)
		if err != nil {
			return reportError(errOut, err)
		}
		if layout.ColumnCount(col.ID) > 0 {
			return usageError(errOut, "column not empty (use --force)")
		}
	}

	if err := svc.DeleteColumn(ctx, col.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// findColumn resolves a board and then one of its columns.
func findColumn(ctx context.Context, svc service.Service, boardRef, columnRef string) (service.Column, error) {
	if strings.TrimSpace(columnRef) == "" {
		return service.Column{}, errors.New("column required")
	}
	board, err := resolveBoard(ctx, svc, boardRef)
	if err != nil {
		return service.Column{}, err
	}
	return resolveColumn(ctx, svc, board.ID, columnRef)
}
