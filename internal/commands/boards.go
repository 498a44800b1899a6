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
	Register(&BoardsCmd{})
	Register(&BoardCmd{})
	Register(&MkBoardCmd{})
	Register(&EditBoardCmd{})
	Register(&RmBoardCmd{})
	Register(&MembersCmd{})
	Register(&AddMemberCmd{})
}

// BoardsCmd implements the boards command.
type BoardsCmd struct{}

func (c *BoardsCmd) Name() string      { return "boards" }
func (c *BoardsCmd) Aliases() []string { return nil }
func (c *BoardsCmd) Synopsis() string  { return "Print all boards" }
func (c *BoardsCmd) Usage() string     { return "kanban boards [common flags]" }
func (c *BoardsCmd) NeedsAuth() bool   { return true }

func (c *BoardsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	boards, err := svc.ListBoards(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(boards) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no boards found")
		}
		return exitcode.Success
	}

	p := output.NewPrinter(out, cfg.Color)
	for _, b := range boards {
		p.Board(b)
	}
	return exitcode.Success
}

// BoardCmd implements the board command: a board with every column and its
// numbered tasks.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"show-board"} }
func (c *BoardCmd) Synopsis() string  { return "Print a board with its columns and tasks" }
func (c *BoardCmd) Usage() string     { return "kanban board [common flags] <board>" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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
	p.BoardHeader(board)
	num := 1
	for _, col := range layout.Columns {
		p.ColumnHeader(col.Column.Name)
		for _, t := range col.Tasks {
			p.TaskIndented(num, t)
			num++
		}
	}
	if len(layout.Columns) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no columns (run: kanban mkcol "+quoteArg(board.Name)+" <name>)")
	}
	return exitcode.Success
}

// quoteArg quotes s for display in a suggested command line.
func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// MkBoardCmd implements the mkboard command.
type MkBoardCmd struct {
	description string
	public      bool
}

func (c *MkBoardCmd) Name() string      { return "mkboard" }
func (c *MkBoardCmd) Aliases() []string { return []string{"addboard"} }
func (c *MkBoardCmd) Synopsis() string  { return "Create a board" }
func (c *MkBoardCmd) Usage() string {
	return "kanban mkboard [--description <text>] [--public] <name...>"
}
func (c *MkBoardCmd) NeedsAuth() bool { return true }

func (c *MkBoardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.BoolVar(&c.public, "public", false, "")
}

func (c *MkBoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usageError(errOut, "board name required")
	}

	// Refuse duplicates so boards stay addressable by name.
	_, err := resolveBoard(ctx, svc, name)
	switch {
	case err == nil, errors.Is(err, service.ErrAmbiguous):
		return usageError(errOut, "board already exists: %s", name)
	case !errors.Is(err, service.ErrNotFound):
		return reportError(errOut, err)
	}

	if _, err := svc.CreateBoard(ctx, service.BoardCreate{
		Name:        name,
		Description: strings.TrimSpace(c.description),
		IsPublic:    c.public,
	}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// EditBoardCmd implements the editboard command.
type EditBoardCmd struct {
	name        optString
	description optString
	public      optBool
}

func (c *EditBoardCmd) Name() string      { return "editboard" }
func (c *EditBoardCmd) Aliases() []string { return nil }
func (c *EditBoardCmd) Synopsis() string  { return "Rename or change a board" }
func (c *EditBoardCmd) Usage() string {
	return "kanban editboard [--name <name>] [--description <text>] [--public[=false]] <board>"
}
func (c *EditBoardCmd) NeedsAuth() bool { return true }

func (c *EditBoardCmd) RegisterFlags(fs *flag.FlagSet) {
	c.name, c.description, c.public = optString{}, optString{}, optBool{}
	fs.Var(&c.name, "name", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.public, "public", "")
}

func (c *EditBoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return usageError(errOut, "board required")
	}

	update := service.BoardUpdate{
		Name:        c.name.ptr(),
		Description: c.description.ptr(),
		IsPublic:    c.public.ptr(),
	}
	if update.Name == nil && update.Description == nil && update.IsPublic == nil {
		return usageError(errOut, "nothing to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return usageError(errOut, "board name required")
	}

	board, err := resolveBoard(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.UpdateBoard(ctx, board.ID, update); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// RmBoardCmd implements the rmboard command.
type RmBoardCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmBoardCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmBoardCmd) Name() string      { return "rmboard" }
func (c *RmBoardCmd) Aliases() []string { return nil }
func (c *RmBoardCmd) Synopsis() string  { return "Delete a board" }
func (c *RmBoardCmd) Usage() string     { return "kanban rmboard [--force] <board>" }
func (c *RmBoardCmd) NeedsAuth() bool   { return true }

func (c *RmBoardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmBoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return usageError(errOut, "board required")
	}

	board, err := resolveBoard(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}

	// Deleting a board deletes its tasks, so require --force unless empty.
	if !c.force {
		tasks, err := svc.ListTasks(ctx, board.ID)
		if err != nil {
			return reportError(errOut, err)
		}
		if len(tasks) > 0 {
			return usageError(errOut, "board not empty (use --force)")
		}
	}

	if err := svc.DeleteBoard(ctx, board.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// MembersCmd implements the members command.
type MembersCmd struct{}

func (c *MembersCmd) Name() string      { return "members" }
func (c *MembersCmd) Aliases() []string { return nil }
func (c *MembersCmd) Synopsis() string  { return "Print who a board is shared with" }
func (c *MembersCmd) Usage() string     { return "kanban members [common flags] <board>" }
func (c *MembersCmd) NeedsAuth() bool   { return true }

func (c *MembersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MembersCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return usageError(errOut, "board required")
	}

	board, err := resolveBoard(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	members, err := svc.ListBoardMembers(ctx, board.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(members) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no members")
		}
		return exitcode.Success
	}
	p := output.NewPrinter(out, cfg.Color)
	for _, m := range members {
		p.Member(m)
	}
	return exitcode.Success
}

// AddMemberCmd implements the addmember command.
type AddMemberCmd struct {
	role string
}

func (c *AddMemberCmd) Name() string      { return "addmember" }
func (c *AddMemberCmd) Aliases() []string { return []string{"share"} }
func (c *AddMemberCmd) Synopsis() string  { return "Share a board with a user" }
func (c *AddMemberCmd) Usage() string     { return "kanban addmember [--role member|owner] <board> <user-id>" }
func (c *AddMemberCmd) NeedsAuth() bool   { return true }

func (c *AddMemberCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.role, "role", string(service.RoleMember), "")
}

func (c *AddMemberCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		return usageError(errOut, "board and user ID required")
	}

	role := service.MemberRole(strings.ToLower(strings.TrimSpace(c.role)))
	if role != service.RoleMember && role != service.RoleOwner {
		return usageError(errOut, "invalid role: %s (want member or owner)", c.role)
	}

	board, err := resolveBoard(ctx, svc, args[0])
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.AddBoardMember(ctx, board.ID, service.BoardMemberCreate{
		UserID: strings.TrimSpace(args[1]),
		Role:   role,
	}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}
