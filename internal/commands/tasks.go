package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/output"
	"kanban/internal/service"
)

// now is the clock used for completion times.
var now = time.Now

func init() {
	Register(&TasksCmd{})
	Register(&ShowCmd{})
	Register(&AddCmd{})
	Register(&EditCmd{})
	Register(&MvCmd{})
	Register(&DoneCmd{})
	Register(&RmCmd{})
	Register(&SearchCmd{})
}

// taskRefError prints a task reference parse failure.
func taskRefError(errOut io.Writer, err error) int {
	return usageError(errOut, "%v", err)
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	column string
	status string
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "Print a board's tasks, numbered" }
func (c *TasksCmd) Usage() string {
	return "kanban tasks [common flags] [--column <column>] [--status <status>] <board>"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.column, "column", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return usageError(errOut, "board required")
	}

	var status service.TaskStatus
	if c.status != "" {
		st, err := parseStatus(c.status)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		status = st
	}

	board, err := resolveBoard(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	columnID := ""
	if strings.TrimSpace(c.column) != "" {
		col, err := resolveColumn(ctx, svc, board.ID, c.column)
		if err != nil {
			return reportError(errOut, err)
		}
		columnID = col.ID
	}

	layout, err := loadBoardLayout(ctx, svc, board)
	if err != nil {
		return reportError(errOut, err)
	}

	// Filtered views keep board numbering so a number always means the
	// same task.
	p := output.NewPrinter(out, cfg.Color)
	num, shown := 0, 0
	for _, col := range layout.Columns {
		for _, t := range col.Tasks {
			num++
			if columnID != "" && t.ColumnID != columnID {
				continue
			}
			if status != "" && t.Status != status {
				continue
			}
			p.Task(num, t)
			shown++
		}
	}
	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// ShowCmd implements the show command.
type ShowCmd struct {
	board string
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"cat"} }
func (c *ShowCmd) Synopsis() string  { return "Print every field of a task" }
func (c *ShowCmd) Usage() string     { return "kanban show [common flags] [--board <board>] <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}

	boardName, columnName, err := taskNames(ctx, svc, task)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out, cfg.Color).TaskDetail(task, boardName, columnName)
	return exitcode.Success
}

// taskNames looks up the board and column names of a task. A board or column
// the server no longer knows yields an empty name.
func taskNames(ctx context.Context, svc service.Service, t service.Task) (string, string, error) {
	var boardName, columnName string
	if t.BoardID != "" {
		b, err := svc.GetBoard(ctx, t.BoardID)
		switch {
		case err == nil:
			boardName = b.Name
		case service.HTTPStatus(err) != 404:
			return "", "", err
		}
	}
	if t.ColumnID != "" {
		col, err := svc.GetColumn(ctx, t.ColumnID)
		switch {
		case err == nil:
			columnName = col.Name
		case service.HTTPStatus(err) != 404:
			return "", "", err
		}
	}
	return boardName, columnName, nil
}

// AddCmd implements the add command.
type AddCmd struct {
	board       string
	column      string
	priority    string
	description string
	due         string
	tags        string
	assign      string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a task to a board" }
func (c *AddCmd) Usage() string {
	return "kanban add [common flags] --board <board> [--column <column>] [--priority <p>] [--description <text>] [--due YYYY-MM-DD] [--tags a,b] [--assign <user-id>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
	fs.StringVar(&c.column, "column", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.tags, "tags", "", "")
	fs.StringVar(&c.assign, "assign", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return usageError(errOut, "title required")
	}
	if strings.TrimSpace(c.board) == "" {
		return usageError(errOut, "board required (use --board)")
	}

	in := service.TaskCreate{
		Title:        title,
		Description:  strings.TrimSpace(c.description),
		AssignedToID: strings.TrimSpace(c.assign),
	}
	if c.priority != "" {
		p, err := parsePriority(c.priority)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		in.Priority = p
	}
	if c.due != "" {
		due, err := parseDue(c.due)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		in.DueDate = due
	}
	if c.tags != "" {
		in.Tags = parseTags(c.tags)
	}

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

	in.BoardID = board.ID
	in.ColumnID = col.ID
	in.Position = layout.ColumnCount(col.ID)
	if _, err := svc.CreateTask(ctx, in); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// targetColumn resolves ref on the layout's board, or picks the first column
// when ref is empty.
func targetColumn(ctx context.Context, svc service.Service, layout boardLayout, ref string) (service.Column, error) {
	if strings.TrimSpace(ref) != "" {
		return resolveColumn(ctx, svc, layout.Board.ID, ref)
	}
	for _, col := range layout.Columns {
		if col.Column.ID != "" {
			return col.Column, nil
		}
	}
	return service.Column{}, service.NotFoundf("board has no columns (run: kanban mkcol %s <name>)", quoteArg(layout.Board.Name))
}

// EditCmd implements the edit command.
type EditCmd struct {
	board       string
	title       optString
	description optString
	priority    optString
	status      optString
	due         optString
	tags        optString
	assign      optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's fields" }
func (c *EditCmd) Usage() string {
	return "kanban edit [common flags] [--board <board>] [--title <t>] [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD] [--tags a,b] [--assign <user-id>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.priority, c.status = optString{}, optString{}, optString{}, optString{}
	c.due, c.tags, c.assign = optString{}, optString{}, optString{}
	fs.StringVar(&c.board, "board", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.tags, "tags", "")
	fs.Var(&c.assign, "assign", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	update, err := c.update()
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.UpdateTask(ctx, task.ID, update); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// update builds the TaskUpdate from the flags that were given.
func (c *EditCmd) update() (service.TaskUpdate, error) {
	var u service.TaskUpdate
	changed := false

	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if title == "" {
			return u, fmt.Errorf("title required")
		}
		u.Title = &title
		changed = true
	}
	if c.description.set {
		u.Description = c.description.ptr()
		changed = true
	}
	if c.priority.set {
		p, err := parsePriority(c.priority.value)
		if err != nil {
			return u, err
		}
		u.Priority = &p
		changed = true
	}
	if c.status.set {
		st, err := parseStatus(c.status.value)
		if err != nil {
			return u, err
		}
		u.Status = &st
		if st == service.StatusDone {
			u.CompletedAt = service.TimeRef(now())
		}
		changed = true
	}
	if c.due.set {
		due, err := parseDue(c.due.value)
		if err != nil {
			return u, err
		}
		u.DueDate = due
		changed = true
	}
	if c.tags.set {
		// An empty list clears the tags, so it must still be sent.
		tags := parseTags(c.tags.value)
		u.Tags = &tags
		changed = true
	}
	if c.assign.set {
		assign := strings.TrimSpace(c.assign.value)
		u.AssignedToID = &assign
		changed = true
	}

	if !changed {
		return u, fmt.Errorf("nothing to update")
	}
	return u, nil
}

// MvCmd implements the mv command.
type MvCmd struct {
	board    string
	position optInt
}

func (c *MvCmd) Name() string      { return "mv" }
func (c *MvCmd) Aliases() []string { return []string{"move"} }
func (c *MvCmd) Synopsis() string  { return "Move a task to another column" }
func (c *MvCmd) Usage() string {
	return "kanban mv [common flags] [--board <board>] [--position <n>] <ref> <column...>"
}
func (c *MvCmd) NeedsAuth() bool { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {
	c.position = optInt{}
	fs.StringVar(&c.board, "board", "", "")
	fs.Var(&c.position, "position", "")
}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}
	columnRef := strings.TrimSpace(strings.Join(args[1:], " "))
	if columnRef == "" {
		return usageError(errOut, "column required")
	}
	if c.position.set && c.position.value < 0 {
		return usageError(errOut, "invalid position: %d", c.position.value)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	col, err := resolveColumn(ctx, svc, task.BoardID, columnRef)
	if err != nil {
		return reportError(errOut, err)
	}

	// Without --position the task goes to the end of the column.
	position := c.position.value
	if !c.position.set {
		tasks, err := svc.ListTasks(ctx, task.BoardID)
		if err != nil {
			return reportError(errOut, err)
		}
		position = 0
		for _, t := range tasks {
			if t.ColumnID == col.ID && t.ID != task.ID {
				position++
			}
		}
	}

	if _, err := svc.UpdateTask(ctx, task.ID, service.TaskUpdate{
		ColumnID: &col.ID,
		Position: &position,
	}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// DoneCmd implements the done command.
type DoneCmd struct {
	board string
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task done" }
func (c *DoneCmd) Usage() string     { return "kanban done [common flags] [--board <board>] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if task.Status == service.StatusDone {
		return printOK(cfg, out)
	}

	status := service.StatusDone
	if _, err := svc.UpdateTask(ctx, task.ID, service.TaskUpdate{
		Status:      &status,
		CompletedAt: service.TimeRef(now()),
	}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// RmCmd implements the rm command.
type RmCmd struct {
	board string
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete", "del"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "kanban rm [common flags] [--board <board>] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// SearchCmd implements the search command.
type SearchCmd struct {
	board string
}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"find"} }
func (c *SearchCmd) Synopsis() string  { return "Search task titles and descriptions" }
func (c *SearchCmd) Usage() string     { return "kanban search [common flags] [--board <board>] <query...>" }
func (c *SearchCmd) NeedsAuth() bool   { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return usageError(errOut, "query required")
	}

	boardID := ""
	if strings.TrimSpace(c.board) != "" {
		board, err := resolveBoard(ctx, svc, c.board)
		if err != nil {
			return reportError(errOut, err)
		}
		boardID = board.ID
	}

	tasks, err := svc.SearchTasks(ctx, query, boardID)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	p := output.NewPrinter(out, cfg.Color)
	for _, t := range tasks {
		p.TaskWithID(t)
	}
	return exitcode.Success
}
