package commands

import (
	"context"
	"sort"
	"strings"

	"kanban/internal/service"
)

// resolveBoard finds a board by ID, or by name (case-insensitive, trimmed).
func resolveBoard(ctx context.Context, svc service.Service, ref string) (service.Board, error) {
	ref = strings.TrimSpace(ref)

	boards, err := svc.ListBoards(ctx)
	if err != nil {
		return service.Board{}, err
	}

	for _, b := range boards {
		if b.ID == ref {
			return b, nil
		}
	}

	var matches []service.Board
	for _, b := range boards {
		if strings.EqualFold(strings.TrimSpace(b.Name), ref) {
			matches = append(matches, b)
		}
	}

	switch len(matches) {
	case 0:
		return service.Board{}, service.NotFoundf("board not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return service.Board{}, service.Ambiguousf("ambiguous board name: %s", ref)
	}
}

// resolveColumn finds a column of a board by ID, or by name
// (case-insensitive, trimmed).
func resolveColumn(ctx context.Context, svc service.Service, boardID, ref string) (service.Column, error) {
	ref = strings.TrimSpace(ref)

	columns, err := svc.ListColumns(ctx, boardID)
	if err != nil {
		return service.Column{}, err
	}

	for _, c := range columns {
		if c.ID == ref {
			return c, nil
		}
	}

	var matches []service.Column
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c.Name), ref) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return service.Column{}, service.NotFoundf("column not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return service.Column{}, service.Ambiguousf("ambiguous column name: %s", ref)
	}
}

// columnTasks is one column of a board view with its tasks in display order.
type columnTasks struct {
	Column service.Column
	Tasks  []service.Task
}

// boardLayout is a board's columns in position order, each with its tasks in
// position order. Task numbers run from 1 across all columns in that order.
type boardLayout struct {
	Board   service.Board
	Columns []columnTasks
}

// orphanColumnName heads tasks whose column is not on the board.
const orphanColumnName = "(no column)"

// loadBoardLayout fetches a board's columns and tasks and orders them.
func loadBoardLayout(ctx context.Context, svc service.Service, board service.Board) (boardLayout, error) {
	columns, err := svc.ListColumns(ctx, board.ID)
	if err != nil {
		return boardLayout{}, err
	}
	tasks, err := svc.ListTasks(ctx, board.ID)
	if err != nil {
		return boardLayout{}, err
	}
	return buildLayout(board, columns, tasks), nil
}

func buildLayout(board service.Board, columns []service.Column, tasks []service.Task) boardLayout {
	sorted := make([]service.Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	layout := boardLayout{Board: board}
	index := make(map[string]int, len(sorted))
	for i, c := range sorted {
		index[c.ID] = i
		layout.Columns = append(layout.Columns, columnTasks{Column: c})
	}

	var orphans []service.Task
	for _, t := range tasks {
		if i, ok := index[t.ColumnID]; ok {
			layout.Columns[i].Tasks = append(layout.Columns[i].Tasks, t)
		} else {
			orphans = append(orphans, t)
		}
	}
	if len(orphans) > 0 {
		layout.Columns = append(layout.Columns, columnTasks{
			Column: service.Column{Name: orphanColumnName},
			Tasks:  orphans,
		})
	}

	for i := range layout.Columns {
		ts := layout.Columns[i].Tasks
		sort.SliceStable(ts, func(a, b int) bool { return ts[a].Position < ts[b].Position })
	}
	return layout
}

// Count returns the number of tasks on the board.
func (l boardLayout) Count() int {
	n := 0
	for _, c := range l.Columns {
		n += len(c.Tasks)
	}
	return n
}

// TaskByNumber returns the task with 1-based number num.
func (l boardLayout) TaskByNumber(num int) (service.Task, error) {
	if num >= 1 {
		n := num
		for _, c := range l.Columns {
			if n <= len(c.Tasks) {
				return c.Tasks[n-1], nil
			}
			n -= len(c.Tasks)
		}
	}
	return service.Task{}, service.NotFoundf("task number out of range: %d", num)
}

// ColumnName returns the name of the column with id, or "".
func (l boardLayout) ColumnName(id string) string {
	for _, c := range l.Columns {
		if c.Column.ID == id && id != "" {
			return c.Column.Name
		}
	}
	return ""
}

// ColumnCount returns the number of tasks in the column with id.
func (l boardLayout) ColumnCount(id string) int {
	for _, c := range l.Columns {
		if c.Column.ID == id && id != "" {
			return len(c.Tasks)
		}
	}
	return 0
}

// resolveTask finds the task a reference points at. A numeric reference
// with a board is a position on that board; anything else is a task ID.
func resolveTask(ctx context.Context, svc service.Service, boardRef string, ref TaskRef) (service.Task, error) {
	if !ref.IsNumber() || strings.TrimSpace(boardRef) == "" {
		return svc.GetTask(ctx, ref.Raw)
	}
	if ref.Num < 1 {
		return service.Task{}, service.NotFoundf("task number out of range: %s", ref.Raw)
	}

	board, err := resolveBoard(ctx, svc, boardRef)
	if err != nil {
		return service.Task{}, err
	}
	layout, err := loadBoardLayout(ctx, svc, board)
	if err != nil {
		return service.Task{}, err
	}
	return layout.TaskByNumber(ref.Num)
}
