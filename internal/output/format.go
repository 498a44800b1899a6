// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"kanban/internal/service"
)

const (
	// ColumnSeparator is the separator line around column and board headers.
	ColumnSeparator = "------------"

	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04"
)

// Printer writes formatted entities to w. Colors are only emitted when
// enabled, regardless of what fatih/color detects for the process.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, colorEnabled bool) *Printer {
	return &Printer{w: w, color: colorEnabled}
}

func (p *Printer) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Board formats a board line: "{ID}  {NAME}", with " [public]" for public boards.
func (p *Printer) Board(b service.Board) {
	line := b.ID + "  " + normalizeName(b.Name)
	if b.IsPublic {
		line += " " + p.paint("[public]", color.FgCyan)
	}
	fmt.Fprintln(p.w, line)
}

// BoardHeader formats the header of a board view.
func (p *Printer) BoardHeader(b service.Board) {
	fmt.Fprintln(p.w, p.paint(normalizeName(b.Name), color.Bold))
	if desc := strings.TrimSpace(b.Description); desc != "" {
		fmt.Fprintln(p.w, oneLine(desc))
	}
}

// ColumnHeader formats a column section header.
func (p *Printer) ColumnHeader(name string) {
	fmt.Fprintln(p.w, ColumnSeparator)
	fmt.Fprintln(p.w, normalizeName(name))
	fmt.Fprintln(p.w, ColumnSeparator)
}

// Column formats a column line: "{ID}  {NAME} ({COUNT})".
func (p *Printer) Column(c service.Column, taskCount int) {
	fmt.Fprintf(p.w, "%s  %s (%d)\n", c.ID, normalizeName(c.Name), taskCount)
}

// Task formats a numbered task line.
// Format: "{N:>4}  {TITLE}{BADGES}\n"
func (p *Printer) Task(num int, t service.Task) {
	fmt.Fprintf(p.w, "%4d  %s%s\n", num, normalizeTitle(t.Title), p.badges(t))
}

// TaskIndented formats a numbered task line inside a column section.
func (p *Printer) TaskIndented(num int, t service.Task) {
	fmt.Fprintf(p.w, "    %4d  %s%s\n", num, normalizeTitle(t.Title), p.badges(t))
}

// TaskWithID formats a task line keyed by ID, used where numbering has no
// meaning (search results across boards).
func (p *Printer) TaskWithID(t service.Task) {
	fmt.Fprintf(p.w, "%s  %s%s\n", t.ID, normalizeTitle(t.Title), p.badges(t))
}

// badges renders non-default priority and status after a title.
func (p *Printer) badges(t service.Task) string {
	var b strings.Builder
	switch t.Priority {
	case service.PriorityLow:
		b.WriteString(" " + p.paint("[low]", color.Faint))
	case service.PriorityHigh:
		b.WriteString(" " + p.paint("[high]", color.FgYellow))
	case service.PriorityUrgent:
		b.WriteString(" " + p.paint("[urgent]", color.FgRed, color.Bold))
	}
	switch t.Status {
	case service.StatusInProgress:
		b.WriteString(" " + p.paint("(in progress)", color.FgCyan))
	case service.StatusReview:
		b.WriteString(" " + p.paint("(review)", color.FgMagenta))
	case service.StatusDone:
		b.WriteString(" " + p.paint("(done)", color.FgGreen))
	}
	return b.String()
}

// TaskDetail formats every field of a task. boardName and columnName may be
// empty, in which case the IDs are shown.
func (p *Printer) TaskDetail(t service.Task, boardName, columnName string) {
	fmt.Fprintln(p.w, p.paint(normalizeTitle(t.Title), color.Bold))

	field := func(name, value string) {
		fmt.Fprintf(p.w, "  %-10s %s\n", name+":", value)
	}
	field("id", t.ID)
	field("board", orID(boardName, t.BoardID))
	field("column", orID(columnName, t.ColumnID))
	field("status", string(t.Status))
	field("priority", string(t.Priority))
	if t.AssignedToID != "" {
		field("assignee", t.AssignedToID)
	}
	if t.DueDate != nil {
		field("due", t.DueDate.Format(dateFormat))
	}
	if len(t.Tags) > 0 {
		field("tags", strings.Join(t.Tags, ", "))
	}
	if t.CompletedAt != nil {
		field("completed", t.CompletedAt.Format(dateTimeFormat))
	}
	field("created", t.CreatedAt.Format(dateTimeFormat))

	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintln(p.w)
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintln(p.w, "  "+strings.TrimRight(line, "\r"))
		}
	}
}

// Comment formats a comment line: "{ID}  {CREATED}  {CONTENT}".
func (p *Printer) Comment(c service.Comment) {
	fmt.Fprintf(p.w, "%s  %s  %s\n", c.ID, p.paint(c.CreatedAt.Format(dateTimeFormat), color.Faint), oneLine(c.Content))
}

// Member formats a board member line: "{USER_ID}  {ROLE}".
func (p *Printer) Member(m service.BoardMember) {
	fmt.Fprintf(p.w, "%s  %s\n", m.UserID, m.Role)
}

// Attachment formats an attachment line: "{ID}  {FILENAME}  ({SIZE})".
func (p *Printer) Attachment(a service.Attachment) {
	fmt.Fprintf(p.w, "%s  %s  (%s)\n", a.ID, a.Filename, humanSize(a.FileSize))
}

// User formats the current user: "{USERNAME} <{EMAIL}>", plus the full name
// on its own line when set.
func (p *Printer) User(u service.User) {
	fmt.Fprintf(p.w, "%s <%s>\n", u.Username, u.Email)
	if name := strings.TrimSpace(u.FullName); name != "" {
		fmt.Fprintln(p.w, name)
	}
}

func orID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// oneLine replaces line breaks with spaces.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeName normalizes a board or column name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
