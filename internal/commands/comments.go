package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kanban/internal/config"
	"kanban/internal/exitcode"
	"kanban/internal/output"
	"kanban/internal/service"
)

func init() {
	Register(&CommentsCmd{})
	Register(&CommentCmd{})
	Register(&EditCommentCmd{})
	Register(&RmCommentCmd{})
	Register(&AttachmentsCmd{})
	Register(&AttachCmd{})
	Register(&GetAttachCmd{})
	Register(&RmAttachCmd{})
}

// CommentsCmd implements the comments command.
type CommentsCmd struct {
	board string
}

func (c *CommentsCmd) Name() string      { return "comments" }
func (c *CommentsCmd) Aliases() []string { return nil }
func (c *CommentsCmd) Synopsis() string  { return "Print a task's comments" }
func (c *CommentsCmd) Usage() string     { return "kanban comments [common flags] [--board <board>] <ref>" }
func (c *CommentsCmd) NeedsAuth() bool   { return true }

func (c *CommentsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *CommentsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	comments, err := svc.ListComments(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(comments) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no comments")
		}
		return exitcode.Success
	}
	p := output.NewPrinter(out, cfg.Color)
	for _, cm := range comments {
		p.Comment(cm)
	}
	return exitcode.Success
}

// CommentCmd implements the comment command.
type CommentCmd struct {
	board string
}

func (c *CommentCmd) Name() string      { return "comment" }
func (c *CommentCmd) Aliases() []string { return nil }
func (c *CommentCmd) Synopsis() string  { return "Comment on a task" }
func (c *CommentCmd) Usage() string {
	return "kanban comment [common flags] [--board <board>] <ref> <text...>"
}
func (c *CommentCmd) NeedsAuth() bool { return true }

func (c *CommentCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *CommentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return usageError(errOut, "comment text required")
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.CreateComment(ctx, service.CommentCreate{TaskID: task.ID, Content: text}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// EditCommentCmd implements the editcomment command.
type EditCommentCmd struct{}

func (c *EditCommentCmd) Name() string      { return "editcomment" }
func (c *EditCommentCmd) Aliases() []string { return nil }
func (c *EditCommentCmd) Synopsis() string  { return "Replace a comment's text" }
func (c *EditCommentCmd) Usage() string     { return "kanban editcomment [common flags] <comment-id> <text...>" }
func (c *EditCommentCmd) NeedsAuth() bool   { return true }

func (c *EditCommentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCommentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "comment ID required")
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return usageError(errOut, "comment text required")
	}

	if _, err := svc.UpdateComment(ctx, strings.TrimSpace(args[0]), service.CommentUpdate{Content: &text}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// RmCommentCmd implements the rmcomment command.
type RmCommentCmd struct{}

func (c *RmCommentCmd) Name() string      { return "rmcomment" }
func (c *RmCommentCmd) Aliases() []string { return nil }
func (c *RmCommentCmd) Synopsis() string  { return "Delete a comment" }
func (c *RmCommentCmd) Usage() string     { return "kanban rmcomment [common flags] <comment-id>" }
func (c *RmCommentCmd) NeedsAuth() bool   { return true }

func (c *RmCommentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCommentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "comment ID required")
	}
	if err := svc.DeleteComment(ctx, strings.TrimSpace(args[0])); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// AttachmentsCmd implements the attachments command.
type AttachmentsCmd struct {
	board string
}

func (c *AttachmentsCmd) Name() string      { return "attachments" }
func (c *AttachmentsCmd) Aliases() []string { return nil }
func (c *AttachmentsCmd) Synopsis() string  { return "Print a task's attachments" }
func (c *AttachmentsCmd) Usage() string {
	return "kanban attachments [common flags] [--board <board>] <ref>"
}
func (c *AttachmentsCmd) NeedsAuth() bool { return true }

func (c *AttachmentsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
}

func (c *AttachmentsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	attachments, err := svc.ListAttachments(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(attachments) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no attachments")
		}
		return exitcode.Success
	}
	p := output.NewPrinter(out, cfg.Color)
	for _, a := range attachments {
		p.Attachment(a)
	}
	return exitcode.Success
}

// AttachCmd implements the attach command.
type AttachCmd struct {
	board string
	name  string
}

func (c *AttachCmd) Name() string      { return "attach" }
func (c *AttachCmd) Aliases() []string { return nil }
func (c *AttachCmd) Synopsis() string  { return "Upload a file to a task" }
func (c *AttachCmd) Usage() string {
	return "kanban attach [common flags] [--board <board>] [--name <filename>] <ref> <file>"
}
func (c *AttachCmd) NeedsAuth() bool { return true }

func (c *AttachCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.board, "board", "", "")
	fs.StringVar(&c.name, "name", "", "")
}

func (c *AttachCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return taskRefError(errOut, err)
	}
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		return usageError(errOut, "file required")
	}
	path := args[1]

	f, err := os.Open(path)
	if err != nil {
		return usageError(errOut, "cannot read %s: %v", path, errors.Unwrap(err))
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.IsDir() {
		return usageError(errOut, "%s is a directory", path)
	}

	filename := strings.TrimSpace(c.name)
	if filename == "" {
		filename = filepath.Base(path)
	}

	task, err := resolveTask(ctx, svc, c.board, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	attachment, err := svc.UploadAttachment(ctx, task.ID, filename, f)
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		output.NewPrinter(out, cfg.Color).Attachment(attachment)
	}
	return exitcode.Success
}

// GetAttachCmd implements the getattach command.
type GetAttachCmd struct {
	output string
	force  bool
}

// SetForce sets the force flag (for testing).
func (c *GetAttachCmd) SetForce(force bool) {
	c.force = force
}

func (c *GetAttachCmd) Name() string      { return "getattach" }
func (c *GetAttachCmd) Aliases() []string { return nil }
func (c *GetAttachCmd) Synopsis() string  { return "Download an attachment" }
func (c *GetAttachCmd) Usage() string {
	return "kanban getattach [common flags] [--output <file>] [--force] <attachment-id>"
}
func (c *GetAttachCmd) NeedsAuth() bool { return true }

func (c *GetAttachCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.output, "output", "", "")
	fs.BoolVar(&c.force, "force", false, "")
}

// Run writes the content to stdout, or to --output, which is only
// overwritten with --force.
func (c *GetAttachCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "attachment ID required")
	}
	id := strings.TrimSpace(args[0])

	if c.output == "" || c.output == "-" {
		if _, err := svc.DownloadAttachment(ctx, id, out); err != nil {
			return reportError(errOut, err)
		}
		return exitcode.Success
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(c.output, flags, 0644)
	if errors.Is(err, os.ErrExist) {
		return usageError(errOut, "file exists: %s (use --force)", c.output)
	}
	if err != nil {
		return usageError(errOut, "cannot write %s: %v", c.output, errors.Unwrap(err))
	}

	_, err = svc.DownloadAttachment(ctx, id, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(c.output)
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}

// RmAttachCmd implements the rmattach command.
type RmAttachCmd struct{}

func (c *RmAttachCmd) Name() string      { return "rmattach" }
func (c *RmAttachCmd) Aliases() []string { return nil }
func (c *RmAttachCmd) Synopsis() string  { return "Delete an attachment" }
func (c *RmAttachCmd) Usage() string     { return "kanban rmattach [common flags] <attachment-id>" }
func (c *RmAttachCmd) NeedsAuth() bool   { return true }

func (c *RmAttachCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmAttachCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError(errOut, "attachment ID required")
	}
	if err := svc.DeleteAttachment(ctx, strings.TrimSpace(args[0])); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}
