package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"todoapi/internal/client"
	"todoapi/internal/core/domain"
)

const usage = `Usage: todo [-url URL] [-v] <command> [args]

Commands:
  list [-status all|active|completed] [-priority all|high|medium|low]
  add [-d description] [-p priority] <title>
  toggle <id>
  edit [-t title] [-d description] [-p priority] <id>
  rm [-y] <id>
  left <id>
  right <id>
`

// Run executes one command against the API and prints the resulting list.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := client.LoadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := fs.String("url", cfg.BaseURL, "API base URL")
	verbose := fs.Bool("v", false, "Log requests and failures to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cfg.BaseURL = *baseURL

	logger := newLogger(*verbose, stderr)
	defer func() { _ = logger.Sync() }()

	confirm := &promptConfirmer{in: bufio.NewReader(stdin), out: stdout}
	ctrl := client.NewController(
		client.New(cfg),
		client.NotifierFunc(func(message string) { fmt.Fprintln(stderr, "!", message) }),
		confirm,
		logger,
	)

	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("load tasks from %s: %w", cfg.BaseURL, err)
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "list", "ls":
		return listCommand(ctrl, rest, stdout, stderr)
	case "add":
		return addCommand(ctx, ctrl, rest, stdout, stderr)
	case "toggle":
		return idCommand(ctrl, rest, stdout, func(id string) error {
			_, err := ctrl.ToggleDone(ctx, id)
			return err
		})
	case "edit":
		return editCommand(ctx, ctrl, rest, stdout, stderr)
	case "rm", "delete":
		return rmCommand(ctx, ctrl, confirm, rest, stdout, stderr)
	case "left":
		return idCommand(ctrl, rest, stdout, func(id string) error { return ctrl.MoveLeft(ctx, id) })
	case "right":
		return idCommand(ctrl, rest, stdout, func(id string) error { return ctrl.MoveRight(ctx, id) })
	default:
		fs.Usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// newLogger is silent unless verbose; then it logs like zap.NewDevelopment
// to stderr.
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

func listCommand(ctrl *client.Controller, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	status := fs.String("status", string(client.StatusAll), "all, active or completed")
	priority := fs.String("priority", client.PriorityAll, "all, high, medium or low")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := client.ParseFilter(*status, *priority)
	if err != nil {
		return err
	}
	return printTasks(stdout, ctrl, filter)
}

func addCommand(ctx context.Context, ctrl *client.Controller, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	description := fs.String("d", "", "Description")
	priority := fs.String("p", string(domain.PriorityMedium), "high, medium or low")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := ctrl.Create(ctx, domain.NewTaskInput{
		Title:       strings.Join(fs.Args(), " "),
		Description: *description,
		Priority:    domain.Priority(*priority),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "added %s\n", created.ID)
	return printTasks(stdout, ctrl, client.Filter{})
}

func editCommand(ctx context.Context, ctrl *client.Controller, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("t", "", "New title")
	description := fs.String("d", "", "New description")
	priority := fs.String("p", "", "New priority")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}

	draft, ok := ctrl.EditDraft(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			draft.Title = *title
		case "d":
			draft.Description = *description
		case "p":
			draft.Priority = domain.Priority(*priority)
		}
	})

	if _, err := ctrl.Edit(ctx, id, draft); err != nil {
		return err
	}
	return printTasks(stdout, ctrl, client.Filter{})
}

func rmCommand(ctx context.Context, ctrl *client.Controller, confirm *promptConfirmer, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("todo rm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return err
	}

	confirm.assumeYes = *yes
	deleted, err := ctrl.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(stdout, "cancelled")
		return nil
	}
	return printTasks(stdout, ctrl, client.Filter{})
}

func idCommand(ctrl *client.Controller, args []string, stdout io.Writer, action func(id string) error) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	if err := action(id); err != nil {
		return err
	}
	return printTasks(stdout, ctrl, client.Filter{})
}

func singleID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("expected exactly one task id")
	}
	return args[0], nil
}

type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (p *promptConfirmer) ConfirmDelete(task domain.Task) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "Delete %q? [y/N] ", task.Title)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printTasks(stdout io.Writer, ctrl *client.Controller, filter client.Filter) error {
	counts := ctrl.Counts()
	fmt.Fprintf(stdout, "all %d | active %d | completed %d | high %d | medium %d | low %d\n",
		counts.All, counts.Active, counts.Completed, counts.High, counts.Medium, counts.Low)

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tDONE\tPRIORITY\tID\tTITLE\tDESCRIPTION")
	for _, task := range ctrl.Visible(filter) {
		done := " "
		if task.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\t%s\t%s\n",
			task.Order, done, task.Priority, task.ID, task.Title, task.Description)
	}
	return w.Flush()
}
