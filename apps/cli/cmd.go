package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/services/backend"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) }

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client    *backend.Client
	tokenFile string
	poll      time.Duration

	in  *bufio.Reader
	out io.Writer
}

func newCommandLine(client *backend.Client, tokenFile string, poll time.Duration) *commandLine {
	return &commandLine{
		client:    client,
		tokenFile: tokenFile,
		poll:      poll,
		in:        bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                      - log in; the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                                  - forget the saved token")
	fmt.Fprintln(cli.out, "  me                                      - show the current user")
	fmt.Fprintln(cli.out, "  projects list|show|create               - browse and create projects")
	fmt.Fprintln(cli.out, "  tasks list|mine|create|status|grade     - browse and update tasks")
	fmt.Fprintln(cli.out, "  sessions list|join                      - browse and join mentoring sessions")
	fmt.Fprintln(cli.out, "  applications list|status                - review mentor/mentee applications")
	fmt.Fprintln(cli.out, "  newsletter subscribe|unsubscribe        - manage newsletter subscriptions")
	fmt.Fprintln(cli.out, "  watch tasks -project ID [-poll DUR]     - keep the task list of a project on screen")
}

// run executes the command of args (args[0] being the program name).
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "logout":
		return cli.logout()
	case "me":
		return cli.me(ctx)
	case "projects":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"list":   cli.listProjects,
			"show":   cli.showProject,
			"create": cli.createProject,
		})
	case "tasks":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"list":   cli.listTasks,
			"mine":   cli.myTasks,
			"create": cli.createTask,
			"status": cli.setTaskStatus,
			"grade":  cli.gradeTask,
		})
	case "sessions":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"list": cli.listSessions,
			"join": cli.joinSession,
		})
	case "applications":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"list":   cli.listApplications,
			"status": cli.setApplicationStatus,
		})
	case "newsletter":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"subscribe":   cli.subscribe,
			"unsubscribe": cli.unsubscribe,
		})
	case "watch":
		return cli.dispatch(ctx, cmd, rest, map[string]subcommand{
			"tasks": cli.watchTasks,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

type subcommand func(ctx context.Context, args []string) error

func (cli *commandLine) dispatch(ctx context.Context, cmd string, args []string, subs map[string]subcommand) error {
	if len(args) > 0 {
		if sub, ok := subs[args[0]]; ok {
			return sub(ctx, args[1:])
		}
	}
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(cli.out, "Usage: %s %s\n", cmd, strings.Join(names, "|"))
	return errHelp
}

// newFlagSet returns a flag set writing its usage to the output of the command line.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args; the usage is printed and errHelp returned on -h or when a required
// flag is missing.
func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, name := range required {
		if f := fs.Lookup(name); f == nil || f.Value.String() == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// arg returns the first positional argument, printing the usage when there is none.
func arg(fs *flag.FlagSet, name string) (string, error) {
	if fs.NArg() == 0 || fs.Arg(0) == "" {
		fmt.Fprintf(fs.Output(), "missing %s\n", name)
		fs.Usage()
		return "", errHelp
	}
	return fs.Arg(0), nil
}

// readPassword prompts for a password on terminals; otherwise it reads one line of stdin.
func (cli *commandLine) readPassword() (string, error) {
	if !isTerminalFunc() {
		line, err := cli.in.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// Token file

func (cli *commandLine) loadToken() error {
	if cli.tokenFile == "" {
		return nil
	}
	data, err := os.ReadFile(cli.tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if token := strings.TrimSpace(string(data)); token != "" {
		cli.client.SetToken(token)
	}
	return nil
}

func (cli *commandLine) saveToken(token string) error {
	if cli.tokenFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cli.tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(cli.tokenFile, []byte(token+"\n"), 0o600)
}

func (cli *commandLine) removeToken() error {
	if cli.tokenFile == "" {
		return nil
	}
	if err := os.Remove(cli.tokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Output

func (cli *commandLine) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w io.Writer, cols ...interface{}) {
	strs := make([]string, len(cols))
	for i, col := range cols {
		strs[i] = fmt.Sprint(col)
	}
	fmt.Fprintln(w, strings.Join(strs, "\t"))
}

// listFooter prints the pagination of a list.
func listFooter[T any](w io.Writer, list core.List[T]) {
	switch {
	case list.NextCursor != "":
		fmt.Fprintf(w, "%d of %d (next: -cursor %s)\n", len(list.Items), list.Total, list.NextCursor)
	case list.Page > 0:
		fmt.Fprintf(w, "%d of %d (page %d)\n", len(list.Items), list.Total, list.Page)
	default:
		fmt.Fprintf(w, "%d of %d\n", len(list.Items), list.Total)
	}
}

// printError writes err the way the backend sent it, with the field errors of validation failures.
func printError(w io.Writer, err error) {
	if apiErr, ok := backend.AsAPIError(err); ok {
		fmt.Fprintf(w, "error: %s\n", apiErr.Message)
		fmt.Fprintf(w, "  status: %s, statusCode: %d, isOperational: %t\n",
			apiErr.Detail.Status, apiErr.Detail.StatusCode, apiErr.Detail.IsOperational)
		for _, fld := range apiErr.Fields {
			fmt.Fprintf(w, "  %s: %s\n", fld.Field, fld.Error)
		}
		return
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		fmt.Fprintln(w, "error: invalid input")
		for _, fld := range vErr.Fields {
			fmt.Fprintf(w, "  %s: %s\n", fld.Field, fld.Error)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (UTC midnight).
func parseDate(val string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC 3339", val)
	}
	return t.UTC(), nil
}
