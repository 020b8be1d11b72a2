package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"finadvisor/internal/api"
	"finadvisor/internal/client"
	"finadvisor/internal/config"
	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
	"finadvisor/internal/session"
	"finadvisor/internal/tui"
	"finadvisor/internal/views"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app is what every command runs against.
type app struct {
	api      *api.API
	session  *session.Session
	store    *session.SQLiteStore
	redirect *tui.Redirect

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	yes    bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	yes, args := extractYes(args)
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	a, err := newApp(ctx, cfg, stdin, stdout, stderr, yes)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.close()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.Get().Debugw("command failed", "command", args[0], "error", err)
		fmt.Fprintln(stderr, "Error: "+apperrors.UserMessage(err))
		return 1
	}
	return 0
}

func newApp(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer, yes bool) (*app, error) {
	store, err := session.OpenSQLiteStore(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	sess := session.New(store)
	if err := sess.Restore(ctx); err != nil {
		logger.Get().Warnw("could not restore session", "error", err)
	}

	redirect := &tui.Redirect{}
	nav := client.NavigatorFunc(func() {
		fmt.Fprintln(stderr, "Your session has ended. Run `finadvisor login` to sign in again.")
		redirect.RedirectToLogin()
	})
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	c := client.New(cfg.APIURL, sess, httpClient, client.WithNavigator(nav))

	return &app{
		api:      api.New(c, nil),
		session:  sess,
		store:    store,
		redirect: redirect,
		in:       bufio.NewReader(stdin),
		out:      stdout,
		errOut:   stderr,
		yes:      yes,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Get().Warnw("closing session store", "error", err)
	}
}

// env builds the view environment for interactive use.
func (a *app) env(ctx context.Context, confirmer views.Confirmer) *views.Env {
	return &views.Env{Bus: a.api.Bus(), Notices: views.NewNotices(), Confirmer: confirmer, Context: ctx}
}

// confirmer answers prompts from stdin, or always yes with --yes.
func (a *app) confirmer() views.Confirmer {
	if a.yes {
		return views.AlwaysConfirm
	}
	return views.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
		line, _ := a.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// confirm asks before a destructive command.
func (a *app) confirm(prompt string) error {
	if !a.confirmer().Confirm(prompt) {
		return apperrors.ErrConfirmationDeclined
	}
	return nil
}

// ask reads a value from stdin when a flag was left empty.
func (a *app) ask(label, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// extractYes removes --yes and -y from args wherever they appear.
func extractYes(args []string) (bool, []string) {
	yes := false
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--yes" || arg == "-y" {
			yes = true
			continue
		}
		out = append(out, arg)
	}
	return yes, out
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: finadvisor [--yes] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from the environment and an optional .env file:")
	fmt.Fprintln(w, "  FINADVISOR_API_URL, FINADVISOR_SESSION_DB, REQUEST_TIMEOUT, ENV, LOG_LEVEL")
}
