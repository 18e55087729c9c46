// Package cli implements the finctl subcommands. Each invocation wires the
// same application core as the dashboard, runs one operation against the
// current session and exits.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"finance-dashboard/internal/app"
	"finance-dashboard/internal/config"
)

// Env is shared by every command; main fills it from the top-level flags.
type Env struct {
	ConfigPath string
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
	Logger     zerolog.Logger
	// Options are passed to app.New on every invocation.
	Options []app.Option
}

// Register the subcommands.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&loginCmd{env: env}, "session")
	c.Register(&signupCmd{env: env}, "session")
	c.Register(&demoCmd{env: env}, "session")
	c.Register(&logoutCmd{env: env}, "session")
	c.Register(&resetCmd{env: env}, "session")
	c.Register(&whoamiCmd{env: env}, "session")
	c.Register(&profileCmd{env: env}, "session")

	c.Register(&listCmd{env: env}, "transactions")
	c.Register(&addCmd{env: env}, "transactions")
	c.Register(&rmCmd{env: env}, "transactions")
	c.Register(&balanceCmd{env: env}, "transactions")
	c.Register(&exportCmd{env: env}, "transactions")
}

// open wires the application and recovers the stored session.
func (e *Env) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Read(e.ConfigPath)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, e.Logger, e.Options...)
	if err != nil {
		return nil, err
	}
	a.Start(ctx)
	return a, nil
}

// run opens the app, calls fn and maps its error to an exit status.
func (e *Env) run(ctx context.Context, fn func(a *app.App) error) subcommands.ExitStatus {
	a, err := e.open(ctx)
	if err != nil {
		e.errorf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			e.errorf("Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		e.errorf("Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// requireSession 没有会话时提示先登录
func requireSession(a *app.App) error {
	if a.Session.Current() == nil {
		return errors.New("not signed in, run `finctl login` or `finctl demo` first")
	}
	return nil
}

type usageError struct{ msg string }

func (u usageError) Error() string { return u.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) errorf(format string, args ...any) {
	fmt.Fprintf(e.Err, format, args...)
}

// readPassword prompts without echo on a terminal, otherwise reads one line.
func (e *Env) readPassword(prompt string) (string, error) {
	if f, ok := e.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.Err, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.Err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(e.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var (
	positive = color.New(color.FgGreen)
	negative = color.New(color.FgRed)
	heading  = color.New(color.Bold)
)

// signed colors an amount by its sign.
func signed(amount decimal.Decimal, text string) string {
	if amount.IsNegative() {
		return negative.Sprint(text)
	}
	return positive.Sprint(text)
}
