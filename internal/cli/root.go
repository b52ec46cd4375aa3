// internal/cli/root.go
//
// Formcheck – command-line front end.
//
// Context
//   `formcheck` runs the same evaluator the web host runs, against values
//   read from a YAML file or typed at a prompt.  Useful for testing a new
//   form definition before it ships.
//
// Exit codes
//   0  the form is valid (or the command succeeded)
//   1  the form is invalid
//   2  unknown form or usage error
//   3  configuration or form loading failed
//   130  the prompt was interrupted
//
//------------------------------------------------------------------------------

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/formcheck/internal/bootstrap"
	"github.com/yanizio/formcheck/internal/config"
	"github.com/yanizio/formcheck/internal/form"
	"github.com/yanizio/formcheck/internal/logger"
	"github.com/yanizio/formcheck/internal/surface"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitUsage   = 2
	ExitLoad    = 3

	ExitInterrupted = 130
)

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Option adjusts the command tree, mainly for tests.
type Option func(*app)

// WithRegistry skips configuration and uses reg.
func WithRegistry(reg *form.Registry) Option {
	return func(a *app) { a.forms = reg }
}

// WithAsker replaces the survey prompt used by `prompt`.
func WithAsker(ask surface.Asker) Option {
	return func(a *app) { a.ask = ask }
}

type app struct {
	root  string
	forms *form.Registry
	log   *zap.SugaredLogger
	ask   surface.Asker
}

// NewRootCmd builds the `formcheck` command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(a)
	}

	root := &cobra.Command{
		Use:   "formcheck",
		Short: "Validate form input against form definitions",
		Long: `Validate form input against form definitions.

Form definitions are loaded the same way the web host loads them: from the
YAML directories or the database named in conf/global.yaml.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVar(&a.root, "config", "",
		"root directory holding conf/global.yaml (default: discovered)")

	root.AddCommand(a.listCmd(), a.checkCmd(), a.promptCmd())
	return root
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer, opts ...Option) int {
	cmd := NewRootCmd(opts...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintln(stderr, "formcheck:", ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintln(stderr, "formcheck:", err)
	return ExitUsage
}

// load reads config, starts the file logger, and builds the Registry unless
// one was injected.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if a.forms != nil {
		return nil
	}

	root := a.root
	if root == "" {
		root = config.RootDir()
	}
	cfg, err := config.LoadFrom(root)
	if err != nil {
		return &ExitError{Code: ExitLoad, Err: fmt.Errorf("load config: %w", err)}
	}

	// Stdout carries command output, so the logger stays file-only.
	if a.log, err = logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level}); err != nil {
		return &ExitError{Code: ExitLoad, Err: fmt.Errorf("start logger: %w", err)}
	}

	if a.forms, err = bootstrap.Forms(cmd.Context(), cfg, a.log); err != nil {
		return &ExitError{Code: ExitLoad, Err: fmt.Errorf("load forms: %w", err)}
	}
	return nil
}

func (a *app) evaluator(s form.Surface) *form.Evaluator {
	return form.NewEvaluator(a.forms, s, form.WithLogger(a.log))
}
