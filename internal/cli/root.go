// Package cli implements the karte command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/karte/internal/logging"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by every command of one invocation.
type app struct {
	flags    rootFlags
	settings settings
	log      zerolog.Logger
	logFile  io.Closer
}

// NewRootCmd creates the top-level "karte" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "karte",
		Short: "A local case record keeper",
		Long: "karte keeps cases, progress notes, reference resources and an idea board\n" +
			"in one local SQLite file, with a browser UI and a command line.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logFile != nil {
				return a.logFile.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $KARTE_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: config data_dir, $KARTE_DATA_DIR, or platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newProjectCmd(a))
	root.AddCommand(newNoteCmd(a))
	root.AddCommand(newResourceCmd(a))
	root.AddCommand(newIdeaCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newResetCmd(a))

	return root
}

// load reads configuration and builds the logger before any command runs.
func (a *app) load(cmd *cobra.Command) error {
	s, err := loadSettings(cmd, a.flags)
	if err != nil {
		return sysError(err)
	}
	a.settings = s

	var w io.Writer = cmd.ErrOrStderr()
	if s.LogFile != "" {
		f, err := logging.OpenFile(s.LogFile)
		if err != nil {
			return sysError(err)
		}
		a.logFile = f
		w = f
	}
	log, err := logging.New(w, s.LogLevel, s.LogFormat)
	if err != nil {
		return userError(err)
	}
	a.log = log
	return nil
}

// cliError carries the exit code for an error returned by a command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

// userError marks err as caused by bad input: exit code 1.
func userError(err error) error {
	return &cliError{code: exitUserError, err: err}
}

// userErrorf formats a user error.
func userErrorf(format string, args ...any) error {
	return userError(fmt.Errorf(format, args...))
}

// sysError marks err as an environment or storage failure: exit code 2.
func sysError(err error) error {
	return &cliError{code: exitSysError, err: err}
}

// exitCode maps an error returned by Execute to a process exit code.
// Errors not marked by userError or sysError come from cobra itself
// (unknown command, bad flag) and count as user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "karte:", err)
		os.Exit(exitCode(err))
	}
}
