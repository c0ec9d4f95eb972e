package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/config"
	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// LogLevelEnv overrides the log level when --log-level is not given.
const LogLevelEnv = "POLYGLOT_PM_LOG_LEVEL"

type rootOptions struct {
	configPath string
	logLevel   string
	dir        string
}

// NewRootCommand builds the polyglot-pm command. Without arguments it starts
// the interactive shell; otherwise the arguments are handed to the detected
// package manager.
func NewRootCommand(stdout, stderr io.Writer, prompt Prompter) *cobra.Command {
	opts := &rootOptions{}
	c := &cobra.Command{
		Use:   "polyglot-pm [flags] [command [args...]]",
		Short: "One front end for npm, yarn, pnpm and bun",
		Long: `polyglot-pm detects the package manager of a JavaScript project from its
lock file and runs commands through it. Started without arguments it opens
an interactive menu with license, audit, update, performance, CI, version and
dependency tree tools.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel, stderr)
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(opts.dir)
			if err != nil {
				return fmt.Errorf("resolving project dir: %w", err)
			}

			store := config.NewStore(dir)
			if err := store.Load(opts.configPath); err != nil {
				return err
			}

			m := pm.Detect(dir, store.Get().Profiles, log)
			log.WithFields(logrus.Fields{"manager": m, "dir": dir}).Debug("package manager detected")

			r := runner.New(store, log)
			r.Stdin = c.InOrStdin()
			r.Stdout = stdout
			r.Stderr = stderr
			app := NewApp(store, r, m, prompt, log, stdout)

			if len(args) == 0 {
				app.out.Info("Detected package manager: %s", m)
				return Shell(c.Context(), app)
			}
			return app.RunDirect(c.Context(), args)
		},
	}
	c.CompletionOptions.DisableDefaultCmd = true
	c.SetOut(stdout)
	c.SetErr(stderr)

	f := c.Flags()
	f.SetInterspersed(false)
	f.StringVar(&opts.configPath, "config", config.DefaultFile, "configuration override file")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); default $"+LogLevelEnv+" or info")
	f.StringVar(&opts.dir, "dir", ".", "project directory")
	return c
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	if level == "" {
		level = os.Getenv(LogLevelEnv)
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
