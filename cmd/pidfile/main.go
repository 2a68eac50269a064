package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"github.com/arumata/pidfile/internal/config"
	"github.com/arumata/pidfile/internal/loghandler"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cmd, exitCode := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsageError
	}
	return *exitCode
}

func newRootCmd() (*cobra.Command, *int) {
	exitCode := 0
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pidfile",
		Short:         "Process-singleton coordination via locked pidfiles",
		SilenceUsage:  false,
		SilenceErrors: true,
	}
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/pidfile/config.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newCheckCmd(opts, &exitCode))
	cmd.AddCommand(newLockCmd(opts, &exitCode))
	cmd.AddCommand(newRunCmd(opts, &exitCode))
	cmd.AddCommand(newInitCmd(opts, &exitCode))
	cmd.AddCommand(newVersionCmd())

	return cmd, &exitCode
}

type rootOptions struct {
	configPath string
	verbose    bool
}

// load resolves the effective config and a logger for one command run.
func (o *rootOptions) load() (config.File, *slog.Logger, error) {
	logger := setupLogger(o.verbose)

	path := o.configPath
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return config.File{}, logger, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.File{}, logger, fmt.Errorf("load config: %w", err)
	}
	if !o.verbose {
		logger = setupLeveledLogger(parseLogLevel(cfg.Logging.Level))
	}
	return cfg, logger, nil
}

func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pidfile", "config.toml"), nil
}

// resolvePidfilePath joins bare names to the configured pidfile directory
// with a .pid suffix; absolute paths are used as-is.
func resolvePidfilePath(cfg config.File, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if filepath.Ext(name) == "" {
		name += ".pid"
	}
	return filepath.Join(cfg.Pidfile.Dir, name)
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return setupLeveledLogger(level)
}

func setupLeveledLogger(level slog.Level) *slog.Logger {
	handler := loghandler.New(os.Stderr, &loghandler.Options{
		Level:    level,
		UseColor: shouldUseColor(os.Stderr),
	})
	return slog.New(handler)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func shouldUseColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
