package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/logging"
)

// Exit codes: 0 success, 1 unrecoverable error, 2 argument error.
const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
)

var (
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorCyan   = color.New(color.FgCyan).SprintFunc()
)

// argError marks an error as an argument-usage mistake (exit code 2)
// rather than a runtime failure (exit code 1).
type argError struct{ err error }

func (e argError) Error() string { return e.err.Error() }
func (e argError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if _, ok := err.(argError); ok {
		return exitUsage
	}
	return exitError
}

type globalFlags struct {
	projectPath string
	configFile  string
	verbose     bool
	noColor     bool
}

var globals globalFlags

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codelens",
		Short:         "Lazy-loading code intelligence for LLM agents",
		Long:          "codelens indexes a source tree, serves a retrieval API over it, and watches for changes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&globals.projectPath, "path", "p", ".", "project root to operate on")
	cmd.PersistentFlags().StringVarP(&globals.configFile, "config", "c", "", "path to codelens.yaml (default: <path>/codelens.yaml)")
	cmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&globals.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSyncCmd())

	return cmd
}

func buildLogger() *zap.Logger {
	return logging.New(globals.verbose)
}
