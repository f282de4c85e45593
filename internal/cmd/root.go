package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/picker"
)

// Exit codes, for shell scripts wrapping listpick:
//
//	0 = selection made (printed on stdout)
//	1 = cancelled by the user
//	2 = error or no usable terminal; callers should fall back
const (
	exitSuccess   = 0
	exitCancelled = 1
	exitFallback  = 2
)

const (
	groupPick  = "pick"
	groupSetup = "setup"
)

// errCancelled ends a pick session that made no selection.
var errCancelled = errors.New("cancelled")

var rootCmd = &cobra.Command{
	Use:   "listpick",
	Short: "interactive list picker for the terminal",
	Long: `listpick - pick one line from a list, interactively

Reads candidate lines from stdin (or from --cmd), shows them on the
terminal with incremental fuzzy filtering and prints the chosen line.

Examples:
  ls | listpick
  listpick --cmd "git branch --format='%(refname:short)'"
  listpick history
  listpick search --exec "my-search --q {query} --page {page}"`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLines,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	code := exitCode(err)
	if code == exitFallback {
		fmt.Fprintf(os.Stderr, "listpick: %v\n", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errCancelled):
		return exitCancelled
	default:
		return exitFallback
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupPick, Title: "Pick Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)
	addPickFlags(rootCmd)
	rootCmd.Flags().StringVar(&linesCmd, "cmd", "", "Read candidates from this command's output instead of stdin")

	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// errNoInput is returned when stdin is a terminal and no --cmd is given.
var errNoInput = fmt.Errorf("%w: no input; pipe lines on stdin or use --cmd", picker.ErrConfiguration)
