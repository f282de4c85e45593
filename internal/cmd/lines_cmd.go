package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/picker"
	"github.com/runger/listpick/internal/source"
)

var linesCmd string

var pickCmd = &cobra.Command{
	Use:     "pick",
	Short:   "Pick a line from stdin or a command's output",
	GroupID: groupPick,
	Long: `Pick a line from stdin or a command's output.

This is what listpick does when run without a subcommand.

Examples:
  ls | listpick pick
  listpick pick --cmd "git branch --format='%(refname:short)'" -q main`,
	Args: cobra.NoArgs,
	RunE: runLines,
}

func init() {
	addPickFlags(pickCmd)
	pickCmd.Flags().StringVar(&linesCmd, "cmd", "", "Read candidates from this command's output instead of stdin")
}

func runLines(cmd *cobra.Command, _ []string) error {
	ds, err := linesSource(linesCmd, os.Stdin)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := s.options()
	opts.Data = ds
	return s.pick(cmd, opts)
}

// linesSource picks --cmd output when set and stdin otherwise. Interactive
// stdin is rejected: the terminal belongs to the picker.
func linesSource(cmdline string, stdin *os.File) (picker.DataSource, error) {
	if cmdline != "" {
		return source.Command(cmdline)
	}
	if isTerminal(stdin) {
		return nil, errNoInput
	}
	return source.Lines(stdin), nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
