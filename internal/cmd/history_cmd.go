package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/source"
)

var (
	historyShell string
	historyFile  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Pick a command from shell history",
	GroupID: groupPick,
	Long: `Pick a command from your shell history, most recent first.

Repeated commands are shown once. The shell is detected from $SHELL
unless --shell is given; bash and zsh honor $HISTFILE.

Examples:
  listpick history
  listpick history --shell zsh --limit 500
  eval "$(listpick history -q git)"`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	addPickFlags(historyCmd)
	historyCmd.Flags().StringVar(&historyShell, "shell", "auto", "Shell whose history to read (bash, zsh, fish, auto)")
	historyCmd.Flags().StringVar(&historyFile, "file", "", "History file (default: the shell's usual location)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum number of commands to offer (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := s.options()
	opts.Data = source.History(historyShell, historyFile, historyLimit)
	return s.pick(cmd, opts)
}
