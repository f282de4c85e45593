package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/logging"
	"github.com/runger/listpick/internal/picker"
	"github.com/runger/listpick/internal/source"
	"github.com/runger/listpick/internal/storage"
)

var searchExec string

var searchCmd = &cobra.Command{
	Use:     "search",
	Short:   "Pick from a paged search backend",
	GroupID: groupPick,
	Long: `Pick from results fetched page by page as you type.

By default the local index (see "listpick index") is searched. With
--exec, a command is run for every page instead. Its arguments may use
{query}, {page} and {limit}, and it must print JSON:

  {"data": ["line", {"label": "shown", "value": "printed"}], "total": 120, "more": true}

Examples:
  listpick search
  listpick search --exec "my-search --q {query} --page {page} --per-page {limit}"`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	addPickFlags(searchCmd)
	searchCmd.Flags().StringVar(&searchExec, "exec", "", "Command template that prints one page of results as JSON")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := s.options()
	srcLog := logging.ForComponent(s.log, logging.CompSource)

	if searchExec != "" {
		p, err := source.NewExecProvider(searchExec, srcLog)
		if err != nil {
			return fmt.Errorf("%w: --exec: %w", picker.ErrConfiguration, err)
		}
		opts.Search = p
		return s.pick(cmd, opts)
	}

	path := s.paths.IndexFile()
	idx, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	logging.ForComponent(s.log, logging.CompStorage).Debug("index opened", "path", path)

	opts.Search = &source.IndexProvider{Index: idx, Logger: srcLog}
	return s.pick(cmd, opts)
}
