package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/config"
	"github.com/runger/listpick/internal/history"
	"github.com/runger/listpick/internal/source"
	"github.com/runger/listpick/internal/storage"
)

var (
	indexSource      string
	indexClearSource string
	indexReplace     bool
	indexShell   string
	indexFile    string
)

var indexCmd = &cobra.Command{
	Use:     "index",
	Short:   "Manage the local search index",
	GroupID: groupSetup,
	Long: `Manage the SQLite index searched by "listpick search".

Examples:
  find ~/src -maxdepth 2 -type d | listpick index add --source dirs --replace
  listpick index history --shell zsh
  listpick index stats`,
}

var indexAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add lines from files (or stdin) to the index",
	RunE:  runIndexAdd,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Add shell history to the index",
	Args:  cobra.NoArgs,
	RunE:  runIndexHistory,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index size and location",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry added under --source",
	Args:  cobra.NoArgs,
	RunE:  runIndexClear,
}

func init() {
	indexAddCmd.Flags().StringVar(&indexSource, "source", "lines", "Name recorded with the entries")
	indexAddCmd.Flags().BoolVar(&indexReplace, "replace", false, "Remove existing entries of --source first")

	indexHistoryCmd.Flags().StringVar(&indexShell, "shell", "auto", "Shell whose history to read (bash, zsh, fish, auto)")
	indexHistoryCmd.Flags().StringVar(&indexFile, "file", "", "History file (default: the shell's usual location)")
	indexHistoryCmd.Flags().BoolVar(&indexReplace, "replace", false, "Remove previously imported history of this shell first")

	indexClearCmd.Flags().StringVar(&indexClearSource, "source", "", "Source to remove")
	_ = indexClearCmd.MarkFlagRequired("source")

	indexCmd.AddCommand(indexAddCmd, indexHistoryCmd, indexStatsCmd, indexClearCmd)
}

func openIndex() (*storage.Index, error) {
	return storage.Open(config.DefaultPaths().IndexFile())
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	var entries []storage.Entry
	if len(args) == 0 {
		e, err := readIndexEntries(cmd.InOrStdin(), indexSource)
		if err != nil {
			return err
		}
		entries = e
	}
	for _, path := range args {
		f, err := os.Open(path) //nolint:gosec // G304: paths are user arguments
		if err != nil {
			return err
		}
		e, err := readIndexEntries(f, indexSource)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, e...)
	}

	return addToIndex(cmd, entries, indexSource, indexReplace)
}

// readIndexEntries stores each line as-is; labels are cleaned when shown.
func readIndexEntries(r io.Reader, src string) ([]storage.Entry, error) {
	items, err := source.ReadLines(r)
	if err != nil {
		return nil, err
	}
	entries := make([]storage.Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, storage.Entry{Label: it.Value, Source: src})
	}
	return entries, nil
}

func runIndexHistory(cmd *cobra.Command, _ []string) error {
	shell := indexShell
	if shell == history.Auto || shell == "" {
		shell = history.DetectShell()
	}
	raw, err := history.Read(shell, indexFile)
	if err != nil {
		return err
	}

	src := "history:" + shell
	entries := make([]storage.Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, storage.Entry{Label: e.Command, AddedAt: e.When, Source: src})
	}
	return addToIndex(cmd, entries, src, indexReplace)
}

func addToIndex(cmd *cobra.Command, entries []storage.Entry, src string, replace bool) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := cmdContext(cmd)

	if replace {
		removed, err := idx.DeleteSource(ctx, src)
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries from %s\n", removed, src)
		}
	}

	n, err := idx.Add(ctx, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%sIndexed %d entries%s from %s\n", colorGreen, n, colorReset, src)
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := cmdContext(cmd)
	n, err := idx.Count(ctx)
	if err != nil {
		return err
	}
	v, err := idx.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%sIndex%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  entries: %d\n", n)
	fmt.Fprintf(out, "  schema:  v%d\n", v)
	fmt.Fprintf(out, "  path:    %s\n", config.DefaultPaths().IndexFile())
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := cmdContext(cmd)
	n, err := idx.DeleteSource(ctx, indexClearSource)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries from %s\n", n, indexClearSource)
	return nil
}
