package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/listpick/internal/config"
	"github.com/runger/listpick/internal/logging"
	"github.com/runger/listpick/internal/picker"
)

// maxQueryLen is the maximum length of an initial query in bytes.
const maxQueryLen = 4096

// Flags shared by every pick command.
var (
	pickQuery    string
	pickSize     int
	pickPrompt   string
	pickNoFuzzy  bool
	pickNoCache  bool
	pickDebounce int
)

func addPickFlags(c *cobra.Command) {
	c.Flags().StringVarP(&pickQuery, "query", "q", "", "Initial search query (max 4096 bytes)")
	c.Flags().IntVarP(&pickSize, "size", "n", 0, "Number of visible rows (default from config)")
	c.Flags().StringVar(&pickPrompt, "prompt", "", "Input prompt (default from config)")
	c.Flags().BoolVar(&pickNoFuzzy, "no-fuzzy", false, "Keep rows in input order without fuzzy filtering")
	c.Flags().BoolVar(&pickNoCache, "no-cache", false, "Do not remember results per query")
	c.Flags().IntVar(&pickDebounce, "debounce", 0, "Milliseconds to wait after a keystroke before filtering (default from config)")
}

// session carries what a pick command needs: config, logger and paths.
type session struct {
	cfg    *config.Config
	paths  *config.Paths
	log    *slog.Logger
	closer io.Closer
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyPickFlags(cmd, cfg); err != nil {
		return nil, err
	}

	log, closer := logging.New(logging.Config{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	log = logging.ForComponent(log, logging.CompCLI)
	log.Debug("session start", "command", cmd.Name())

	return &session{cfg: cfg, paths: config.DefaultPaths(), log: log, closer: closer}, nil
}

// applyPickFlags overrides config values with flags the user set.
func applyPickFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("query") {
		q, err := sanitizeQuery(pickQuery)
		if err != nil {
			return fmt.Errorf("%w: --query: %w", picker.ErrConfiguration, err)
		}
		pickQuery = q
	}
	if flags.Changed("size") {
		if pickSize < 1 {
			return fmt.Errorf("%w: --size must be a positive integer", picker.ErrConfiguration)
		}
		cfg.Picker.Size = pickSize
	}
	if flags.Changed("prompt") {
		cfg.Picker.Prompt = pickPrompt
	}
	if flags.Changed("no-fuzzy") && pickNoFuzzy {
		cfg.Picker.Fuzzy = false
		cfg.Picker.FuzzyOnSearch = false
	}
	if flags.Changed("no-cache") && pickNoCache {
		cfg.Picker.Cache = false
	}
	if flags.Changed("debounce") {
		if pickDebounce < 0 {
			return fmt.Errorf("%w: --debounce must be >= 0", picker.ErrConfiguration)
		}
		cfg.Picker.DebounceMs = pickDebounce
	}
	return nil
}

// options converts the picker section of the config.
func (s *session) options() picker.Options {
	fuzzy := s.cfg.Picker.Fuzzy
	return picker.Options{
		Size:          s.cfg.Picker.Size,
		PageSize:      s.cfg.Picker.PageSize,
		Fuzzy:         &fuzzy,
		FuzzyOnSearch: s.cfg.Picker.FuzzyOnSearch,
		DebounceDelay: debounceDelay(s.cfg.Picker.DebounceMs),
		Cache:         s.cfg.Picker.Cache,
		Query:         pickQuery,
		Prompt:        s.cfg.Picker.Prompt,
		Logger:        logging.ForComponent(s.log, logging.CompPicker),
	}
}

// debounceDelay maps config milliseconds to picker.Options, where zero means
// the default and a negative delay filters on every keystroke.
func debounceDelay(ms int) time.Duration {
	if ms <= 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

// pick runs an interactive session on /dev/tty and prints the selection.
// Options are validated before the terminal is touched.
func (s *session) pick(cmd *cobra.Command, opts picker.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := checkTerminal(); err != nil {
		return err
	}

	lockPath := s.paths.LockFile()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	lock, err := acquireLock(lockPath)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	// stdin and stdout carry data, so the UI runs on the terminal itself.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	// Detect colors from the tty; stdout is usually a pipe.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	it, ok, err := picker.Run(cmd.Context(), opts, tea.WithInput(tty), tea.WithOutput(tty))
	if err != nil {
		s.log.Error("pick failed", "error", err)
		return err
	}
	if !ok {
		s.log.Debug("pick cancelled")
		return errCancelled
	}

	s.log.Debug("pick selected", "index", it.Index)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), it.Output())
	return err
}

// Close flushes the log file.
func (s *session) Close() error {
	return s.closer.Close()
}

// sanitizeQuery strips control characters and bounds the query length.
func sanitizeQuery(q string) (string, error) {
	if q == "" {
		return "", nil
	}
	if strings.ContainsAny(q, "\n\r") {
		return "", errors.New("query must not contain newlines")
	}

	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		// Control characters except tab.
		if (r <= 0x1F && r != '\t') || r == 0x7F {
			continue
		}
		if b.Len()+len(string(r)) > maxQueryLen {
			break
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}
