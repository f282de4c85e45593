// Package history reads bash, zsh and fish history files and turns them into
// picker-ready command lists.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// MaxEntries caps how many of the newest entries are kept from one file.
const MaxEntries = 25000

// Shell names accepted by Read.
const (
	Bash = "bash"
	Zsh  = "zsh"
	Fish = "fish"
	Auto = "auto"
)

// Entry is one command from a history file. When is zero if the file does
// not record timestamps.
type Entry struct {
	Command string
	When    time.Time
}

// lineParser consumes a history file line by line.
type lineParser interface {
	parseLine(line string)
	finish() []Entry
}

// Read parses the history file of shell at path, oldest entry first. An
// empty path means the shell's default location and "auto" (or "") detects
// the shell from $SHELL. A missing file yields no entries and no error.
func Read(shell, path string) ([]Entry, error) {
	if shell == Auto || shell == "" {
		shell = DetectShell()
	}

	var p lineParser
	switch shell {
	case Bash:
		p = &bashParser{}
	case Zsh:
		p = &zshParser{}
	case Fish:
		p = &fishParser{}
	default:
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}

	if path == "" {
		path = DefaultPath(shell)
	}
	if path == "" {
		return nil, nil
	}
	return readFile(path, p)
}

func readFile(path string, p lineParser) ([]Entry, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is from user's HISTFILE, a flag or a well-known default
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.parseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return trimToLimit(p.finish(), MaxEntries), nil
}

// bashParser handles one command per line, optionally preceded by a
// "#<unix_ts>" line when HISTTIMEFORMAT is set.
type bashParser struct {
	when    time.Time
	entries []Entry
}

func (p *bashParser) parseLine(line string) {
	if line == "" {
		return
	}
	if ts, ok := strings.CutPrefix(line, "#"); ok && ts != "" {
		if sec, err := strconv.ParseInt(ts, 10, 64); err == nil {
			p.when = time.Unix(sec, 0)
			return
		}
	}
	p.entries = append(p.entries, Entry{Command: line, When: p.when})
	p.when = time.Time{}
}

func (p *bashParser) finish() []Entry { return p.entries }

// zshParser handles plain and extended (": <ts>:<dur>;<cmd>") lines with
// backslash continuations.
type zshParser struct {
	pending strings.Builder
	when    time.Time
	entries []Entry
}

func (p *zshParser) parseLine(line string) {
	if p.pending.Len() == 0 {
		line = p.stripMeta(line)
	}
	if hasUnescapedTrailingBackslash(line) {
		p.pending.WriteString(line[:len(line)-1])
		p.pending.WriteByte('\n')
		return
	}
	p.pending.WriteString(line)
	p.flush()
}

// stripMeta removes the extended history prefix and records its timestamp.
func (p *zshParser) stripMeta(line string) string {
	meta, ok := strings.CutPrefix(line, ": ")
	if !ok {
		return line
	}
	semi := strings.IndexByte(meta, ';')
	if semi == -1 {
		return line
	}
	if ts, _, found := strings.Cut(meta[:semi], ":"); found {
		if sec, err := strconv.ParseInt(ts, 10, 64); err == nil {
			p.when = time.Unix(sec, 0)
		}
	}
	return meta[semi+1:]
}

func (p *zshParser) flush() {
	if cmd := p.pending.String(); cmd != "" {
		p.entries = append(p.entries, Entry{Command: cmd, When: p.when})
	}
	p.pending.Reset()
	p.when = time.Time{}
}

func (p *zshParser) finish() []Entry {
	if p.pending.Len() > 0 {
		// File ended inside a continuation.
		cmd := strings.TrimSuffix(p.pending.String(), "\n")
		p.pending.Reset()
		p.pending.WriteString(cmd)
		p.flush()
	}
	return p.entries
}

// hasUnescapedTrailingBackslash reports whether line ends in an odd number
// of backslashes, i.e. a continuation rather than a literal backslash.
func hasUnescapedTrailingBackslash(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// fishParser handles fish's pseudo-YAML format:
//
//   - cmd: <command>
//     when: <unix_timestamp>
//     paths:
//     - <path>
type fishParser struct {
	cmd     string
	when    time.Time
	entries []Entry
}

func (p *fishParser) parseLine(line string) {
	switch {
	case strings.HasPrefix(line, "- cmd: "):
		p.flush()
		p.cmd = strings.TrimPrefix(line, "- cmd: ")
	case strings.HasPrefix(line, "  when: "):
		if sec, err := strconv.ParseInt(strings.TrimPrefix(line, "  when: "), 10, 64); err == nil {
			p.when = time.Unix(sec, 0)
		}
	}
	// paths: blocks and unknown keys are ignored.
}

func (p *fishParser) flush() {
	if p.cmd != "" {
		p.entries = append(p.entries, Entry{Command: decodeFishEscapes(p.cmd), When: p.when})
	}
	p.cmd = ""
	p.when = time.Time{}
}

func (p *fishParser) finish() []Entry {
	p.flush()
	return p.entries
}

// decodeFishEscapes decodes fish's "\\" and "\n" escapes.
func decodeFishEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// DefaultPath returns the usual history file location for shell. $HISTFILE
// wins for bash and zsh; fish follows $XDG_DATA_HOME.
func DefaultPath(shell string) string {
	if shell == Fish {
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "fish", "fish_history")
		}
	} else if histFile := os.Getenv("HISTFILE"); histFile != "" {
		return histFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch shell {
	case Bash:
		return filepath.Join(home, ".bash_history")
	case Zsh:
		return filepath.Join(home, ".zsh_history")
	case Fish:
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return ""
	}
}

// DetectShell returns bash, zsh or fish based on $SHELL, or "".
func DetectShell() string {
	switch base := filepath.Base(os.Getenv("SHELL")); base {
	case Bash, Zsh, Fish:
		return base
	default:
		return ""
	}
}

// trimToLimit keeps the last n entries.
func trimToLimit(entries []Entry, n int) []Entry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
