package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/runger/listpick/internal/picker"
)

// splitCommand splits cmdline into argv with POSIX quoting rules. No shell
// is involved.
func splitCommand(cmdline string) ([]string, error) {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("splitting command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("command is empty")
	}
	return argv, nil
}

// Command is a data source that runs cmdline and offers each line of its
// standard output. The command line is checked immediately; the command
// itself runs when the picker loads.
func Command(cmdline string) (picker.DataSource, error) {
	argv, err := splitCommand(cmdline)
	if err != nil {
		return nil, err
	}
	return picker.DataFunc(func(ctx context.Context) ([]picker.Item, error) {
		out, err := runArgv(ctx, argv)
		if err != nil {
			return nil, err
		}
		return ReadLines(bytes.NewReader(out))
	}), nil
}

// runArgv runs argv and returns its standard output. A failing command's
// error includes the first line of its standard error.
func runArgv(ctx context.Context, argv []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := firstLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("running %s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
