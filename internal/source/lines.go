// Package source builds picker data sources and search providers from
// lines of text, commands, shell history and the local index.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/runger/listpick/internal/picker"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1024 * 1024

// ReadLines turns each non-blank line of r into an item. The label is the
// cleaned, printable form of the line and the value is the line itself, so
// selection hands back exactly what was read.
func ReadLines(r io.Reader) ([]picker.Item, error) {
	items := []picker.Item{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		label := picker.CleanLabel(raw)
		if strings.TrimSpace(label) == "" {
			continue
		}
		items = append(items, picker.Item{Label: label, Value: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return items, nil
}

// Lines is a data source reading r once, when the picker loads.
func Lines(r io.Reader) picker.DataSource {
	return picker.DataFunc(func(context.Context) ([]picker.Item, error) {
		return ReadLines(r)
	})
}
