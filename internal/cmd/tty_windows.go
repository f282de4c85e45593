//go:build windows

package cmd

import "errors"

var errNoTTY = errors.New("interactive picking needs a Unix terminal")

func checkTerminal() error { return errNoTTY }

func acquireLock(string) (int, error) { return -1, errNoTTY }

func releaseLock(int) {}
