package picker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ansiRE matches terminal escape sequences that would corrupt list rows:
// CSI (colors, cursor moves), OSC (titles, hyperlinks) terminated by ST or
// BEL, charset designations, and other two-byte escapes.
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()][A-B0-2]` +
	`|` +
	`[#()*+\-./][A-Za-z0-9]` +
	`)`)

// escapeLiterals rewrites spelled-out escape prefixes ("\033[", "\x1b[",
// "\e[") found in shell commands into a readable token.
var escapeLiterals = strings.NewReplacer(
	"\\033[", "<ESC>[",
	"\\033]", "<ESC>]",
	"\\x1b[", "<ESC>[",
	"\\x1B[", "<ESC>[",
	"\\x1b]", "<ESC>]",
	"\\x1B]", "<ESC>]",
	"\\e[", "<ESC>[",
	"\\e]", "<ESC>]",
)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// ValidateUTF8 replaces invalid UTF-8 byte sequences with U+FFFD.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// PrettyEscapeLiterals makes literal escape spellings visible in labels.
// Display only: never apply it to a value that will be executed.
func PrettyEscapeLiterals(s string) string {
	if s == "" {
		return s
	}
	return escapeLiterals.Replace(s)
}

// CleanLabel turns raw source text into a printable single-line label.
func CleanLabel(s string) string {
	s = ValidateUTF8(StripANSI(s))
	s = strings.TrimRight(s, "\r\n")
	return oneLine(PrettyEscapeLiterals(s))
}

// oneLine keeps list rendering stable: rows are single terminal lines.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// MiddleTruncate shortens s to maxWidth display columns by replacing its
// middle with an ellipsis, keeping both ends readable. Below 3 columns it
// simply cuts from the right.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return truncateHead(s, maxWidth)
	}

	// One column for the ellipsis; the head gets the odd column.
	remaining := maxWidth - 1
	return truncateHead(s, (remaining+1)/2) + "…" + truncateTail(s, remaining/2)
}

// TruncateRight cuts s to maxWidth display columns, ending in an ellipsis
// when anything was removed. Rune offsets of the kept prefix are unchanged,
// so match highlights stay valid.
func TruncateRight(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return truncateHead(s, maxWidth-1) + "…"
}

// truncateHead returns the longest prefix of s no wider than maxWidth.
func truncateHead(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// truncateTail returns the longest suffix of s no wider than maxWidth.
func truncateTail(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
