package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "git status", "git status"},
		{"color", "\x1b[31mred\x1b[0m", "red"},
		{"cursor move", "a\x1b[2Kb", "ab"},
		{"osc title bel", "\x1b]0;title\x07cmd", "cmd"},
		{"osc hyperlink st", "\x1b]8;;http://x\x1b\\link\x1b]8;;\x1b\\", "link"},
		{"charset", "\x1b(Bok", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripANSI(tt.in))
		})
	}
}

func TestValidateUTF8(t *testing.T) {
	assert.Equal(t, "ok", ValidateUTF8("ok"))
	assert.Equal(t, "a�b", ValidateUTF8("a\xffb"))
}

func TestPrettyEscapeLiterals(t *testing.T) {
	assert.Equal(t, `echo "<ESC>[31m"`, PrettyEscapeLiterals(`echo "\033[31m"`))
	assert.Equal(t, `printf '<ESC>[0m'`, PrettyEscapeLiterals(`printf '\e[0m'`))
	assert.Equal(t, "", PrettyEscapeLiterals(""))
}

func TestCleanLabel(t *testing.T) {
	assert.Equal(t, "echo a b", CleanLabel("echo a\nb\r\n"))
	assert.Equal(t, "ls", CleanLabel("\x1b[1mls\x1b[0m"))
}

func TestMiddleTruncate(t *testing.T) {
	assert.Equal(t, "short", MiddleTruncate("short", 10))
	assert.Equal(t, "abc…hij", MiddleTruncate("abcdefghij", 7))
	assert.Equal(t, "ab", MiddleTruncate("abcdef", 2))
	assert.Equal(t, "", MiddleTruncate("abc", 0))
}

func TestMiddleTruncate_WideRunes(t *testing.T) {
	// Each CJK rune is two columns wide.
	got := MiddleTruncate("日本語のテキスト", 7)
	assert.Equal(t, "日…ト", got)
}

func TestTruncateRight(t *testing.T) {
	assert.Equal(t, "short", TruncateRight("short", 5))
	assert.Equal(t, "abcd…", TruncateRight("abcdefgh", 5))
	assert.Equal(t, "…", TruncateRight("abc", 1))
	assert.Equal(t, "", TruncateRight("abc", 0))
}
