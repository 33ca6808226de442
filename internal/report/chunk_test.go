package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, Chunk("aaaa\nbbbb\ncccc", 10))
	assert.Equal(t, []string{"abc\n\ndef"}, Chunk("abc\n\ndef", 20))
	assert.Equal(t, []string{"whole text"}, Chunk("whole text", 0))
	assert.Equal(t, []string{""}, Chunk("", 10))
}

func TestChunk_HardSplitsLongLines(t *testing.T) {
	got := Chunk("ab\n"+strings.Repeat("x", 7)+"\ncd", 3)
	assert.Equal(t, []string{"ab", "xxx", "xxx", "x", "cd"}, got)
}

func TestChunk_CountsRunes(t *testing.T) {
	got := Chunk("••••\n••", 4)
	assert.Equal(t, []string{"••••", "••"}, got)
}

func TestChunk_RoundTripsRenderedReport(t *testing.T) {
	text := strings.Repeat("• ENG-1: something (open 2.0 days)\n", 300)
	text = strings.TrimSuffix(text, "\n")
	parts := Chunk(text, 3800)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 3800)
	}
	assert.Equal(t, text, strings.Join(parts, "\n"))
}

func TestChunk_KeepsBlankLinesAtBoundaries(t *testing.T) {
	text := "aaaa\n\nbbbb\n\ncccc"
	parts := Chunk(text, 5)
	assert.Equal(t, []string{"aaaa\n", "bbbb\n", "cccc"}, parts)
	assert.Equal(t, text, strings.Join(parts, "\n"))
	assert.Equal(t, []string{"\nab"}, Chunk("\nab", 5))
}
