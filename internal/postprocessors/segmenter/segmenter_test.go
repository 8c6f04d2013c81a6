package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentenceTexts(t *testing.T, input string, minLen int) []string {
	t.Helper()
	sentences := Split(input, minLen)
	out := make([]string, len(sentences))
	for i, s := range sentences {
		assert.Equal(t, i, s.Index)
		out[i] = s.Text
	}
	return out
}

func TestSplit_BasicSentences(t *testing.T) {
	got := sentenceTexts(t, "First sentence here. Second sentence follows! Third one ends?", 1)

	assert.Equal(t, []string{
		"First sentence here.",
		"Second sentence follows!",
		"Third one ends?",
	}, got)
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 1))
	assert.Empty(t, Split("   \n\t  ", 1))
}

func TestSplit_NoTerminalPunctuation(t *testing.T) {
	got := sentenceTexts(t, "a heading without any terminal punctuation", 1)

	assert.Equal(t, []string{"a heading without any terminal punctuation"}, got)
}

func TestSplit_LowercaseContinuationIsNotBoundary(t *testing.T) {
	// Terminal followed by a lowercase letter does not end a sentence.
	got := sentenceTexts(t, "The version is v1. beta still. Next sentence.", 1)

	assert.Equal(t, []string{"The version is v1. beta still.", "Next sentence."}, got)
}

func TestSplit_DecimalNumbersSurvive(t *testing.T) {
	got := sentenceTexts(t, "Pi is roughly 3.14 in value. Another sentence.", 1)

	assert.Equal(t, []string{"Pi is roughly 3.14 in value.", "Another sentence."}, got)
}

func TestSplit_Abbreviations(t *testing.T) {
	got := sentenceTexts(t, "Ask Dr. Smith about it. Use tools, e.g. Vim or Emacs. Acme Inc. shipped it.", 1)

	assert.Equal(t, []string{
		"Ask Dr. Smith about it.",
		"Use tools, e.g. Vim or Emacs.",
		"Acme Inc. shipped it.",
	}, got)
}

func TestSplit_InlineCodeProtected(t *testing.T) {
	got := sentenceTexts(t, "Run `go test ./... Now` to verify. It passes.", 1)

	assert.Equal(t, []string{
		"Run `go test ./... Now` to verify.",
		"It passes.",
	}, got)
}

func TestSplit_FencedCodeProtected(t *testing.T) {
	input := "Install it first. ```\nfmt.Println(\"Hi. There!\")\n``` Then run it."

	got := sentenceTexts(t, input, 1)

	require.Len(t, got, 2)
	assert.Equal(t, "Install it first.", got[0])
	assert.Contains(t, got[1], "fmt.Println(\"Hi. There!\")")
	assert.Contains(t, got[1], "Then run it.")
}

func TestSplit_UnmatchedFencePassesThrough(t *testing.T) {
	input := "Broken fence follows. ```go\ncode := 1"

	got := Split(input, 1)

	assert.NotEmpty(t, got)
	joined := ""
	for _, s := range got {
		joined += s.Text + " "
	}
	assert.Contains(t, joined, "code := 1")
}

func TestSplit_NewlineIsBoundary(t *testing.T) {
	got := sentenceTexts(t, "First line without period\nSecond line here.", 1)

	assert.Equal(t, []string{"First line without period", "Second line here."}, got)
}

func TestSplit_MinLengthFilter(t *testing.T) {
	got := sentenceTexts(t, "Ok. This sentence is long enough to keep.", 10)

	assert.Equal(t, []string{"This sentence is long enough to keep."}, got)
}

func TestSplit_IndexesAreSequential(t *testing.T) {
	sentences := Split("One thing. Two things. Three things.", 1)

	require.Len(t, sentences, 3)
	for i, s := range sentences {
		assert.Equal(t, i, s.Index)
	}
}
