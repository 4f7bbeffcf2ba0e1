package truncate

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeneralBots/botcoder/parser"
	"github.com/GeneralBots/botcoder/tokens"
)

// oneRunePerToken makes budgets exact.
var oneRunePerToken = tokens.NewEstimatingCounterWithRatio(1)

func marker(omitted int) string {
	return fmt.Sprintf(markerFormat, omitted)
}

func TestTruncate_Strategies(t *testing.T) {
	text := strings.Repeat("H", 500) + strings.Repeat("T", 500)
	m := marker(900)
	require.Len(t, m, 54)

	tests := []struct {
		name     string
		strategy Strategy
		expected string
	}{
		{
			name:     "keep both",
			strategy: KeepBoth,
			expected: strings.Repeat("H", 23) + m + strings.Repeat("T", 23),
		},
		{
			name:     "keep head",
			strategy: KeepHead,
			expected: strings.Repeat("H", 46) + m,
		},
		{
			name:     "keep tail",
			strategy: KeepTail,
			expected: m + strings.Repeat("T", 46),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := New(tt.strategy).WithCounter(oneRunePerToken).Truncate(text, 100)

			assert.True(t, cut)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, 100, oneRunePerToken.Count(got))
		})
	}
}

func TestTruncate_FitsUnchanged(t *testing.T) {
	tr := New(KeepBoth).WithCounter(oneRunePerToken)

	got, cut := tr.Truncate("short", 100)
	assert.False(t, cut)
	assert.Equal(t, "short", got)

	got, cut = tr.Truncate(strings.Repeat("x", 1000), 0)
	assert.False(t, cut, "zero budget disables truncation")
	assert.Len(t, got, 1000)
}

func TestTruncate_BudgetSmallerThanMarker(t *testing.T) {
	got, cut := New(KeepBoth).WithCounter(oneRunePerToken).Truncate(strings.Repeat("x", 500), 10)

	assert.True(t, cut)
	assert.Equal(t, marker(490), got)
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	text := strings.Repeat("日", 200)

	got, cut := New(KeepHead).WithCounter(oneRunePerToken).Truncate(text, 60)

	require.True(t, cut)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("日", 6)+marker(140), got)
}

func TestTruncate_DefaultCounter(t *testing.T) {
	text := strings.Repeat("word ", 2000)

	got, cut := New(KeepTail).Truncate(text, 200)

	assert.True(t, cut)
	assert.LessOrEqual(t, tokens.NewEstimatingCounter().Count(got), 201)
	assert.True(t, strings.HasSuffix(got, "word "))
}

func TestWithCounter_NilIgnored(t *testing.T) {
	tr := New(KeepHead).WithCounter(nil)
	got, _ := tr.Truncate("abc", 100)
	assert.Equal(t, "abc", got)
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "keep_both", KeepBoth.String())
	assert.Equal(t, "keep_head", KeepHead.String())
	assert.Equal(t, "keep_tail", KeepTail.String())
	assert.Equal(t, "Strategy(7)", Strategy(7).String())
	assert.Equal(t, KeepTail, New(KeepTail).Strategy())
}

func TestForTool(t *testing.T) {
	assert.Equal(t, KeepBoth, ForTool(parser.ToolExecuteCommand))
	assert.Equal(t, KeepBoth, ForTool(parser.ToolReadFile))
	assert.Equal(t, KeepHead, ForTool(parser.ToolWriteFileDelta))
	assert.Equal(t, KeepBoth, ForTool("unknown"))
}

func TestToolOutput(t *testing.T) {
	report := "Could not find content in a.go\nSearching for:\n" + strings.Repeat("z", 500)

	got := ToolOutput(oneRunePerToken, parser.ToolWriteFileDelta, report, 120)

	assert.True(t, strings.HasPrefix(got, "Could not find content in a.go\n"))
	assert.LessOrEqual(t, oneRunePerToken.Count(got), 120)
}

func TestLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprint(i))
	}
	text := strings.Join(lines, "\n")

	assert.Equal(t, "1\n2\n[... 6 lines omitted ...]\n9\n10", Lines(text, 4))
	assert.Equal(t, text, Lines(text, 10))
	assert.Equal(t, text, Lines(text, 0))
}
