package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEstimatingCounterWithRatio(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		expected float64
	}{
		{name: "custom ratio", ratio: 3.0, expected: 3.0},
		{name: "zero ratio uses default", ratio: 0, expected: DefaultCharsPerToken},
		{name: "negative ratio uses default", ratio: -1, expected: DefaultCharsPerToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEstimatingCounterWithRatio(tt.ratio)
			assert.Equal(t, tt.expected, c.CharsPerToken)
		})
	}
}

func TestEstimatingCounter_Count(t *testing.T) {
	c := NewEstimatingCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "empty string", text: "", expected: 0},
		{name: "single character rounds down", text: "a", expected: 0},
		{name: "four characters", text: "test", expected: 1},
		{name: "hello world rounds up", text: "Hello World", expected: 3},
		{name: "multi-byte runes counted once", text: "日本語です", expected: 1},
		{name: "patch block", text: "CHANGE: src/lib.rs\n", expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Count(tt.text))
		})
	}
}

func TestEstimatingCounter_FitsInLimit(t *testing.T) {
	c := NewEstimatingCounter()

	assert.True(t, c.FitsInLimit("", 0))
	assert.True(t, c.FitsInLimit(strings.Repeat("x", 400), 100))
	assert.False(t, c.FitsInLimit(strings.Repeat("x", 404), 100))
}

func TestTiktokenCounter_FallsBackOnUnknownEncoding(t *testing.T) {
	c := NewTiktokenCounter("no_such_encoding")

	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "no_such_encoding")

	// Same answer as the estimator once the encoding is known to be missing.
	text := "read_file: \"src/main.rs\""
	assert.Equal(t, NewEstimatingCounter().Count(text), c.Count(text))
	assert.True(t, c.FitsInLimit(text, 100))
}

func TestNewTiktokenCounter_DefaultEncoding(t *testing.T) {
	c := NewTiktokenCounter("")
	assert.Equal(t, DefaultEncoding, c.encoding)
}

func TestForName(t *testing.T) {
	c, err := ForName("")
	require.NoError(t, err)
	assert.IsType(t, &EstimatingCounter{}, c)

	c, err = ForName("estimate")
	require.NoError(t, err)
	assert.IsType(t, &EstimatingCounter{}, c)

	c, err = ForName("tiktoken")
	require.NoError(t, err)
	assert.IsType(t, &TiktokenCounter{}, c)

	_, err = ForName("words")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown token counter")
}

func TestCounter_Interface(t *testing.T) {
	var _ Counter = (*EstimatingCounter)(nil)
	var _ Counter = (*TiktokenCounter)(nil)
}

func BenchmarkEstimatingCounter_Count(b *testing.B) {
	c := NewEstimatingCounter()
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)

	b.ResetTimer()
	for range b.N {
		c.Count(text)
	}
}
