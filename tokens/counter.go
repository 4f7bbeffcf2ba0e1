package tokens

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// DefaultEncoding is the BPE encoding used by TiktokenCounter when none is given.
const DefaultEncoding = "cl100k_base"

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter uses a character-to-token ratio for estimation.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with default settings.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{
		CharsPerToken: DefaultCharsPerToken,
	}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio (4.0) is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{
		CharsPerToken: charsPerToken,
	}
}

// Count estimates the number of tokens in the given text.
// Runes are counted rather than bytes so multi-byte text is not overcounted.
func (c *EstimatingCounter) Count(text string) int {
	runeCount := utf8.RuneCountInString(text)
	tokens := float64(runeCount) / c.CharsPerToken
	return int(tokens + 0.5)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// TiktokenCounter counts tokens with a BPE encoding. The encoding is loaded
// lazily on first use; if it cannot be loaded (tiktoken fetches the
// vocabulary over the network unless an offline loader is installed) the
// counter falls back to the estimating heuristic for the rest of its life.
type TiktokenCounter struct {
	encoding string
	fallback *EstimatingCounter

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTiktokenCounter creates a counter for the named encoding.
// An empty name selects DefaultEncoding.
func NewTiktokenCounter(encoding string) *TiktokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenCounter{
		encoding: encoding,
		fallback: NewEstimatingCounter(),
	}
}

func (c *TiktokenCounter) load() {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.err = fmt.Errorf("load encoding %s: %w", c.encoding, err)
			return
		}
		c.enc = enc
	})
}

// Err reports why the BPE encoding is unavailable, if it is.
func (c *TiktokenCounter) Err() error {
	c.load()
	return c.err
}

// Count returns the exact BPE token count, or the estimate when the
// encoding could not be loaded.
func (c *TiktokenCounter) Count(text string) int {
	c.load()
	if c.enc == nil {
		return c.fallback.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *TiktokenCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// ForName returns the counter registered under name: "estimate" (or "")
// for EstimatingCounter and "tiktoken" for TiktokenCounter.
func ForName(name string) (Counter, error) {
	switch name {
	case "", "estimate":
		return NewEstimatingCounter(), nil
	case "tiktoken":
		return NewTiktokenCounter(DefaultEncoding), nil
	default:
		return nil, fmt.Errorf("unknown token counter %q (valid: estimate, tiktoken)", name)
	}
}
