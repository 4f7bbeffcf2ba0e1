package truncate

import (
	"fmt"

	"github.com/GeneralBots/botcoder/tokens"
)

// Strategy selects which part of the text survives.
type Strategy int

const (
	// KeepBoth keeps the start and the end and removes the middle.
	KeepBoth Strategy = iota
	// KeepHead keeps the start.
	KeepHead
	// KeepTail keeps the end.
	KeepTail
)

func (s Strategy) String() string {
	switch s {
	case KeepBoth:
		return "keep_both"
	case KeepHead:
		return "keep_head"
	case KeepTail:
		return "keep_tail"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// markerFormat is the note left where text was removed.
const markerFormat = "\n[... output truncated, about %d tokens omitted ...]\n"

// Truncator cuts text to a token budget.
type Truncator struct {
	counter  tokens.Counter
	strategy Strategy
}

// New creates a truncator using the estimating counter.
func New(strategy Strategy) *Truncator {
	return &Truncator{
		counter:  tokens.NewEstimatingCounter(),
		strategy: strategy,
	}
}

// WithCounter sets the token counter. A nil counter is ignored.
func (t *Truncator) WithCounter(counter tokens.Counter) *Truncator {
	if counter != nil {
		t.counter = counter
	}
	return t
}

// Strategy returns the truncator's strategy.
func (t *Truncator) Strategy() Strategy {
	return t.strategy
}

// Truncate reduces text to fit within maxTokens, marker included, and
// reports whether anything was removed. A non-positive budget disables
// truncation.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	total := t.counter.Count(text)
	marker := fmt.Sprintf(markerFormat, total-maxTokens)
	budget := maxTokens - t.counter.Count(marker)
	if budget <= 0 {
		return marker, true
	}

	runes := []rune(text)
	switch t.strategy {
	case KeepHead:
		n := t.headRunes(runes, budget)
		return string(runes[:n]) + marker, true
	case KeepTail:
		n := t.tailRunes(runes, budget)
		return marker + string(runes[len(runes)-n:]), true
	default:
		head := t.headRunes(runes, budget/2)
		tail := t.tailRunes(runes[head:], budget-budget/2)
		return string(runes[:head]) + marker + string(runes[len(runes)-tail:]), true
	}
}

// headRunes returns how many leading runes fit in budget.
func (t *Truncator) headRunes(runes []rune, budget int) int {
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if t.counter.FitsInLimit(string(runes[:mid]), budget) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// tailRunes returns how many trailing runes fit in budget.
func (t *Truncator) tailRunes(runes []rune, budget int) int {
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if t.counter.FitsInLimit(string(runes[len(runes)-mid:]), budget) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}
