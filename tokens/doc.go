// Package tokens maps text to approximate token counts.
//
// The agent loop uses counts in two places: the rate limiter is charged
// with the estimated size of every request before the provider reports
// real usage, and tool results are clipped to a token budget before they
// are appended to the conversation.
//
// # Counter
//
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, world!")     // ~3 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// EstimatingCounter divides the rune count by 4 and rounds. TiktokenCounter
// uses a real BPE vocabulary and degrades to the estimate when the
// vocabulary cannot be loaded:
//
//	counter := tokens.NewTiktokenCounter("cl100k_base")
//
// ForName resolves the counter named in configuration.
package tokens
