// Package truncate clips tool output before it re-enters the conversation.
//
// Command output and file reads can be far larger than the context window
// allows. A Truncator cuts text down to a token budget and leaves a marker
// saying how much was removed, so the model knows to ask more precisely:
//
//	tr := truncate.New(truncate.KeepBoth).WithCounter(counter)
//	clipped, cut := tr.Truncate(output, 4000)
//
// # Strategies
//
//   - KeepHead keeps the start (patch reports, where the verdict comes first)
//   - KeepTail keeps the end
//   - KeepBoth keeps the start and the end, removing the middle; compiler
//     errors and test failures tend to sit at either edge
//
// ToolOutput picks the strategy for a tool name.
//
// Budgets are measured with a tokens.Counter and cuts land on rune
// boundaries, never inside a multi-byte character.
package truncate
