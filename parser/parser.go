package parser

// Parser extracts tool calls from model replies.
type Parser struct {
	// union scans simple calls even when patch blocks were found.
	union bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithUnion makes the parser return patch blocks followed by simple calls
// instead of short-circuiting on the first patch block.
func WithUnion() Option {
	return func(p *Parser) {
		p.union = true
	}
}

// New creates a parser. The zero-option parser short-circuits on patch blocks.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the unique tool calls in raw, in the order they first appear.
func (p *Parser) Parse(raw string) []ToolCall {
	lines := splitLines(StripFences(raw))

	calls := scanBlocks(lines)
	if len(calls) == 0 || p.union {
		calls = append(calls, scanSimple(lines)...)
	}
	return dedupe(calls)
}

type callKey struct {
	name, parameter string
	delta           DeltaSpec
	structured      bool
}

func keyOf(call ToolCall) callKey {
	if call.Delta != nil {
		return callKey{name: call.Name, delta: *call.Delta, structured: true}
	}
	return callKey{name: call.Name, parameter: call.Parameter}
}

// dedupe keeps the first occurrence of every call. Patch blocks compare by
// path, old and new content, since different blocks can share a serialized
// parameter.
func dedupe(calls []ToolCall) []ToolCall {
	seen := make(map[callKey]struct{}, len(calls))
	unique := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		key := keyOf(call)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, call)
	}
	return unique
}

// Parse is a convenience function using the default parser.
func Parse(raw string) []ToolCall {
	return New().Parse(raw)
}
