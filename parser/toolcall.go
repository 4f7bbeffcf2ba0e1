package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Tool names understood by the executor.
const (
	ToolReadFile       = "read_file"
	ToolExecuteCommand = "execute_command"
	ToolWriteFileDelta = "write_file_delta"
)

// DeltaSeparator separates the target path from the old/new content pair
// in a write_file_delta parameter.
const DeltaSeparator = ":::"

// Patch block markers.
const (
	MarkerChange  = "CHANGE:"
	MarkerCurrent = "<<<<<<< CURRENT"
	MarkerDivider = "======="
	MarkerNew     = ">>>>>>> NEW"
)

// ErrInvalidDelta indicates a write_file_delta parameter that cannot be split
// into path, old content and new content.
var ErrInvalidDelta = errors.New("invalid delta format")

// ToolCall is one tool invocation recovered from a reply.
type ToolCall struct {
	// Name is one of ToolReadFile, ToolExecuteCommand, ToolWriteFileDelta.
	Name string `json:"name"`

	// Parameter is the raw argument. For write_file_delta it is the
	// serialized DeltaSpec (see DeltaSpec.Parameter).
	Parameter string `json:"parameter"`

	// Delta is set for write_file_delta calls produced by the block scanner.
	// It carries old content that spans several lines, which the serialized
	// Parameter cannot represent unambiguously.
	Delta *DeltaSpec `json:"-"`
}

// NewDeltaCall builds a write_file_delta call from a spec.
func NewDeltaCall(spec DeltaSpec) ToolCall {
	return ToolCall{
		Name:      ToolWriteFileDelta,
		Parameter: spec.Parameter(),
		Delta:     &spec,
	}
}

// DeltaSpec is a targeted substitution in one file.
// An empty Old means the whole file is replaced.
type DeltaSpec struct {
	Path string `json:"path"`
	Old  string `json:"old_content"`
	New  string `json:"new_content"`
}

// Parameter serializes the spec as "path:::old\nnew".
func (d DeltaSpec) Parameter() string {
	return d.Path + DeltaSeparator + d.Old + "\n" + d.New
}

// Block renders the spec in patch-block syntax.
func (d DeltaSpec) Block() string {
	var sb strings.Builder
	sb.WriteString(MarkerChange + " " + d.Path + "\n")
	sb.WriteString(MarkerCurrent + "\n")
	if d.Old != "" {
		sb.WriteString(d.Old + "\n")
	}
	sb.WriteString(MarkerDivider + "\n")
	if d.New != "" {
		sb.WriteString(d.New + "\n")
	}
	sb.WriteString(MarkerNew + "\n")
	return sb.String()
}

// ParseDeltaParameter splits a serialized write_file_delta parameter.
// The first ":::" ends the path and the first newline after it ends the
// old content, so old content recovered this way is always a single line.
func ParseDeltaParameter(param string) (DeltaSpec, error) {
	path, rest, ok := strings.Cut(param, DeltaSeparator)
	if !ok {
		return DeltaSpec{}, fmt.Errorf("%w: missing %q separator", ErrInvalidDelta, DeltaSeparator)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return DeltaSpec{}, fmt.Errorf("%w: empty path", ErrInvalidDelta)
	}
	old, updated, ok := strings.Cut(rest, "\n")
	if !ok {
		return DeltaSpec{}, fmt.Errorf("%w: missing newline between old and new content", ErrInvalidDelta)
	}
	return DeltaSpec{Path: path, Old: old, New: updated}, nil
}

// Spec returns the delta carried by a write_file_delta call, preferring the
// structured form set by the block scanner.
func (c ToolCall) Spec() (DeltaSpec, error) {
	if c.Name != ToolWriteFileDelta {
		return DeltaSpec{}, fmt.Errorf("%w: %s is not %s", ErrInvalidDelta, c.Name, ToolWriteFileDelta)
	}
	if c.Delta != nil {
		return *c.Delta, nil
	}
	return ParseDeltaParameter(c.Parameter)
}

// String renders the call for logs and terminal previews.
func (c ToolCall) String() string {
	if c.Name == ToolWriteFileDelta {
		if spec, err := c.Spec(); err == nil {
			return c.Name + ": " + spec.Path
		}
	}
	return c.Name + ": " + c.Parameter
}
