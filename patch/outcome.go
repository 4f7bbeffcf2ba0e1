package patch

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by the error of a NotFound outcome.
var ErrNotFound = errors.New("content not found")

// Kind classifies an Outcome.
type Kind int

const (
	// Created means the file did not exist and was written.
	Created Kind = iota
	// Replaced means the whole file was overwritten.
	Replaced
	// Patched means the first occurrence of the old content was replaced.
	Patched
	// NotFound means the old content does not occur in the file.
	NotFound
	// IOError means the path was refused or the filesystem failed.
	IOError
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	case Patched:
		return "patched"
	case NotFound:
		return "not_found"
	case IOError:
		return "io_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of applying one delta.
type Outcome struct {
	Kind Kind
	Path string

	// Searched is the old content for NotFound outcomes.
	Searched string

	// Diff is a unified diff of the change for Replaced and Patched
	// outcomes. It is informational only.
	Diff string

	// Cause is set for IOError outcomes.
	Cause error
}

// OK reports whether the file was written.
func (o Outcome) OK() bool {
	return o.Kind == Created || o.Kind == Replaced || o.Kind == Patched
}

// Err returns nil for successful outcomes, an error wrapping ErrNotFound for
// NotFound and the cause for IOError.
func (o Outcome) Err() error {
	switch o.Kind {
	case NotFound:
		return fmt.Errorf("%w in %s", ErrNotFound, o.Path)
	case IOError:
		if o.Cause == nil {
			return fmt.Errorf("patch %s failed", o.Path)
		}
		return o.Cause
	default:
		return nil
	}
}

// String renders the outcome as the text relayed back to the model.
func (o Outcome) String() string {
	switch o.Kind {
	case Created:
		return "Created new file: " + o.Path
	case Replaced:
		return "Replaced entire file: " + o.Path
	case Patched:
		return "Successfully applied delta to: " + o.Path
	case NotFound:
		return fmt.Sprintf("Could not find content in %s\nSearching for:\n%s", o.Path, o.Searched)
	default:
		return "Error: " + o.Err().Error()
	}
}
