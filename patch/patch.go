package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Patcher applies deltas to files below a root directory.
type Patcher struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger for patch outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a patcher over fsys rooted at root. A relative root is made
// absolute against the working directory.
func New(fsys afero.Fs, root string, opts ...Option) *Patcher {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	p := &Patcher{
		fs:     afero.NewBasePathFs(fsys, root),
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOS creates a patcher over the operating system filesystem.
func NewOS(root string, opts ...Option) *Patcher {
	return New(afero.NewOsFs(), root, opts...)
}

// Root returns the absolute project root.
func (p *Patcher) Root() string {
	return p.root
}

// Apply replaces the first occurrence of old with updated in the file at
// rel. See the package documentation for the full rules.
func (p *Patcher) Apply(rel, old, updated string) Outcome {
	out := p.apply(rel, old, updated)
	switch out.Kind {
	case NotFound:
		p.logger.Warn("patch content not found", "path", rel, "searched_bytes", len(old))
	case IOError:
		p.logger.Warn("patch failed", "path", rel, "error", out.Cause)
	default:
		p.logger.Info("patch applied", "path", rel, "outcome", out.Kind.String())
	}
	return out
}

func (p *Patcher) apply(rel, old, updated string) Outcome {
	name, err := Resolve(rel)
	if err != nil {
		return Outcome{Kind: IOError, Path: rel, Cause: err}
	}

	info, err := p.fs.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return p.create(rel, name, updated)
	}
	if err != nil {
		return ioFailure(rel, "stat", err)
	}
	if info.IsDir() {
		return ioFailure(rel, "write", fmt.Errorf("%s is a directory", rel))
	}

	existing, err := afero.ReadFile(p.fs, name)
	if err != nil {
		return ioFailure(rel, "read", err)
	}
	before := string(existing)

	if old == "" {
		if err := afero.WriteFile(p.fs, name, []byte(updated), info.Mode().Perm()); err != nil {
			return ioFailure(rel, "write", err)
		}
		return Outcome{Kind: Replaced, Path: rel, Diff: UnifiedDiff(rel, before, updated)}
	}

	pos := strings.Index(before, old)
	if pos < 0 {
		return Outcome{Kind: NotFound, Path: rel, Searched: old}
	}
	after := before[:pos] + updated + before[pos+len(old):]
	if err := afero.WriteFile(p.fs, name, []byte(after), info.Mode().Perm()); err != nil {
		return ioFailure(rel, "write", err)
	}
	return Outcome{Kind: Patched, Path: rel, Diff: UnifiedDiff(rel, before, after)}
}

func (p *Patcher) create(rel, name, content string) Outcome {
	if dir := filepath.Dir(name); dir != "." {
		if err := p.fs.MkdirAll(dir, dirPerm); err != nil {
			return ioFailure(rel, "create directories for", err)
		}
	}
	if err := afero.WriteFile(p.fs, name, []byte(content), filePerm); err != nil {
		return ioFailure(rel, "create", err)
	}
	return Outcome{Kind: Created, Path: rel}
}

func ioFailure(rel, op string, err error) Outcome {
	return Outcome{Kind: IOError, Path: rel, Cause: fmt.Errorf("%s %s: %w", op, rel, err)}
}

// Apply applies one delta below root on the operating system filesystem.
func Apply(root, rel, old, updated string) Outcome {
	return NewOS(root).Apply(rel, old, updated)
}
