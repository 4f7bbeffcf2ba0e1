package patch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/project"

// spyFs counts every filesystem operation.
type spyFs struct {
	afero.Fs
	calls atomic.Int64
}

func (s *spyFs) hit() { s.calls.Add(1) }

func (s *spyFs) Create(name string) (afero.File, error) {
	s.hit()
	return s.Fs.Create(name)
}

func (s *spyFs) Mkdir(name string, perm os.FileMode) error {
	s.hit()
	return s.Fs.Mkdir(name, perm)
}

func (s *spyFs) MkdirAll(path string, perm os.FileMode) error {
	s.hit()
	return s.Fs.MkdirAll(path, perm)
}

func (s *spyFs) Open(name string) (afero.File, error) {
	s.hit()
	return s.Fs.Open(name)
}

func (s *spyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	s.hit()
	return s.Fs.OpenFile(name, flag, perm)
}

func (s *spyFs) Remove(name string) error {
	s.hit()
	return s.Fs.Remove(name)
}

func (s *spyFs) RemoveAll(path string) error {
	s.hit()
	return s.Fs.RemoveAll(path)
}

func (s *spyFs) Rename(oldname, newname string) error {
	s.hit()
	return s.Fs.Rename(oldname, newname)
}

func (s *spyFs) Stat(name string) (os.FileInfo, error) {
	s.hit()
	return s.Fs.Stat(name)
}

func (s *spyFs) Chmod(name string, mode os.FileMode) error {
	s.hit()
	return s.Fs.Chmod(name, mode)
}

func (s *spyFs) Chown(name string, uid, gid int) error {
	s.hit()
	return s.Fs.Chown(name, uid, gid)
}

func (s *spyFs) Chtimes(name string, atime, mtime time.Time) error {
	s.hit()
	return s.Fs.Chtimes(name, atime, mtime)
}

func newMemPatcher(t *testing.T, files map[string]string) (*Patcher, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(mem, filepath.Join(root, name), []byte(content), 0o644))
	}
	return New(mem, root), mem
}

func readMem(t *testing.T, fsys afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, filepath.Join(root, name))
	require.NoError(t, err)
	return string(data)
}

func TestApply_PatchesFile(t *testing.T) {
	p, mem := newMemPatcher(t, map[string]string{"src/lib.rs": "pub fn old() {}"})

	out := p.Apply("src/lib.rs", "pub fn old() {}", "pub fn new() {}")

	assert.Equal(t, Patched, out.Kind)
	assert.True(t, out.OK())
	assert.NoError(t, out.Err())
	assert.Equal(t, "pub fn new() {}", readMem(t, mem, "src/lib.rs"))
	assert.Equal(t, "Successfully applied delta to: src/lib.rs", out.String())
}

func TestApply_CreatesMissingFile(t *testing.T) {
	p, mem := newMemPatcher(t, nil)

	out := p.Apply("deep/nested/dir/file.txt", "ignored", "hello\n")

	assert.Equal(t, Created, out.Kind)
	assert.Equal(t, "hello\n", readMem(t, mem, "deep/nested/dir/file.txt"))
	assert.Equal(t, "Created new file: deep/nested/dir/file.txt", out.String())
}

func TestApply_ReplacesWholeFile(t *testing.T) {
	p, mem := newMemPatcher(t, map[string]string{"a.txt": "one\ntwo\n"})

	out := p.Apply("a.txt", "", "three\n")

	assert.Equal(t, Replaced, out.Kind)
	assert.Equal(t, "three\n", readMem(t, mem, "a.txt"))
	assert.Contains(t, out.Diff, "-one\n")
	assert.Contains(t, out.Diff, "+three\n")
}

func TestApply_CreateThenPatchRoundTrip(t *testing.T) {
	p, mem := newMemPatcher(t, nil)

	first := p.Apply("notes.md", "", "draft")
	require.Equal(t, Created, first.Kind)

	second := p.Apply("notes.md", "draft", "final")
	require.Equal(t, Patched, second.Kind)

	assert.Equal(t, "final", readMem(t, mem, "notes.md"))
}

func TestApply_OnlyFirstOccurrence(t *testing.T) {
	p, mem := newMemPatcher(t, map[string]string{"x.go": "a := 1\nb := 1\na := 1\n"})

	out := p.Apply("x.go", "a := 1", "a := 2")

	require.Equal(t, Patched, out.Kind)
	assert.Equal(t, "a := 2\nb := 1\na := 1\n", readMem(t, mem, "x.go"))
}

func TestApply_NotFound(t *testing.T) {
	original := "fn main() {}\n"
	p, mem := newMemPatcher(t, map[string]string{"main.rs": original})

	out := p.Apply("main.rs", "fn missing() {}", "fn found() {}")

	assert.Equal(t, NotFound, out.Kind)
	assert.False(t, out.OK())
	assert.Equal(t, "fn missing() {}", out.Searched)
	assert.ErrorIs(t, out.Err(), ErrNotFound)
	assert.Equal(t, "Could not find content in main.rs\nSearching for:\nfn missing() {}", out.String())
	assert.Equal(t, original, readMem(t, mem, "main.rs"), "file must be untouched")
}

func TestApply_LiteralMatch(t *testing.T) {
	p, mem := newMemPatcher(t, map[string]string{"re.txt": "a.b a+b"})

	out := p.Apply("re.txt", "a+b", "sum")

	require.Equal(t, Patched, out.Kind)
	assert.Equal(t, "a.b sum", readMem(t, mem, "re.txt"))
}

func TestApply_UnsafePathsTouchNothing(t *testing.T) {
	paths := []string{
		"../../etc/passwd",
		"/etc/passwd",
		"",
		"src/../../outside.txt",
		`..\windows\system.ini`,
		`\rooted`,
		`C:\Windows\win.ini`,
		"C:relative",
	}

	for _, rel := range paths {
		t.Run(rel, func(t *testing.T) {
			spy := &spyFs{Fs: afero.NewMemMapFs()}
			p := New(spy, root)

			out := p.Apply(rel, "old", "new")

			assert.Equal(t, IOError, out.Kind)
			assert.ErrorIs(t, out.Err(), ErrUnsafePath)
			assert.Zero(t, spy.calls.Load(), "no filesystem access for unsafe paths")
		})
	}
}

func TestApply_DirectoryTarget(t *testing.T) {
	p, mem := newMemPatcher(t, nil)
	require.NoError(t, mem.MkdirAll(filepath.Join(root, "pkg"), 0o755))

	out := p.Apply("pkg", "", "content")

	assert.Equal(t, IOError, out.Kind)
	assert.Error(t, out.Err())
	assert.Contains(t, out.String(), "Error: ")
}

func TestApply_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(target, []byte("echo old\n"), 0o700))

	out := Apply(dir, "script.sh", "old", "new")
	require.Equal(t, Patched, out.Kind)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "echo new\n", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestApply_OSCreatesDirectories(t *testing.T) {
	dir := t.TempDir()

	out := NewOS(dir).Apply("src/new/mod.rs", "", "pub mod x;")
	require.Equal(t, Created, out.Kind)

	data, err := os.ReadFile(filepath.Join(dir, "src", "new", "mod.rs"))
	require.NoError(t, err)
	assert.Equal(t, "pub mod x;", string(data))
}

func TestPatcher_Root(t *testing.T) {
	p := New(afero.NewMemMapFs(), root)
	assert.Equal(t, root, p.Root())
}

func TestUnifiedDiff(t *testing.T) {
	diff := UnifiedDiff("src/lib.rs", "pub fn old() {}\n", "pub fn new() {}\n")

	assert.Contains(t, diff, "--- a/src/lib.rs")
	assert.Contains(t, diff, "+++ b/src/lib.rs")
	assert.Contains(t, diff, "-pub fn old() {}")
	assert.Contains(t, diff, "+pub fn new() {}")

	assert.Empty(t, UnifiedDiff("same.txt", "x", "x"))
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Created, "created"},
		{Replaced, "replaced"},
		{Patched, "patched"},
		{NotFound, "not_found"},
		{IOError, "io_error"},
		{Kind(9), "Kind(9)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.kind.String())
	}
}
