// Package patch applies exact-match content substitutions to files under a
// project root.
//
// A delta names a relative path, the old content to find and the new
// content to put in its place:
//
//	p := patch.NewOS("/work/project")
//	out := p.Apply("src/lib.rs", "pub fn old() {}", "pub fn new() {}")
//	switch out.Kind {
//	case patch.Patched:
//		fmt.Println(out.Diff)
//	case patch.NotFound:
//		// relay out.String() back to the model
//	}
//
// The rules are fixed:
//
//   - a missing file is created with the new content (parents included)
//   - empty old content replaces the whole file
//   - otherwise the first literal occurrence of the old content is replaced,
//     and nothing is written when there is none
//
// Paths are checked by ValidatePath before the filesystem is touched.
// Absolute paths and any ".." component are refused.
//
// Files are accessed through afero, so tests and dry runs can use an
// in-memory filesystem.
package patch
