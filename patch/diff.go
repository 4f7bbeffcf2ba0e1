package patch

import "github.com/pmezard/go-difflib/difflib"

// DiffContext is the number of unchanged lines shown around each hunk.
const DiffContext = 3

// UnifiedDiff renders the change from before to after. It returns an empty
// string when the contents are equal.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContext,
	})
	if err != nil {
		return ""
	}
	return diff
}
