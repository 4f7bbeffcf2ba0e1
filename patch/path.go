package patch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths that could escape the project root.
var ErrUnsafePath = errors.New("unsafe file path")

// ValidatePath checks that rel stays inside the project root. Both slash
// styles are treated as separators regardless of platform.
func ValidatePath(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return fmt.Errorf("%w: %s is absolute", ErrUnsafePath, rel)
	}
	if filepath.VolumeName(rel) != "" || hasDriveLetter(rel) {
		return fmt.Errorf("%w: %s names a volume", ErrUnsafePath, rel)
	}
	for _, part := range strings.FieldsFunc(rel, isSeparator) {
		if part == ".." {
			return fmt.Errorf("%w: %s traverses a parent directory", ErrUnsafePath, rel)
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// hasDriveLetter catches "C:foo" style paths on every platform.
func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Resolve validates rel and returns it cleaned, with the platform separator.
// Backslashes count as separators on every platform, matching ValidatePath.
func Resolve(rel string) (string, error) {
	if err := ValidatePath(rel); err != nil {
		return "", err
	}
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))), nil
}
