package executor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape indicates a directive path resolved outside the base
// directory after normalization.
var ErrPathEscape = errors.New("path escapes base directory")

// resolveInBase joins a directive path onto the base directory and rejects
// any result whose normalized form leaves it. ".." segments are collapsed
// by filepath.Clean before the prefix check.
func resolveInBase(baseDir, path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, full)
	}
	full = filepath.Clean(full)
	base := filepath.Clean(baseDir)

	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %q outside %q", ErrPathEscape, path, full, base)
	}
	return full, nil
}
