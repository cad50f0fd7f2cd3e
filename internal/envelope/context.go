package envelope

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BuildFilesContext gathers files matching the globs (relative to baseDir)
// and formats them as <FILE_CONTENT path="..."> blocks, the prompt-side
// counterpart of the envelope. Returns "" when nothing matched.
//
// Globs use filepath.Match per path segment, with ** matching any number of
// directories.
func BuildFilesContext(baseDir string, globs []string) (string, error) {
	paths, err := globFiles(baseDir, globs)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(baseDir, rel))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		fmt.Fprintf(&b, "<FILE_CONTENT path=%q>\n", filepath.ToSlash(rel))
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString("</FILE_CONTENT>\n\n")
	}
	return b.String(), nil
}

func globFiles(baseDir string, globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, g := range globs {
			ok, err := matchGlob(g, rel)
			if err != nil {
				return err
			}
			if ok && !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// matchGlob matches a slash-separated pattern against a slash-separated
// relative path, treating "**" as any run of path segments.
func matchGlob(pattern, name string) (bool, error) {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, segs []string) (bool, error) {
	for len(pat) > 0 {
		if pat[0] == "**" {
			for skip := 0; skip <= len(segs); skip++ {
				ok, err := matchSegments(pat[1:], segs[skip:])
				if err != nil || ok {
					return ok, err
				}
			}
			return false, nil
		}
		if len(segs) == 0 {
			return false, nil
		}
		ok, err := filepath.Match(pat[0], segs[0])
		if err != nil || !ok {
			return false, err
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0, nil
}
