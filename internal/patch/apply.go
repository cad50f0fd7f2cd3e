package patch

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Result is the outcome of applying a simplified patch to file content.
type Result struct {
	Content string
	Tier    Tier
}

// Apply completes a simplified patch body against the original content and
// applies the resulting numbered diff. The original's newline flavor is
// preserved; a missing trailing newline is added before completion, matching
// unified-diff line semantics.
func Apply(original, body string) (Result, error) {
	img := NewFileImage(original)
	completed, err := Complete(img, body)
	if err != nil {
		return Result{}, err
	}
	content, err := applyUnified(img, completed.Diff)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: content, Tier: completed.MaxTier()}, nil
}

// applyUnified applies a numbered unified diff to the image. The diff comes
// from the completer, so context and removal lines are expected to be
// byte-identical to the file; any mismatch is an ErrApplyFailed.
func applyUnified(img *FileImage, diff string) (string, error) {
	if diff == "" {
		return img.Join(rawLines(img)), nil
	}

	var out []string
	src := 0

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	i := 0
	for i < len(lines) {
		m := hunkHeaderRE.FindStringSubmatch(lines[i])
		if m == nil {
			return "", applyFailedErr("expected hunk header, got %q", lines[i])
		}
		oldStart, _ := strconv.Atoi(m[1])
		oldCount := 1
		if m[2] != "" {
			oldCount, _ = strconv.Atoi(m[2])
		}
		i++

		// Copy untouched lines up to the hunk.
		hunkAt := oldStart - 1
		if hunkAt < src || hunkAt > img.Len() {
			return "", applyFailedErr("hunk start %d out of range (cursor %d, file %d lines)",
				oldStart, src+1, img.Len())
		}
		for src < hunkAt {
			out = append(out, img.Raw(src))
			src++
		}

		consumed := 0
		for i < len(lines) && !strings.HasPrefix(lines[i], "@@") {
			line := lines[i]
			i++
			if line == "" {
				line = " "
			}
			payload := line[1:]
			switch line[0] {
			case ' ':
				if src >= img.Len() || img.Raw(src) != payload {
					return "", applyFailedErr("context mismatch at line %d", src+1)
				}
				out = append(out, payload)
				src++
				consumed++
			case '-':
				if src >= img.Len() || img.Raw(src) != payload {
					return "", applyFailedErr("removal mismatch at line %d", src+1)
				}
				src++
				consumed++
			case '+':
				out = append(out, payload)
			default:
				return "", applyFailedErr("illegal diff line %q", line)
			}
		}
		if consumed != oldCount {
			return "", applyFailedErr("hunk consumed %d old lines, header declared %d", consumed, oldCount)
		}
	}

	for src < img.Len() {
		out = append(out, img.Raw(src))
		src++
	}
	return img.Join(out), nil
}

func rawLines(img *FileImage) []string {
	raws := make([]string, img.Len())
	for i := range img.Lines {
		raws[i] = img.Lines[i].Raw
	}
	return raws
}
