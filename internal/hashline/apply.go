package hashline

import (
	"fmt"
	"sort"
	"strings"
)

// mismatchContext is how many surrounding lines the mismatch report shows.
const mismatchContext = 2

// Mismatch is one reference whose hash no longer matches the file.
type Mismatch struct {
	Line     int
	Expected string
	Actual   string
}

// MismatchError reports stale line references together with the refreshed
// tags, so the sender can retry with current LINE#ID values.
type MismatchError struct {
	Mismatches []Mismatch
	FileLines  []string
}

func (e *MismatchError) Error() string {
	changed := make(map[int]bool, len(e.Mismatches))
	display := make(map[int]bool)
	for _, m := range e.Mismatches {
		changed[m.Line] = true
		lo := max(1, m.Line-mismatchContext)
		hi := min(len(e.FileLines), m.Line+mismatchContext)
		for i := lo; i <= hi; i++ {
			display[i] = true
		}
	}

	nums := make([]int, 0, len(display))
	for n := range display {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	plural := "line has"
	if len(e.Mismatches) > 1 {
		plural = "lines have"
	}
	fmt.Fprintf(&b, "%d %s changed since last read. Use the updated LINE#ID references shown below (>>> marks changed lines).\n\n",
		len(e.Mismatches), plural)

	prev := -1
	for _, n := range nums {
		if prev != -1 && n > prev+1 {
			b.WriteString("    ...\n")
		}
		prev = n
		content := e.FileLines[n-1]
		marker := "    "
		if changed[n] {
			marker = ">>> "
		}
		fmt.Fprintf(&b, "%s%s:%s\n", marker, FormatLineTag(n, content), content)
	}
	return b.String()
}

// Result is the outcome of applying hashline edits.
type Result struct {
	Content          string
	FirstChangedLine int // 0 when nothing changed
	NoopEdits        []NoopEdit
}

// NoopEdit records an edit whose replacement equaled the current content.
type NoopEdit struct {
	EditIndex int
	Loc       string
	Current   string
}

// Apply validates every reference against the current content, then applies
// the edits bottom-up so earlier edits never shift later line numbers.
// Identical duplicate edits are dropped. Anchor echoes are stripped from
// multi-line inserts and missing leading indentation is restored on
// same-shape replacements.
func Apply(content string, edits []Edit) (Result, error) {
	if len(edits) == 0 {
		return Result{Content: content}, nil
	}

	fileLines := strings.Split(content, "\n")
	original := make([]string, len(fileLines))
	copy(original, fileLines)

	if err := validateEdits(edits, fileLines); err != nil {
		return Result{}, err
	}

	edits = dedupe(edits)
	order := sortBottomUp(edits)

	res := Result{}
	touch := func(line int) {
		if res.FirstChangedLine == 0 || line < res.FirstChangedLine {
			res.FirstChangedLine = line
		}
	}

	for _, idx := range order {
		e := edits[idx]
		switch e.Kind {
		case EditSet, EditReplace:
			first, last := e.Tag.Line, e.Tag.Line
			if e.Kind == EditReplace {
				last = e.Last.Line
			}
			origLines := original[first-1 : last]
			newLines := restoreIndent(origLines, e.Content)
			if equalLines(origLines, newLines) {
				res.NoopEdits = append(res.NoopEdits, NoopEdit{
					EditIndex: idx,
					Loc:       e.Tag.String(),
					Current:   strings.Join(origLines, "\n"),
				})
				continue
			}
			fileLines = splice(fileLines, first-1, last-first+1, newLines)
			touch(first)

		case EditAppend:
			inserted := stripEchoAfter(original[e.Tag.Line-1], e.Content)
			if len(inserted) == 0 {
				res.NoopEdits = append(res.NoopEdits, NoopEdit{
					EditIndex: idx,
					Loc:       e.Tag.String(),
					Current:   original[e.Tag.Line-1],
				})
				continue
			}
			fileLines = splice(fileLines, e.Tag.Line, 0, inserted)
			touch(e.Tag.Line + 1)

		case EditPrepend:
			inserted := stripEchoBefore(original[e.Tag.Line-1], e.Content)
			if len(inserted) == 0 {
				res.NoopEdits = append(res.NoopEdits, NoopEdit{
					EditIndex: idx,
					Loc:       e.Tag.String(),
					Current:   original[e.Tag.Line-1],
				})
				continue
			}
			fileLines = splice(fileLines, e.Tag.Line-1, 0, inserted)
			touch(e.Tag.Line)
		}
	}

	res.Content = strings.Join(fileLines, "\n")
	return res, nil
}

func validateEdits(edits []Edit, fileLines []string) error {
	var mismatches []Mismatch
	check := func(tag LineTag) error {
		if tag.Line < 1 || tag.Line > len(fileLines) {
			return fmt.Errorf("line %d does not exist (file has %d lines)", tag.Line, len(fileLines))
		}
		actual := ComputeLineHash(fileLines[tag.Line-1])
		if actual != tag.Hash {
			mismatches = append(mismatches, Mismatch{Line: tag.Line, Expected: tag.Hash, Actual: actual})
		}
		return nil
	}

	for _, e := range edits {
		switch e.Kind {
		case EditSet, EditAppend, EditPrepend:
			if (e.Kind == EditAppend || e.Kind == EditPrepend) && len(e.Content) == 0 {
				return fmt.Errorf("insert edit at %s requires content", e.Tag)
			}
			if err := check(e.Tag); err != nil {
				return err
			}
		case EditReplace:
			if e.Tag.Line > e.Last.Line {
				return fmt.Errorf("range start line %d must be <= end line %d", e.Tag.Line, e.Last.Line)
			}
			if err := check(e.Tag); err != nil {
				return err
			}
			if err := check(e.Last); err != nil {
				return err
			}
		}
	}

	if len(mismatches) > 0 {
		return &MismatchError{Mismatches: mismatches, FileLines: fileLines}
	}
	return nil
}

func dedupe(edits []Edit) []Edit {
	seen := make(map[string]bool, len(edits))
	out := edits[:0:0]
	for _, e := range edits {
		key := fmt.Sprintf("%d:%s:%s:%s", e.Kind, e.Tag, e.Last, strings.Join(e.Content, "\n"))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// sortBottomUp orders edit indices by descending target line, inserts after
// same-line replacements, preserving input order for exact ties.
func sortBottomUp(edits []Edit) []int {
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sortKey := func(i int) (line, precedence int) {
		e := edits[i]
		switch e.Kind {
		case EditReplace:
			return e.Last.Line, 0
		case EditAppend:
			return e.Tag.Line, 1
		case EditPrepend:
			return e.Tag.Line, 2
		default:
			return e.Tag.Line, 0
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		la, pa := sortKey(order[a])
		lb, pb := sortKey(order[b])
		if la != lb {
			return la > lb
		}
		return pa < pb
	})
	return order
}

func splice(lines []string, at, del int, insert []string) []string {
	out := make([]string, 0, len(lines)-del+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at+del:]...)
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stripAllWhitespace(s string) string {
	return whitespaceRE.ReplaceAllString(s, "")
}

func equalsIgnoringWhitespace(a, b string) bool {
	return a == b || stripAllWhitespace(a) == stripAllWhitespace(b)
}

// stripEchoAfter drops a leading copy of the anchor line from an insert; the
// model often repeats the anchor it was told to insert after.
func stripEchoAfter(anchor string, lines []string) []string {
	if len(lines) > 1 && equalsIgnoringWhitespace(lines[0], anchor) {
		return lines[1:]
	}
	return lines
}

func stripEchoBefore(anchor string, lines []string) []string {
	if len(lines) > 1 && equalsIgnoringWhitespace(lines[len(lines)-1], anchor) {
		return lines[:len(lines)-1]
	}
	return lines
}

// restoreIndent copies the original leading indentation onto replacement
// lines that arrived with none, for same-shape replacements only.
func restoreIndent(origLines, newLines []string) []string {
	if len(origLines) != len(newLines) {
		return newLines
	}
	out := make([]string, len(newLines))
	for i, line := range newLines {
		out[i] = line
		if line == "" {
			continue
		}
		indent := leadingWhitespace(origLines[i])
		if indent != "" && leadingWhitespace(line) == "" {
			out[i] = indent + line
		}
	}
	return out
}

func leadingWhitespace(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return s[:i]
		}
	}
	return s
}
