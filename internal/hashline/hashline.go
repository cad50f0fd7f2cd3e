// Package hashline implements the line-addressed patch dialect: every file
// line carries a short content tag, and edits reference lines as LINE#ID so
// stale references are caught before anything is rewritten.
package hashline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// nibbleAlphabet encodes one hash byte as two letters. The letters are
// chosen to be visually distinct and never form common English words.
const nibbleAlphabet = "ZPMQVRWSNKTXJBYH"

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	tagRE        = regexp.MustCompile(`^\s*[>+<-]*\s*(\d+)\s*#\s*([ZPMQVRWSNKTXJBYH]{2})`)
)

// LineTag is a 1-based line number plus the two-letter content hash the
// sender observed for that line.
type LineTag struct {
	Line int
	Hash string
}

func (t LineTag) String() string { return fmt.Sprintf("%d#%s", t.Line, t.Hash) }

// ComputeLineHash returns the two-letter tag for a line's content. The line
// is stripped of all whitespace (and a trailing CR) first, so reformatting
// does not invalidate references.
func ComputeLineHash(line string) string {
	line = strings.TrimSuffix(line, "\r")
	normalized := whitespaceRE.ReplaceAllString(line, "")
	sum := xxhash.Sum64String(normalized)
	b := byte(sum & 0xff)
	return string([]byte{nibbleAlphabet[b>>4], nibbleAlphabet[b&0x0f]})
}

// FormatLineTag renders the LINE#ID reference for a line.
func FormatLineTag(line int, content string) string {
	return fmt.Sprintf("%d#%s", line, ComputeLineHash(content))
}

// FormatHashLines renders content as one "LINE#ID:content" row per line,
// numbering from startLine. This is the listing fed to a model so it can
// produce hashline edits.
func FormatHashLines(content string, startLine int) string {
	lines := strings.Split(content, "\n")
	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[i] = fmt.Sprintf("%s:%s", FormatLineTag(startLine+i, line), line)
	}
	return strings.Join(rows, "\n")
}

// EditKind enumerates the closed set of edit forms.
type EditKind int

const (
	// EditSet replaces (or, with empty content, deletes) a single line.
	EditSet EditKind = iota
	// EditReplace replaces an inclusive line range.
	EditReplace
	// EditAppend inserts after the referenced line.
	EditAppend
	// EditPrepend inserts before the referenced line.
	EditPrepend
)

// Edit is one parsed hashline edit.
type Edit struct {
	Kind    EditKind
	Tag     LineTag // Set, Append (after), Prepend (before)
	Last    LineTag // Replace range end
	Content []string
}

// ParseTag parses a LINE#ID reference.
func ParseTag(ref string) (LineTag, error) {
	m := tagRE.FindStringSubmatch(ref)
	if m == nil {
		return LineTag{}, fmt.Errorf("invalid line reference %q, expected LINE#ID (e.g. 5#QV)", ref)
	}
	line, err := strconv.Atoi(m[1])
	if err != nil || line < 1 {
		return LineTag{}, fmt.Errorf("line number must be >= 1 in %q", ref)
	}
	return LineTag{Line: line, Hash: m[2]}, nil
}

// ParseEdit parses one edit line. Recognized forms:
//
//	N#ID:content         set line N (empty content deletes it)
//	A#ID-B#ID:content    replace lines A..B
//	>+N#ID content       append content after line N
//	<+N#ID content       prepend content before line N
func ParseEdit(line string) (Edit, error) {
	line = strings.TrimSpace(line)

	if rest, ok := strings.CutPrefix(line, ">+"); ok {
		return parseInsert(EditAppend, rest)
	}
	if rest, ok := strings.CutPrefix(line, "<+"); ok {
		return parseInsert(EditPrepend, rest)
	}

	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return Edit{}, fmt.Errorf("could not parse hashline edit: %q", line)
	}
	refPart := strings.TrimSpace(line[:colon])
	content := line[colon+1:]

	if dash := strings.IndexByte(refPart, '-'); dash >= 0 {
		first, err := ParseTag(refPart[:dash])
		if err != nil {
			return Edit{}, err
		}
		last, err := ParseTag(refPart[dash+1:])
		if err != nil {
			return Edit{}, err
		}
		return Edit{Kind: EditReplace, Tag: first, Last: last, Content: contentLines(content)}, nil
	}

	tag, err := ParseTag(refPart)
	if err != nil {
		return Edit{}, err
	}
	return Edit{Kind: EditSet, Tag: tag, Content: contentLines(content)}, nil
}

func parseInsert(kind EditKind, rest string) (Edit, error) {
	rest = strings.TrimSpace(rest)
	space := strings.IndexByte(rest, ' ')
	if space < 0 {
		return Edit{}, fmt.Errorf("insert edit needs content after the reference: %q", rest)
	}
	tag, err := ParseTag(rest[:space])
	if err != nil {
		return Edit{}, err
	}
	return Edit{Kind: kind, Tag: tag, Content: []string{rest[space+1:]}}, nil
}

// contentLines turns the text after the colon into replacement lines; an
// empty string means the referenced lines are deleted.
func contentLines(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// ParseEdits parses a directive body, skipping blank lines.
func ParseEdits(body string) ([]Edit, error) {
	var edits []Edit
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		edit, err := ParseEdit(line)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}
	return edits, nil
}
