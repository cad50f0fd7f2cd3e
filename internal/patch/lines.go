package patch

import (
	"strings"
)

// Line is one file line plus its lazily computed normalized forms. The
// matcher compares anchor lines against file lines through these forms, one
// per tier, so each form is computed at most once per line.
type Line struct {
	Raw string

	trimmed      string
	trimmedLower string
	fuzzy        string
	trimmedOK    bool
	lowerOK      bool
	fuzzyOK      bool
}

// Trimmed returns the line with leading/trailing whitespace removed, internal
// runs of spaces and tabs collapsed to a single space, and markdown heading
// markers stripped.
func (l *Line) Trimmed() string {
	if !l.trimmedOK {
		l.trimmed = normalizeLine(l.Raw)
		l.trimmedOK = true
	}
	return l.trimmed
}

// TrimmedLower returns the trimmed form lowercased.
func (l *Line) TrimmedLower() string {
	if !l.lowerOK {
		l.trimmedLower = strings.ToLower(l.Trimmed())
		l.lowerOK = true
	}
	return l.trimmedLower
}

// Fuzzy returns the loosest form: trimmed-lower with inline backticks removed
// and trailing sentence punctuation stripped.
func (l *Line) Fuzzy() string {
	if !l.fuzzyOK {
		s := strings.ReplaceAll(l.TrimmedLower(), "`", "")
		l.fuzzy = strings.TrimRight(s, ".,:;!?")
		l.fuzzyOK = true
	}
	return l.fuzzy
}

// Blank reports whether the line is empty after trimming.
func (l *Line) Blank() bool {
	return l.Trimmed() == ""
}

// normalizeLine trims, strips a markdown heading marker (a run of '#'
// followed by whitespace), and collapses internal whitespace runs.
func normalizeLine(s string) string {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] == '#' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		s = s[i+1:]
	}
	return strings.Join(strings.Fields(s), " ")
}

// FileImage is the ordered line sequence of one file together with its
// detected newline flavor. Images are built per apply call and discarded
// after the new content is produced.
type FileImage struct {
	Lines   []Line
	Newline string // "\n" or "\r\n"
}

// NewFileImage splits content into lines. CRLF content is normalized to LF
// internally; Join restores the original flavor. A trailing newline is
// implied: the final empty element of the split is not a line.
func NewFileImage(content string) *FileImage {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
		content = strings.ReplaceAll(content, "\r\n", "\n")
	}
	img := &FileImage{Newline: newline}
	if content == "" {
		return img
	}
	content = strings.TrimSuffix(content, "\n")
	for _, raw := range strings.Split(content, "\n") {
		img.Lines = append(img.Lines, Line{Raw: raw})
	}
	return img
}

// Len returns the number of lines in the image.
func (img *FileImage) Len() int { return len(img.Lines) }

// Raw returns the raw payload of line i.
func (img *FileImage) Raw(i int) string { return img.Lines[i].Raw }

// Join renders lines back to file content in the image's newline flavor,
// with a trailing newline when non-empty.
func (img *FileImage) Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, img.Newline) + img.Newline
}
