package envelope

import (
	"strings"
)

// Content is the body of an open/close directive tag, with one level of
// newline trimming applied and an outermost markdown fence stripped and
// remembered.
type Content struct {
	Text  string
	Fence *Fence
}

// Fence records the stripped code fence so callers can reconstruct the
// original block if needed.
type Fence struct {
	Start string
	End   string
}

// NewContent trims one leading and one trailing newline from raw tag
// content and strips an outermost triple-backtick fence when both the
// opening fence (optionally carrying a language tag) and the closing fence
// are present. One level of newlines inside the fence is trimmed too, so
// fenced and unfenced content behave the same.
func NewContent(raw string) Content {
	raw = strings.TrimPrefix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\n")

	start := strings.TrimLeft(raw, " \t")
	if !strings.HasPrefix(start, "```") {
		return Content{Text: raw}
	}
	nl := strings.IndexByte(start, '\n')
	if nl < 0 {
		return Content{Text: raw}
	}
	fenceStart := start[:nl]
	remaining := start[nl+1:]

	end := strings.TrimRight(remaining, " \t\n")
	if !strings.HasSuffix(end, "```") {
		return Content{Text: raw}
	}
	lastNL := strings.LastIndexByte(end, '\n')
	if lastNL < 0 {
		return Content{Text: raw}
	}
	lastLine := end[lastNL+1:]
	if !strings.HasPrefix(strings.TrimLeft(lastLine, " \t"), "```") {
		return Content{Text: raw}
	}

	text := strings.TrimSuffix(end[:lastNL+1], "\n")
	text = strings.TrimPrefix(text, "\n")
	return Content{
		Text:  text,
		Fence: &Fence{Start: fenceStart, End: lastLine},
	}
}
