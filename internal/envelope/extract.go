package envelope

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	rootTag   = "FILE_CHANGES"
	rootOpen  = "<" + rootTag + ">"
	rootClose = "</" + rootTag + ">"
)

var directiveTags = []string{
	"FILE_NEW",
	"FILE_PATCH",
	"FILE_RENAME",
	"FILE_DELETE",
	"FILE_HASHLINE_PATCH",
}

var (
	attrRE = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=\s*"([^"]*)"`)
	tagRE  = regexp.MustCompile(`<(FILE_[A-Z_]+)((?:\s[^>]*)?)>`)
)

// Extract recovers the directive list from the first <FILE_CHANGES> block in
// the input. Surrounding prose is ignored. When extrude is true, the second
// return value is the input with the matched block excised; otherwise it is
// empty.
//
// Malformed children (unknown tag, missing required attribute) become Fail
// directives in place; they never abort extraction.
func Extract(input string, extrude bool) (Changes, string) {
	start := strings.Index(input, rootOpen)
	if start < 0 {
		if extrude {
			return Changes{}, input
		}
		return Changes{}, ""
	}
	endRel := strings.Index(input[start:], rootClose)
	if endRel < 0 {
		if extrude {
			return Changes{}, input
		}
		return Changes{}, ""
	}
	end := start + endRel + len(rootClose)
	inner := input[start+len(rootOpen) : start+endRel]

	remainder := ""
	if extrude {
		remainder = input[:start] + input[end:]
	}

	inner = expandSelfClosing(inner)
	return Changes{Directives: parseDirectives(inner)}, remainder
}

// parseDirectives walks the inner content sequentially. Each recognized
// open tag is parsed with its attributes; paired tags capture everything up
// to the first matching close tag verbatim.
func parseDirectives(inner string) []Directive {
	var directives []Directive
	pos := 0

	for {
		loc := tagRE.FindStringSubmatchIndex(inner[pos:])
		if loc == nil {
			break
		}
		name := inner[pos+loc[2] : pos+loc[3]]
		attrText := inner[pos+loc[4] : pos+loc[5]]
		bodyStart := pos + loc[1]
		attrs := parseAttrs(attrText)

		// Closing tags of known directives are consumed by the body scan
		// below; a stray one here is skipped.
		content := ""
		next := bodyStart
		if paired(name) {
			closeTag := "</" + name + ">"
			rel := strings.Index(inner[bodyStart:], closeTag)
			if rel < 0 {
				directives = append(directives, failDirective(name, attrs,
					fmt.Errorf("missing closing tag %s", closeTag)))
				pos = bodyStart
				continue
			}
			content = inner[bodyStart : bodyStart+rel]
			next = bodyStart + rel + len(closeTag)
		}

		d, err := buildDirective(name, attrs, content)
		if err != nil {
			d = failDirective(name, attrs, err)
		}
		directives = append(directives, d)
		pos = next
	}

	return directives
}

func paired(name string) bool {
	switch name {
	case "FILE_NEW", "FILE_PATCH", "FILE_HASHLINE_PATCH":
		return true
	}
	return false
}

func buildDirective(name string, attrs map[string]string, content string) (Directive, error) {
	switch name {
	case "FILE_NEW":
		path, err := requireAttr(name, attrs, "file_path")
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindNew, FilePath: path, Content: NewContent(content)}, nil
	case "FILE_PATCH":
		path, err := requireAttr(name, attrs, "file_path")
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindPatch, FilePath: path, Content: NewContent(content)}, nil
	case "FILE_HASHLINE_PATCH":
		path, err := requireAttr(name, attrs, "file_path")
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindHashlinePatch, FilePath: path, Content: NewContent(content)}, nil
	case "FILE_RENAME":
		from, err := requireAttr(name, attrs, "from_path")
		if err != nil {
			return Directive{}, err
		}
		to, err := requireAttr(name, attrs, "to_path")
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindRename, FromPath: from, ToPath: to}, nil
	case "FILE_DELETE":
		path, err := requireAttr(name, attrs, "file_path")
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: KindDelete, FilePath: path}, nil
	}
	return Directive{}, fmt.Errorf("unknown directive tag %q", name)
}

func failDirective(name string, attrs map[string]string, err error) Directive {
	// Best-effort path for reporting.
	path := attrs["file_path"]
	if path == "" {
		path = attrs["to_path"]
	}
	if path == "" {
		path = attrs["from_path"]
	}
	return Directive{
		Kind:     KindFail,
		FailKind: name,
		FilePath: path,
		Reason:   err.Error(),
	}
}

func requireAttr(tag string, attrs map[string]string, key string) (string, error) {
	v, ok := attrs[key]
	if !ok || v == "" {
		return "", fmt.Errorf("missing attribute %q for tag %q", key, tag)
	}
	return v, nil
}

// parseAttrs parses key="value" pairs. Values are taken literally; no XML
// unescaping is performed, since values are path strings.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRE.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// expandSelfClosing rewrites <TAG ... /> into <TAG ...></TAG> so the
// sequential scanner only ever sees open/close pairs.
func expandSelfClosing(content string) string {
	for _, tag := range directiveTags {
		pattern := "<" + tag
		searchPos := 0
		for {
			idx := strings.Index(content[searchPos:], pattern)
			if idx < 0 {
				break
			}
			start := searchPos + idx
			gt := strings.IndexByte(content[start:], '>')
			if gt < 0 {
				break
			}
			end := start + gt
			head := strings.TrimRight(content[:end], " \t")
			if strings.HasSuffix(head, "/") {
				slash := len(head) - 1
				expansion := "></" + tag + ">"
				content = content[:slash] + expansion + content[end+1:]
				searchPos = slash + len(expansion)
			} else {
				searchPos = end + 1
			}
		}
	}
	return content
}
