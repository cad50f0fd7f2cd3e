package patch

import (
	"fmt"
	"strings"
)

// CompletedHunk records where one hunk landed and how it was found.
type CompletedHunk struct {
	OldStart int // 1-based
	OldCount int
	NewStart int // 1-based
	NewCount int
	Tier     Tier
}

// Completed is a canonical numbered unified diff synthesized from a
// simplified patch, plus per-hunk placement info.
type Completed struct {
	Diff  string
	Hunks []CompletedHunk
}

// MaxTier returns the loosest tier any hunk needed.
func (c *Completed) MaxTier() Tier {
	t := TierNone
	for _, h := range c.Hunks {
		if h.Tier > t {
			t = h.Tier
		}
	}
	return t
}

// Complete rewrites a simplified (numberless) patch body into a numbered
// unified diff against the given file image.
//
// Hunks are processed in input order. A cursor tracks the index just past
// the previously matched anchor and seeds the next hunk's proximity prior;
// a cumulative delta translates old line numbers into new ones. Hunks with
// no Context or Remove lines append at end of file.
func Complete(img *FileImage, body string) (*Completed, error) {
	hunks, err := ParsePatch(body)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	c := &Completed{}
	cursor := 0
	delta := 0

	for i := range hunks {
		h := &hunks[i]

		var r repaired
		var pos int
		tier := TierNone
		if h.PureAdd() {
			pos = img.Len()
			r = repaired{lines: h.Lines, newCount: len(h.Lines)}
		} else {
			al, err := findAnchor(img, h, cursor)
			if err != nil {
				return nil, err
			}
			pos = al.pos
			tier = al.tier
			r = repairHunk(img, h, al)
		}

		ch := CompletedHunk{
			OldStart: pos + 1,
			OldCount: r.oldCount,
			NewStart: pos + 1 + delta,
			NewCount: r.newCount,
			Tier:     tier,
		}
		c.Hunks = append(c.Hunks, ch)

		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", ch.OldStart, ch.OldCount, ch.NewStart, ch.NewCount)
		for _, hl := range r.lines {
			b.WriteByte(hl.Tag.Prefix())
			b.WriteString(hl.Payload)
			b.WriteByte('\n')
		}

		cursor = pos + r.oldCount
		delta += r.newCount - r.oldCount
	}

	c.Diff = b.String()
	return c, nil
}
