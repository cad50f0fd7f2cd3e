package patch

import (
	"strings"
)

// Tier identifies the equality predicate that located a hunk. Higher values
// are looser; TierNone marks hunks that needed no search (pure inserts).
type Tier int

const (
	TierNone Tier = iota
	TierStrict
	TierResilient
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierResilient:
		return "resilient"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// proximityWindow clamps the tier 2/3 search to this many lines on either
// side of the search origin.
const proximityWindow = 100

// suffixMatchMinLen is the minimum length of a normalized fragment for
// suffix matching, preventing short common fragments like "}" from
// false-positive matching.
const suffixMatchMinLen = 10

// matchClass ranks how exactly one anchor line matched one file line.
// Larger is stricter; the candidate score compares per-class counts.
type matchClass int

const (
	classBlank matchClass = iota
	classSuffix
	classNorm
	classRaw
	numClasses
)

// lineMatch pairs a hunk line with the file line it aligned to.
type lineMatch struct {
	hunkIdx int
	fileIdx int
	class   matchClass
}

// alignment is one candidate placement of a hunk's anchor in the file.
type alignment struct {
	pos     int
	tier    Tier
	matches []lineMatch

	// Repair bookkeeping, all indices into Hunk.Lines.
	blankAdds []int // blank Context against a non-blank file line
	eofAdds   []int // blank Context at or past end of file
	overhang  []int // non-blank trailing Context past end of file

	score [numClasses]int
}

// better reports whether a should be preferred over b, given the search
// origin. Stricter per-line classifications win, then proximity, then the
// smaller index.
func (a *alignment) better(b *alignment, origin int) bool {
	for c := classRaw; c >= classBlank; c-- {
		if a.score[c] != b.score[c] {
			return a.score[c] > b.score[c]
		}
	}
	da, db := absDist(a.pos, origin), absDist(b.pos, origin)
	if da != db {
		return da < db
	}
	return a.pos < b.pos
}

// ties reports whether two alignments tie on exactness and proximity.
func (a *alignment) ties(b *alignment, origin int) bool {
	return a.score == b.score && absDist(a.pos, origin) == absDist(b.pos, origin)
}

func absDist(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// findAnchor locates the hunk's anchor in the file. Tiers are tried in
// order and the first tier with candidates wins; looser tiers are never
// consulted once a stricter one matched. The origin seeds proximity scoring
// in every tier and bounds the search window in tiers 2 and 3.
func findAnchor(img *FileImage, h *Hunk, origin int) (*alignment, error) {
	// One Line per hunk line so normalized forms are cached across all
	// candidate positions and tiers.
	anchors := make([]Line, len(h.Lines))
	for i, hl := range h.Lines {
		anchors[i] = Line{Raw: hl.Payload}
	}

	for tier := TierStrict; tier <= TierFuzzy; tier++ {
		lo, hi := 0, img.Len()
		if tier > TierStrict {
			lo = max(0, origin-proximityWindow)
			hi = min(img.Len(), origin+proximityWindow)
		}

		var best, runnerUp *alignment
		for i := lo; i <= hi; i++ {
			al, ok := tryAlign(img, h, anchors, i, tier)
			if !ok {
				continue
			}
			switch {
			case best == nil || al.better(best, origin):
				best, runnerUp = al, best
			case runnerUp == nil || al.better(runnerUp, origin):
				runnerUp = al
			}
		}
		if best != nil {
			if runnerUp != nil && best.ties(runnerUp, origin) {
				return nil, ambiguousErr(best.pos, runnerUp.pos)
			}
			return best, nil
		}
	}
	return nil, noMatchErr(h.Lines, origin)
}

// tryAlign attempts to align the hunk's anchor starting at file index start
// under the given tier. Add lines are skipped. Blank Context lines that do
// not face a blank file line are earmarked for reclassification rather than
// failing the alignment; Remove lines past end of file always fail (lines
// that do not exist cannot be deleted).
func tryAlign(img *FileImage, h *Hunk, anchors []Line, start int, tier Tier) (*alignment, bool) {
	al := &alignment{pos: start, tier: tier}
	off := 0

	for idx := range h.Lines {
		hl := &h.Lines[idx]
		if hl.Tag == TagAdd {
			continue
		}
		target := start + off
		anchor := &anchors[idx]

		if anchor.Blank() {
			switch {
			case target < img.Len() && img.Lines[target].Blank():
				class := classBlank
				if hl.Payload == img.Raw(target) {
					class = classRaw
				}
				al.record(idx, target, class)
				off++
			case hl.Tag == TagRemove:
				// A blank Remove must face a blank line.
				return nil, false
			case target >= img.Len():
				al.eofAdds = append(al.eofAdds, idx)
			default:
				al.blankAdds = append(al.blankAdds, idx)
			}
			continue
		}

		if target >= img.Len() {
			if hl.Tag == TagRemove {
				return nil, false
			}
			al.overhang = append(al.overhang, idx)
			continue
		}

		class, ok := classify(anchor, &img.Lines[target], tier)
		if !ok {
			return nil, false
		}
		al.record(idx, target, class)
		off++
	}

	return al, len(al.matches) > 0
}

func (al *alignment) record(hunkIdx, fileIdx int, class matchClass) {
	al.matches = append(al.matches, lineMatch{hunkIdx: hunkIdx, fileIdx: fileIdx, class: class})
	al.score[class]++
}

// classify tests one anchor line against one file line under a tier's
// equality predicate and reports how exactly it matched.
func classify(anchor, file *Line, tier Tier) (matchClass, bool) {
	if anchor.Raw == file.Raw {
		return classRaw, true
	}
	switch tier {
	case TierStrict:
		return 0, false
	case TierResilient:
		if anchor.Trimmed() == file.Trimmed() {
			return classNorm, true
		}
		if suffixMatch(file.Trimmed(), anchor.Trimmed()) {
			return classSuffix, true
		}
	case TierFuzzy:
		if anchor.Trimmed() == file.Trimmed() || anchor.Fuzzy() == file.Fuzzy() {
			return classNorm, true
		}
		if suffixMatch(file.Fuzzy(), anchor.Fuzzy()) {
			return classSuffix, true
		}
	}
	return 0, false
}

// suffixMatch reports whether either normalized fragment is a suffix of the
// other, provided the shorter fragment is long enough to be meaningful.
func suffixMatch(fileForm, anchorForm string) bool {
	if len(anchorForm) >= suffixMatchMinLen && strings.HasSuffix(fileForm, anchorForm) {
		return true
	}
	if len(fileForm) >= suffixMatchMinLen && strings.HasSuffix(anchorForm, fileForm) {
		return true
	}
	return false
}
