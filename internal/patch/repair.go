package patch

// repaired is a hunk rewritten against its matched file position: anchor
// payloads replaced with the file's raw lines, misaligned blank context
// reclassified, overhang dropped. The completed diff built from it applies
// byte-exactly.
type repaired struct {
	lines    []HunkLine
	oldCount int
	newCount int
}

// repairHunk rewrites the hunk for the given alignment.
//
//   - Matched Context/Remove lines take the file line's raw payload, so
//     suffix and normalized matches become byte-exact in the output.
//   - Blank Context lines facing a non-blank file line (or end of file)
//     become empty Add lines, preserving the intended spacing without
//     consuming a file line.
//   - Trailing Context past end of file is dropped.
//   - Add lines pass through verbatim.
func repairHunk(img *FileImage, h *Hunk, al *alignment) repaired {
	matchFor := make(map[int]int, len(al.matches))
	for _, m := range al.matches {
		matchFor[m.hunkIdx] = m.fileIdx
	}
	asAdd := make(map[int]bool, len(al.blankAdds)+len(al.eofAdds))
	for _, idx := range al.blankAdds {
		asAdd[idx] = true
	}
	for _, idx := range al.eofAdds {
		asAdd[idx] = true
	}
	dropped := make(map[int]bool, len(al.overhang))
	for _, idx := range al.overhang {
		dropped[idx] = true
	}

	var r repaired
	for idx, hl := range h.Lines {
		switch {
		case dropped[idx]:
			continue
		case asAdd[idx]:
			r.lines = append(r.lines, HunkLine{Tag: TagAdd})
			r.newCount++
		case hl.Tag == TagAdd:
			r.lines = append(r.lines, hl)
			r.newCount++
		default:
			fileIdx, ok := matchFor[idx]
			if !ok {
				continue
			}
			r.lines = append(r.lines, HunkLine{Tag: hl.Tag, Payload: img.Raw(fileIdx)})
			r.oldCount++
			if hl.Tag == TagContext {
				r.newCount++
			}
		}
	}
	return r
}
