package vcf

import "bytes"

// recordCaptures holds the raw spans a record's computed fields are derived
// from, captured as the scanner walks REF/ALT/FILTER.
type recordCaptures struct {
	ref    []byte
	alts   [][]byte // split on ',', "." collapsed to zero alts
	filter []byte
}

// deriveComputed populates numalt/altlen/is_snp/FILTER_* from already-seen
// raw spans, run once the scanner has finished dispatching a record's raw
// fields to their typed writers.
func deriveComputed(plan *Plan, cols map[string]*Column, row int, cap recordCaptures) {
	numalt := len(cap.alts)

	if f := plan.numaltField; f != nil {
		col := cols[f.Name]
		col.Ints[col.index(row, 0, 0)] = int64(numalt)
	}

	if f := plan.altlenField; f != nil {
		col := cols[f.Name]
		refLen := len(cap.ref)
		for i := 0; i < col.innerCount; i++ {
			if i < len(cap.alts) {
				col.Ints[col.index(row, 0, i)] = int64(len(cap.alts[i]) - refLen)
			}
		}
	}

	if f := plan.isSNPField; f != nil {
		col := cols[f.Name]
		col.Bools[col.index(row, 0, 0)] = isSNP(cap.ref, cap.alts)
	}

	if len(plan.filterByTag) > 0 {
		deriveFilterTags(plan, cols, row, cap.filter)
	}
}

func isSNP(ref []byte, alts [][]byte) bool {
	if len(ref) != 1 {
		return false
	}
	switch ref[0] {
	case 'A', 'C', 'G', 'T':
	default:
		return false
	}
	for _, a := range alts {
		if len(a) == 1 {
			return true
		}
	}
	return false
}

func deriveFilterTags(plan *Plan, cols map[string]*Column, row int, filter []byte) {
	pass := isMissingSpan(filter) || bytes.Equal(filter, []byte("PASS"))

	for tag, f := range plan.filterByTag {
		col := cols[f.Name]
		idx := col.index(row, 0, 0)
		if isMissingSpan(filter) {
			col.Bools[idx] = false
			continue
		}
		if tag == "PASS" {
			col.Bools[idx] = pass
			continue
		}
		col.Bools[idx] = containsCommaToken(filter, tag)
	}
}

func containsCommaToken(s []byte, tag string) bool {
	start := 0
	tb := []byte(tag)
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if bytes.Equal(s[start:i], tb) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

// splitAlt splits the raw ALT span on ',' into allele tokens, treating a
// bare '.' as zero alternate alleles.
func splitAlt(span []byte) [][]byte {
	if isMissingSpan(span) {
		return nil
	}
	var out [][]byte
	start := 0
	for i := 0; i <= len(span); i++ {
		if i == len(span) || span[i] == ',' {
			out = append(out, span[start:i])
			start = i + 1
		}
	}
	return out
}
