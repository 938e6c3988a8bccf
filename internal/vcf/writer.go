package vcf

import (
	"strconv"

	"go.uber.org/zap"
)

// writeValue is the one small, uniform typed-writer entry point:
// write(row, sampleIdx, sub, span). sampleIdx is always 0 for variants/*
// and computed fields; sub is the position within a vector/repeat and is 0
// for scalars.
func writeValue(col *Column, row, sampleIdx, sub int, span []byte, line int, sink *warningSink) {
	if sampleIdx >= col.samples || sub >= col.innerCount {
		return // writes beyond the planned shape are silently dropped
	}
	idx := col.index(row, sampleIdx, sub)

	switch col.Field.Type.Kind {
	case DTypeInt, DTypeAlleleCount:
		writeInt(col, idx, span, line, sink)
	case DTypeFloat:
		writeFloat(col, idx, span, line, sink)
	case DTypeBool:
		col.Bools[idx] = true
	case DTypeStringFixed:
		col.Strings[idx] = fixedWidthString(span, col.Field.Type.StringWidth)
	case DTypeStringVar:
		col.Strings[idx] = string(span)
	}
}

func writeInt(col *Column, idx int, span []byte, line int, sink *warningSink) {
	if isMissingSpan(span) {
		col.Ints[idx] = fillToInt64(col.Field.Fill)
		return
	}
	v, err := strconv.ParseInt(string(span), 10, 64)
	if err != nil {
		sink.warn(ParseValue, line, col.Field.Name, "unparseable integer value", zap.ByteString("value", span))
		col.Ints[idx] = fillToInt64(col.Field.Fill)
		return
	}
	col.Ints[idx] = truncateInt(v, col.Field.Type.IntWidth, col.Field.Type.Unsigned)
}

func writeFloat(col *Column, idx int, span []byte, line int, sink *warningSink) {
	if isMissingSpan(span) {
		col.Floats[idx] = fillToFloat64(col.Field.Fill)
		return
	}
	v, err := strconv.ParseFloat(string(span), 64)
	if err != nil {
		sink.warn(ParseValue, line, col.Field.Name, "unparseable float value", zap.ByteString("value", span))
		col.Floats[idx] = fillToFloat64(col.Field.Fill)
		return
	}
	if col.Field.Type.FloatWidth == 4 {
		v = float64(float32(v))
	}
	col.Floats[idx] = v
}

// truncateInt wraps v into the chosen storage width exactly the way a real
// fixed-width integer column would; overflow beyond that width is the
// caller's problem, not the writer's.
func truncateInt(v int64, width int, unsigned bool) int64 {
	switch width {
	case 1:
		if unsigned {
			return int64(uint8(v))
		}
		return int64(int8(v))
	case 2:
		if unsigned {
			return int64(uint16(v))
		}
		return int64(int16(v))
	case 4:
		if unsigned {
			return int64(uint32(v))
		}
		return int64(int32(v))
	default:
		return v
	}
}

func fixedWidthString(span []byte, width int) string {
	if width <= 0 {
		return string(span)
	}
	if len(span) >= width {
		return string(span[:width])
	}
	buf := make([]byte, width)
	copy(buf, span)
	return string(buf)
}

// writeFlagPresence marks an INFO flag as observed, regardless of any value
// attached to it.
func writeFlagPresence(col *Column, row int) {
	col.Bools[col.index(row, 0, 0)] = true
}

// writeGenotype splits a GT-style subfield on '/' or '|' and writes up to
// col.Field.Ploidy allele indices for sample sampleIdx; a missing allele
// ('.') writes the fill.
func writeGenotype(col *Column, row, sampleIdx int, span []byte, line int, sink *warningSink) {
	ploidy := col.Field.Ploidy
	if ploidy <= 0 {
		ploidy = 2
	}
	if isMissingSpan(span) {
		for a := 0; a < ploidy && a < col.innerCount; a++ {
			writeGenotypeAllele(col, row, sampleIdx, a, nil, line, sink)
		}
		return
	}

	a := 0
	start := 0
	for i := 0; i <= len(span); i++ {
		if i == len(span) || span[i] == '/' || span[i] == '|' {
			if a < ploidy {
				writeGenotypeAllele(col, row, sampleIdx, a, span[start:i], line, sink)
			}
			a++
			start = i + 1
		}
	}
	for ; a < ploidy && a < col.innerCount; a++ {
		writeGenotypeAllele(col, row, sampleIdx, a, nil, line, sink)
	}
}

func writeGenotypeAllele(col *Column, row, sampleIdx, a int, tok []byte, line int, sink *warningSink) {
	if a >= col.innerCount {
		return
	}
	idx := col.index(row, sampleIdx, a)
	switch col.Field.Type.Kind {
	case DTypeGenotypeInt:
		if isMissingSpan(tok) {
			col.Ints[idx] = fillToInt64(col.Field.Fill)
			return
		}
		v, err := strconv.ParseInt(string(tok), 10, 64)
		if err != nil {
			sink.warn(ParseValue, line, col.Field.Name, "unparseable genotype allele", zap.ByteString("value", tok))
			col.Ints[idx] = fillToInt64(col.Field.Fill)
			return
		}
		col.Ints[idx] = truncateInt(v, col.Field.Type.IntWidth, col.Field.Type.Unsigned)
	case DTypeGenotypeFixed:
		if isMissingSpan(tok) {
			col.Strings[idx] = fillToString(col.Field.Fill)
			return
		}
		col.Strings[idx] = fixedWidthString(tok, col.Field.Type.StringWidth)
	}
}

// writeGenotypeAlleleCount increments cell[allele] for each observed allele
// in span, up to the configured maximum-alleles bound, for sample sampleIdx.
func writeGenotypeAlleleCount(col *Column, row, sampleIdx int, span []byte, line int, sink *warningSink) {
	maxAlleles := col.innerCount
	base := row*col.itemCount + sampleIdx*col.innerCount
	for i := 0; i < maxAlleles; i++ {
		col.Ints[base+i] = 0
	}
	if isMissingSpan(span) {
		return
	}

	start := 0
	for i := 0; i <= len(span); i++ {
		if i == len(span) || span[i] == '/' || span[i] == '|' {
			tok := span[start:i]
			start = i + 1
			if isMissingSpan(tok) {
				continue
			}
			v, err := strconv.Atoi(string(tok))
			if err != nil {
				sink.warn(ParseValue, line, col.Field.Name, "unparseable genotype allele", zap.ByteString("value", tok))
				continue
			}
			if v >= 0 && v < maxAlleles {
				col.Ints[base+v]++
			}
		}
	}
}
