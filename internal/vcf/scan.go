package vcf

import "go.uber.org/zap"

// scanner walks records one at a time, dispatching raw byte spans to the
// typed writers the plan resolved, and records warnings for anomalies a
// record can recover from (the offending cell just keeps its fill value).
type scanner struct {
	src    *byteSource
	plan   *Plan
	sink   *warningSink
	region *Region

	fieldSpans [][2]int // scratch reused across nextRecord calls
}

func newScanner(src *byteSource, plan *Plan, opts *Options, sink *warningSink) *scanner {
	return &scanner{
		src:    src,
		plan:   plan,
		sink:   sink,
		region: opts.Region,
	}
}

const (
	colCHROM = iota
	colPOS
	colID
	colREF
	colALT
	colQUAL
	colFILTER
	colINFO
	colFORMAT
)

// scanInto reads records from src into cols starting at row index startRow,
// up to chunkLength rows, returning the number of rows written and io.EOF
// once the source is exhausted. A record rejected by the region filter is
// skipped without consuming a row slot. A record with fewer than the 8
// fixed columns is still committed as a row: whatever columns are present
// get dispatched, everything past the last span keeps its configured fill.
func (s *scanner) scanInto(cols map[string]*Column, startRow, chunkLength int) (int, error) {
	row := startRow
	for row < chunkLength {
		line, err := s.src.nextLine()
		if err != nil {
			return row - startRow, err
		}
		if len(line) == 0 {
			continue // tolerate stray blank lines between records
		}

		s.fieldSpans = splitFields(line, s.fieldSpans)
		if len(s.fieldSpans) < 8 {
			s.sink.log("truncated record, fewer than 8 fixed columns; missing trailing fields left at fill",
				zap.Int("line", s.src.lineNumber()), zap.Int("columns", len(s.fieldSpans)))
		}

		if s.region != nil && !s.matchesRegion(line) {
			continue
		}

		s.writeRecord(cols, row, line)
		row++
	}
	return row - startRow, nil
}

func (s *scanner) matchesRegion(line []byte) bool {
	if len(s.fieldSpans) <= colPOS {
		return false
	}
	chromSpan := fieldBytes(line, s.fieldSpans[colCHROM])
	if string(chromSpan) != s.region.Chrom {
		return false
	}
	if s.region.Start == 0 && s.region.End == 0 {
		return true
	}
	posSpan := fieldBytes(line, s.fieldSpans[colPOS])
	pos, ok := parseIntSpan(posSpan)
	if !ok {
		return false
	}
	if s.region.Start > 0 && pos < s.region.Start {
		return false
	}
	if s.region.End > 0 && pos >= s.region.End {
		return false
	}
	return true
}

func parseIntSpan(span []byte) (int64, bool) {
	if isMissingSpan(span) {
		return 0, false
	}
	var v int64
	for _, b := range span {
		if b < '0' || b > '9' {
			return 0, false
		}
		v = v*10 + int64(b-'0')
	}
	return v, true
}

func fixedColumnIndex(token string) int {
	switch token {
	case "CHROM":
		return colCHROM
	case "POS":
		return colPOS
	case "ID":
		return colID
	case "REF":
		return colREF
	case "ALT":
		return colALT
	case "QUAL":
		return colQUAL
	case "FILTER":
		return colFILTER
	default:
		return -1
	}
}

// writeRecord dispatches one already-split record line to the plan's typed
// writers, then derives computed fields from the spans captured along the
// way. ALT is written as a vector field (one writeValue call per allele);
// all other fixed columns are scalar.
func (s *scanner) writeRecord(cols map[string]*Column, row int, line []byte) {
	spans := s.fieldSpans
	lineNo := s.src.lineNumber()

	for token, field := range s.plan.fixedByToken {
		if token == "ALT" {
			continue
		}
		idx := fixedColumnIndex(token)
		if idx < 0 || idx >= len(spans) {
			continue
		}
		writeValue(cols[field.Name], row, 0, 0, fieldBytes(line, spans[idx]), lineNo, s.sink)
	}

	var cap recordCaptures
	if len(spans) > colREF {
		cap.ref = fieldBytes(line, spans[colREF])
	}
	if len(spans) > colALT {
		cap.alts = splitAlt(fieldBytes(line, spans[colALT]))
	}
	if len(spans) > colFILTER {
		cap.filter = fieldBytes(line, spans[colFILTER])
	}

	if altField := s.plan.fixedByToken["ALT"]; altField != nil {
		col := cols[altField.Name]
		for i, a := range cap.alts {
			writeValue(col, row, 0, i, a, lineNo, s.sink)
		}
	}

	if len(spans) > colINFO {
		s.writeInfo(cols, row, fieldBytes(line, spans[colINFO]), lineNo)
	}

	if len(spans) > colFORMAT {
		s.writeCalldata(cols, row, line, spans, lineNo)
	}

	deriveComputed(s.plan, cols, row, cap)
}

// writeInfo splits the INFO column on ';' and dispatches each key[=value]
// pair to its planned column, handling Flag-style bare keys and
// comma-separated vector values.
func (s *scanner) writeInfo(cols map[string]*Column, row int, info []byte, lineNo int) {
	if isMissingSpan(info) {
		return
	}
	start := 0
	for i := 0; i <= len(info); i++ {
		if i == len(info) || info[i] == ';' {
			s.writeInfoPair(cols, row, info[start:i], lineNo)
			start = i + 1
		}
	}
}

func (s *scanner) writeInfoPair(cols map[string]*Column, row int, pair []byte, lineNo int) {
	eq := -1
	for i, b := range pair {
		if b == '=' {
			eq = i
			break
		}
	}

	var key, val []byte
	if eq < 0 {
		key = pair
	} else {
		key = pair[:eq]
		val = pair[eq+1:]
	}

	field := s.plan.infoByID[string(key)]
	if field == nil {
		return
	}
	col := cols[field.Name]

	if field.Type.Kind == DTypeBool {
		writeFlagPresence(col, row)
		return
	}

	if len(field.ItemShape) == 0 {
		writeValue(col, row, 0, 0, val, lineNo, s.sink)
		return
	}

	start, sub := 0, 0
	for i := 0; i <= len(val); i++ {
		if i == len(val) || val[i] == ',' {
			writeValue(col, row, 0, sub, val[start:i], lineNo, s.sink)
			sub++
			start = i + 1
		}
	}
}

// splitSubfields splits a FORMAT column or a sample's value column on ':'.
func splitSubfields(b []byte) [][2]int {
	var out [][2]int
	start := 0
	for i := 0; i <= len(b); i++ {
		if i == len(b) || b[i] == ':' {
			out = append(out, [2]int{start, i})
			start = i + 1
		}
	}
	return out
}

// writeCalldata dispatches each selected sample's ':'-delimited subfields to
// their planned calldata/* columns. A FORMAT column that is absent, empty,
// or "." leaves every calldata/* cell at its fill for this record.
func (s *scanner) writeCalldata(cols map[string]*Column, row int, line []byte, spans [][2]int, lineNo int) {
	formatSpan := fieldBytes(line, spans[colFORMAT])
	if isMissingSpan(formatSpan) {
		return
	}
	formatSpans := splitSubfields(formatSpan)
	formatIDs := make([]string, len(formatSpans))
	for i, sp := range formatSpans {
		formatIDs[i] = string(fieldBytes(formatSpan, sp))
	}

	if n := len(spans) - (colFORMAT + 1); n > len(s.plan.AllSamples) {
		s.sink.warn(ExtraSamples, lineNo, "", "record has more samples than the header declared")
	}

	sampleIdx := 0
	for col := colFORMAT + 1; col < len(spans); col++ {
		sourceIdx := col - (colFORMAT + 1)
		if s.plan.SampleMask != nil {
			if sourceIdx >= len(s.plan.SampleMask) || !s.plan.SampleMask[sourceIdx] {
				continue
			}
		}
		s.writeOneSample(cols, row, sampleIdx, fieldBytes(line, spans[col]), formatIDs, lineNo)
		sampleIdx++
	}
}

func (s *scanner) writeOneSample(cols map[string]*Column, row, sampleIdx int, sample []byte, formatIDs []string, lineNo int) {
	if isMissingSpan(sample) {
		return
	}
	subSpans := splitSubfields(sample)
	for i, id := range formatIDs {
		if i >= len(subSpans) {
			break
		}
		field := s.plan.formatByID[id]
		if field == nil {
			continue
		}
		col := cols[field.Name]
		sub := fieldBytes(sample, subSpans[i])

		switch field.Type.Kind {
		case DTypeGenotypeInt, DTypeGenotypeFixed:
			writeGenotype(col, row, sampleIdx, sub, lineNo, s.sink)
		case DTypeAlleleCount:
			writeGenotypeAlleleCount(col, row, sampleIdx, sub, lineNo, s.sink)
		default:
			if len(field.ItemShape) == 0 {
				writeValue(col, row, sampleIdx, 0, sub, lineNo, s.sink)
				continue
			}
			start, vsub := 0, 0
			for j := 0; j <= len(sub); j++ {
				if j == len(sub) || sub[j] == ',' {
					writeValue(col, row, sampleIdx, vsub, sub[start:j], lineNo, s.sink)
					vsub++
					start = j + 1
				}
			}
		}
	}
}
