package vcf

import (
	"strings"

	"go.uber.org/zap"
)

// FieldMeta is the header-declared metadata for one INFO or FORMAT id.
type FieldMeta struct {
	ID          string
	Number      string // non-negative integer, "A", "R", "G", or "."
	Type        string // Integer|Float|Flag|Character|String
	Description string
}

// Header is the metadata parsed from the ##/#CHROM preamble.
type Header struct {
	Samples []string
	Filters map[string]string // id -> description
	Info    map[string]FieldMeta
	Format  map[string]FieldMeta

	implicitPass bool // PASS was auto-registered, not yet seen as an explicit declaration
}

func newHeader() *Header {
	h := &Header{
		Filters:      map[string]string{"PASS": "All filters passed"},
		Info:         map[string]FieldMeta{},
		Format:       map[string]FieldMeta{},
		implicitPass: true,
	}
	return h
}

// parseHeader consumes the leading ##/#CHROM preamble from src. It fails
// with MalformedInput if #CHROM is never seen.
func parseHeader(src *byteSource, sink *warningSink) (*Header, error) {
	h := newHeader()

	for {
		line, err := src.nextLine()
		if err != nil {
			return nil, newMalformedInput(src.lineNumber(), "no #CHROM header line found")
		}

		switch {
		case hasPrefix(line, "##"):
			parseMetaLine(h, string(line), src.lineNumber(), sink)
		case hasPrefix(line, "#CHROM"):
			fields := strings.Split(string(line), "\t")
			const minCols = 8
			if len(fields) > minCols+1 && fields[minCols] == "FORMAT" {
				h.Samples = append([]string(nil), fields[minCols+1:]...)
			}
			return h, nil
		default:
			return nil, newMalformedInput(src.lineNumber(), "expected '##' or '#CHROM' header line")
		}
	}
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

// parseMetaLine handles one "##KEY=<...>" or "##key=value" header line.
func parseMetaLine(h *Header, line string, lineNo int, sink *warningSink) {
	body := strings.TrimPrefix(line, "##")
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		return
	}
	key := body[:eq]
	value := body[eq+1:]

	switch key {
	case "FILTER":
		attrs, ok := parseAngleAttrs(value)
		if !ok {
			sink.log("malformed FILTER header attribute list", zap.Int("line", lineNo))
			return
		}
		id := attrs["ID"]
		if id == "" {
			sink.log("FILTER declaration missing ID", zap.Int("line", lineNo))
			return
		}
		if _, exists := h.Filters[id]; exists {
			if id == "PASS" && h.implicitPass {
				h.implicitPass = false
			} else {
				sink.warn(DuplicateHeader, lineNo, id, "duplicate FILTER declaration", zap.String("id", id))
			}
		}
		h.Filters[id] = attrs["Description"]
	case "INFO":
		addFieldMeta(h.Info, value, lineNo, "INFO", sink)
	case "FORMAT":
		addFieldMeta(h.Format, value, lineNo, "FORMAT", sink)
	default:
		// Unknown top-level key (contig, fileformat, source, ...); ignored.
	}
}

func addFieldMeta(table map[string]FieldMeta, raw string, lineNo int, kind string, sink *warningSink) {
	attrs, ok := parseAngleAttrs(raw)
	if !ok {
		sink.log("malformed header attribute list", zap.Int("line", lineNo), zap.String("kind", kind))
		return
	}
	id := attrs["ID"]
	if id == "" {
		sink.log("declaration missing ID", zap.Int("line", lineNo), zap.String("kind", kind))
		return
	}
	if _, exists := table[id]; exists {
		sink.warn(DuplicateHeader, lineNo, id, "duplicate header declaration", zap.String("kind", kind), zap.String("id", id))
	}
	table[id] = FieldMeta{
		ID:          id,
		Number:      attrs["Number"],
		Type:        attrs["Type"],
		Description: attrs["Description"],
	}
}

// parseAngleAttrs parses "<K1=V1,K2="quoted, value",...>" into a map. It is
// quoted-value aware: commas inside double quotes do not split attributes.
func parseAngleAttrs(s string) (map[string]string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '<' || s[len(s)-1] != '>' {
		return nil, false
	}
	body := s[1 : len(s)-1]

	attrs := map[string]string{}
	var key strings.Builder
	var val strings.Builder
	inQuotes := false
	inKey := true

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			v := val.String()
			v = strings.TrimPrefix(v, "\"")
			v = strings.TrimSuffix(v, "\"")
			attrs[k] = v
		}
		key.Reset()
		val.Reset()
		inKey = true
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			if !inKey {
				val.WriteByte(c)
			}
		case c == ',' && !inQuotes:
			flush()
		case c == '=' && inKey && !inQuotes:
			inKey = false
		case inKey:
			key.WriteByte(c)
		default:
			val.WriteByte(c)
		}
	}
	flush()

	return attrs, true
}
