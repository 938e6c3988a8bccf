package vcf

// Transformer runs once per chunk, after every record has been scanned and
// the chunk's columns sliced to their final row count. It receives the
// plan and the chunk's column dictionary and returns the dictionary to use
// in its place, with fields added, replaced, or removed. AnnotationSplitter
// checks the names it adds: adding a name already present in cols is a
// DuplicateField error, not a silent overwrite. applyTransformers itself
// performs no name check.
type Transformer interface {
	Transform(plan *Plan, cols map[string]*Column) (map[string]*Column, error)
}

// applyTransformers runs each transformer over cols in order, threading the
// result of one into the next, the way a shell pipeline threads stdout.
func applyTransformers(ts []Transformer, plan *Plan, cols map[string]*Column) (map[string]*Column, error) {
	for _, t := range ts {
		next, err := t.Transform(plan, cols)
		if err != nil {
			return nil, err
		}
		cols = next
	}
	return cols, nil
}

// AnnotationSplitter splits a packed delimiter-joined string column (the
// way VEP-style CSQ/ANN annotation strings pack several sub-fields into one
// INFO value, "T|missense_variant|...") into one new named column per
// requested sub-field. Outputs[i] names the column that receives the i'th
// '|'-separated token; an empty string skips that token. The source column
// is left in the chunk unchanged.
type AnnotationSplitter struct {
	FieldName string // source column name, e.g. "variants/CSQ"
	Delim     byte
	Outputs   []string
}

// NewAnnotationSplitter builds a splitter for fieldName's packed string
// column, emitting one new column per non-empty name in outputs.
func NewAnnotationSplitter(fieldName string, delim byte, outputs ...string) *AnnotationSplitter {
	return &AnnotationSplitter{FieldName: fieldName, Delim: delim, Outputs: outputs}
}

func (a *AnnotationSplitter) Transform(plan *Plan, cols map[string]*Column) (map[string]*Column, error) {
	src := cols[a.FieldName]
	if src == nil || src.Strings == nil {
		return cols, nil
	}
	rows := src.Rows()

	out := make(map[string]*Column, len(cols)+len(a.Outputs))
	for k, v := range cols {
		out[k] = v
	}

	newCols := make([]*Column, len(a.Outputs))
	for i, name := range a.Outputs {
		if name == "" {
			continue
		}
		if _, exists := out[name]; exists {
			return nil, newDuplicateField(name)
		}
		field := &PlannedField{
			Name:      name,
			Origin:    OriginComputed,
			SourceKey: a.FieldName,
			Type:      typeSpec{Kind: DTypeStringVar},
			Fill:      "",
		}
		col := newColumn(field, rows, 1)
		out[name] = col
		newCols[i] = col
	}

	for row := 0; row < rows; row++ {
		val := src.Strings[src.index(row, 0, 0)]
		start, part := 0, 0
		for i := 0; i <= len(val); i++ {
			if i == len(val) || val[i] == a.Delim {
				if part < len(newCols) && newCols[part] != nil {
					newCols[part].Strings[row] = val[start:i]
				}
				part++
				start = i + 1
			}
		}
	}

	return out, nil
}
