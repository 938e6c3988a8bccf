package vcf

// Column is the column buffer backing one planned field for the duration of
// a chunk: a dense array of shape (chunkLength, itemCount) preallocated with
// the field's fill value, written in place by typed writers, then logically
// sliced to the actual row count at chunk end.
//
// Storage always uses the widest native Go representation for its kind
// (int64, float64, string, bool); the planned field's Type carries the
// caller's requested width/signedness so writers can truncate/clip the way
// a fixed-width column would, and so sinks can narrow on the way out.
type Column struct {
	Field *PlannedField

	Ints    []int64   // DTypeInt, DTypeGenotypeInt, DTypeAlleleCount
	Floats  []float64 // DTypeFloat
	Bools   []bool    // DTypeBool
	Strings []string  // DTypeStringVar, DTypeStringFixed, DTypeGenotypeFixed

	samples    int // n_selected_samples for calldata/*, 1 otherwise
	innerCount int // product(ItemShape), the per-(row,sample) cell count
	itemCount  int // samples * innerCount
	rows       int
}

// newColumn allocates a column for chunkLength rows. nSamples is the number
// of selected samples; it only matters for calldata/* fields, which carry
// an extra (n_records, n_selected_samples, ...) leading dimension.
func newColumn(f *PlannedField, chunkLength, nSamples int) *Column {
	inner := 1
	for _, d := range f.ItemShape {
		inner *= d
	}
	if inner <= 0 {
		inner = 1
	}
	samples := 1
	if f.Origin == OriginFormat {
		samples = nSamples
		if samples <= 0 {
			samples = 1
		}
	}
	itemCount := samples * inner

	c := &Column{Field: f, samples: samples, innerCount: inner, itemCount: itemCount, rows: chunkLength}
	n := chunkLength * itemCount

	switch f.Type.Kind {
	case DTypeInt, DTypeGenotypeInt, DTypeAlleleCount:
		c.Ints = make([]int64, n)
		fillInt(c.Ints, fillToInt64(f.Fill))
	case DTypeFloat:
		c.Floats = make([]float64, n)
		fillFloat(c.Floats, fillToFloat64(f.Fill))
	case DTypeBool:
		c.Bools = make([]bool, n)
		fillBool(c.Bools, fillToBool(f.Fill))
	case DTypeStringVar, DTypeStringFixed, DTypeGenotypeFixed:
		c.Strings = make([]string, n)
		fillString(c.Strings, fillToString(f.Fill))
	}
	return c
}

// slice truncates the column to the first n rows, the view handed to the
// consumer at chunk end.
func (c *Column) slice(n int) *Column {
	out := &Column{Field: c.Field, samples: c.samples, innerCount: c.innerCount, itemCount: c.itemCount, rows: n}
	lim := n * c.itemCount
	if c.Ints != nil {
		out.Ints = c.Ints[:lim]
	}
	if c.Floats != nil {
		out.Floats = c.Floats[:lim]
	}
	if c.Bools != nil {
		out.Bools = c.Bools[:lim]
	}
	if c.Strings != nil {
		out.Strings = c.Strings[:lim]
	}
	return out
}

// Rows reports the column's current row count.
func (c *Column) Rows() int { return c.rows }

// ItemCount reports the number of scalar cells per row (1 for scalar fields).
func (c *Column) ItemCount() int { return c.itemCount }

// Samples reports n_selected_samples for calldata/* columns, 1 otherwise.
func (c *Column) Samples() int { return c.samples }

// InnerCount reports the per-(row, sample) cell count (1 for scalar fields).
func (c *Column) InnerCount() int { return c.innerCount }

// index computes the flat offset for (row, sampleIdx, sub). sampleIdx is
// always 0 for variants/* and computed fields.
func (c *Column) index(row, sampleIdx, sub int) int {
	return row*c.itemCount + sampleIdx*c.innerCount + sub
}

func fillInt(s []int64, v int64) {
	for i := range s {
		s[i] = v
	}
}
func fillFloat(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}
func fillBool(s []bool, v bool) {
	for i := range s {
		s[i] = v
	}
}
func fillString(s []string, v string) {
	for i := range s {
		s[i] = v
	}
}

func fillToInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case nil:
		return -1
	default:
		return -1
	}
}

func fillToFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case nil:
		return nan()
	default:
		return nan()
	}
}

func fillToBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func fillToString(v interface{}) string {
	s, _ := v.(string)
	return s
}
