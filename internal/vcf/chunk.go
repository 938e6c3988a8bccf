package vcf

// Chunk is one batch of materialised records: dense per-field columns plus
// the sample identifiers selected for this read, the way a single call into
// read_vcf's chunked iterator hands back one slab of arrays at a time.
type Chunk struct {
	Plan    *Plan
	Columns map[string]*Column
	Samples []string
	rows    int
}

// Rows reports how many records this chunk holds.
func (c *Chunk) Rows() int { return c.rows }

// Column looks up a materialised column by its final (possibly renamed)
// field name.
func (c *Chunk) Column(name string) *Column { return c.Columns[name] }

// newChunkColumns allocates one Column per non-pseudo planned field, sized
// for chunkLength rows and len(plan.SelectedSamples) samples.
func newChunkColumns(plan *Plan, chunkLength int) map[string]*Column {
	cols := make(map[string]*Column, len(plan.Fields))
	nSamples := len(plan.SelectedSamples)
	for _, f := range plan.Fields {
		if f.Origin == OriginSamples {
			continue // samples is header-level metadata, not a per-row column
		}
		cols[f.Name] = newColumn(f, chunkLength, nSamples)
	}
	return cols
}

// sliceChunk truncates every column in cols to n rows and wraps them into
// the Chunk the caller sees.
func sliceChunk(plan *Plan, cols map[string]*Column, n int) *Chunk {
	sliced := make(map[string]*Column, len(cols))
	for name, c := range cols {
		sliced[name] = c.slice(n)
	}
	return &Chunk{Plan: plan, Columns: sliced, Samples: plan.SelectedSamples, rows: n}
}
