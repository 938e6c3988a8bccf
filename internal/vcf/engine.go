package vcf

import (
	"bytes"
	"io"
)

// Engine streams one VCF source, one chunk at a time: Open resolves the
// header and field plan eagerly; Next materialises records lazily.
type Engine struct {
	src     *byteSource
	header  *Header
	plan    *Plan
	scanner *scanner
	opts    *Options
	sink    *warningSink
	done    bool
}

// Open opens path (use "-" for stdin), transparently detecting gzip
// framing, parses its header, and resolves opts into a field plan.
func Open(path string, opts Options) (*Engine, error) {
	opts.applyDefaults()
	sink := newWarningSink(opts.Logger)

	src, err := openFileSource(path, opts.BufferSize)
	if err != nil {
		return nil, err
	}

	header, err := parseHeader(src, sink)
	if err != nil {
		src.close()
		return nil, err
	}

	plan, err := ResolvePlan(header, &opts, sink)
	if err != nil {
		src.close()
		return nil, err
	}

	return &Engine{
		src:     src,
		header:  header,
		plan:    plan,
		scanner: newScanner(src, plan, &opts, sink),
		opts:    &opts,
		sink:    sink,
	}, nil
}

// OpenBytes resolves a plan and scanner over an in-memory VCF byte slice,
// used by round-trip tests that would rather not touch the filesystem.
func OpenBytes(data []byte, opts Options) (*Engine, error) {
	opts.applyDefaults()
	sink := newWarningSink(opts.Logger)

	src := newByteSource(bytes.NewReader(data), nil, opts.BufferSize)

	header, err := parseHeader(src, sink)
	if err != nil {
		return nil, err
	}

	plan, err := ResolvePlan(header, &opts, sink)
	if err != nil {
		return nil, err
	}

	return &Engine{
		src:     src,
		header:  header,
		plan:    plan,
		scanner: newScanner(src, plan, &opts, sink),
		opts:    &opts,
		sink:    sink,
	}, nil
}

// Header returns the parsed ##/#CHROM preamble.
func (e *Engine) Header() *Header { return e.header }

// Plan returns the resolved field plan driving this engine's chunks.
func (e *Engine) Plan() *Plan { return e.plan }

// Warnings returns every non-fatal anomaly observed so far: header parsing,
// plan resolution, and record scanning all feed the same list, in the
// order encountered.
func (e *Engine) Warnings() []Warning { return e.sink.warnings }

// Next materialises and returns the next chunk of up to Options.ChunkLength
// rows, or (nil, io.EOF) once the source is exhausted.
func (e *Engine) Next() (*Chunk, error) {
	if e.done {
		return nil, io.EOF
	}

	cols := newChunkColumns(e.plan, e.opts.ChunkLength)
	n, err := e.scanner.scanInto(cols, 0, e.opts.ChunkLength)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err == io.EOF {
		e.done = true
	}
	if n == 0 {
		return nil, io.EOF
	}

	chunk := sliceChunk(e.plan, cols, n)
	if len(e.opts.Transformers) > 0 {
		transformed, err := applyTransformers(e.opts.Transformers, e.plan, chunk.Columns)
		if err != nil {
			return nil, err
		}
		chunk.Columns = transformed
	}
	return chunk, nil
}

// Close releases the underlying byte source.
func (e *Engine) Close() error { return e.src.close() }
