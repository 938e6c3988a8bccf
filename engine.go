// Package vcfarray streams a VCF/VCF.gz file and materialises
// caller-selected fields as dense, typed, chunked arrays: fixed columns
// (CHROM, POS, ...), INFO/FORMAT fields declared in the header, computed
// fields (numalt, altlen, is_snp, FILTER_*), and per-sample genotype arrays,
// the way scikit-allel's read_vcf does for a NumPy/Zarr caller.
package vcfarray

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vcfarray/internal/vcf"
)

// Re-exported so callers never need to import the internal package.
type (
	Options            = vcf.Options
	Option             = vcf.Option
	Region             = vcf.Region
	Plan               = vcf.Plan
	PlannedField       = vcf.PlannedField
	Chunk              = vcf.Chunk
	Column             = vcf.Column
	Header             = vcf.Header
	ParseError         = vcf.ParseError
	Warning            = vcf.Warning
	Transformer        = vcf.Transformer
	AnnotationSplitter = vcf.AnnotationSplitter
)

var (
	WithFields       = vcf.WithFields
	WithExclude      = vcf.WithExclude
	WithRename       = vcf.WithRename
	WithTypes        = vcf.WithTypes
	WithNumbers      = vcf.WithNumbers
	WithFills        = vcf.WithFills
	WithAltNumber    = vcf.WithAltNumber
	WithSamples      = vcf.WithSamples
	WithRegion       = vcf.WithRegion
	WithChunkLength  = vcf.WithChunkLength
	WithBufferSize   = vcf.WithBufferSize
	WithTransformers = vcf.WithTransformers
	WithLogger       = vcf.WithLogger

	NewAnnotationSplitter = vcf.NewAnnotationSplitter
)

// Engine streams one VCF source, one chunk at a time.
type Engine struct {
	inner *vcf.Engine
}

// Open opens path (use "-" for stdin), transparently detecting gzip
// framing, parses its header, resolves the field plan, and returns an
// Engine ready for Next. Options is accepted by value so the common case
// reads `vcfarray.Open(path, vcfarray.Options{Fields: [...]})`
// or via functional options: `OpenWithOptions(path, vcfarray.WithFields(...))`.
func Open(path string, opts Options) (*Engine, error) {
	inner, err := vcf.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &Engine{inner: inner}, nil
}

// OpenWithOptions opens path and applies a sequence of functional options
// over the zero-value Options.
func OpenWithOptions(path string, options ...Option) (*Engine, error) {
	var opts Options
	for _, o := range options {
		o(&opts)
	}
	return Open(path, opts)
}

// Header returns the parsed ##/#CHROM preamble.
func (e *Engine) Header() *Header { return e.inner.Header() }

// Plan returns the resolved field plan driving this engine's chunks.
func (e *Engine) Plan() *Plan { return e.inner.Plan() }

// Warnings returns every non-fatal parse anomaly observed so far.
func (e *Engine) Warnings() []Warning { return e.inner.Warnings() }

// Next materialises and returns the next chunk of up to Options.ChunkLength
// rows, or (nil, io.EOF) once the source is exhausted.
func (e *Engine) Next() (*Chunk, error) { return e.inner.Next() }

// Close releases the underlying byte source.
func (e *Engine) Close() error { return e.inner.Close() }

// ReadAll drains every chunk Next produces into a single slice, a
// convenience for tests and small files; production callers should use
// Next directly to bound memory to one chunk at a time.
func ReadAll(path string, opts Options) ([]*Chunk, *Header, error) {
	eng, err := Open(path, opts)
	if err != nil {
		return nil, nil, err
	}
	defer eng.Close()

	var chunks []*Chunk
	for {
		c, err := eng.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, eng.Header(), nil
}

// FromViper builds an Options from a loaded viper instance, the way the
// teacher's cmd/vibe-vep/config.go reads dotted config keys: "fields",
// "exclude", "samples", "region", "chunk_length", "buffer_size",
// "alt_number".
func FromViper(v *viper.Viper) Options {
	var opts Options
	opts.Fields = v.GetStringSlice("fields")
	opts.Exclude = v.GetStringSlice("exclude")
	opts.Samples = v.GetStringSlice("samples")
	if n := v.GetInt("chunk_length"); n > 0 {
		opts.ChunkLength = n
	}
	if n := v.GetInt("buffer_size"); n > 0 {
		opts.BufferSize = n
	}
	if n := v.GetInt("alt_number"); n > 0 {
		opts.AltNumber = n
	}
	if rename := v.GetStringMapString("rename"); len(rename) > 0 {
		opts.Rename = rename
	}
	if types := v.GetStringMapString("types"); len(types) > 0 {
		opts.Types = types
	}
	if numbers := v.GetStringMapString("numbers"); len(numbers) > 0 {
		opts.Numbers = numbers
	}
	if region := v.GetString("region"); region != "" {
		if r, err := ParseRegion(region); err == nil {
			opts.Region = &r
		}
	}
	opts.Logger = zap.NewNop()
	return opts
}

// ParseRegion parses "chrom:start-end" (1-based, inclusive start, inclusive
// end as written but stored half-open) or a bare "chrom" (whole chromosome)
// into a Region.
func ParseRegion(s string) (Region, error) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return Region{Chrom: s}, nil
	}
	chrom := s[:colon]
	span := s[colon+1:]
	dash := strings.IndexByte(span, '-')
	if dash < 0 {
		start, err := strconv.ParseInt(span, 10, 64)
		if err != nil {
			return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		return Region{Chrom: chrom, Start: start, End: start + 1}, nil
	}
	start, err := strconv.ParseInt(span[:dash], 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	end, err := strconv.ParseInt(span[dash+1:], 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	return Region{Chrom: chrom, Start: start, End: end + 1}, nil
}
