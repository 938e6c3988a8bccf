package vcf

import (
	"go.uber.org/zap"
)

// Options configures field resolution, chunking and I/O for an Engine. The
// zero value is a usable default: fields defaults to samples, CHROM, POS,
// ID, REF, ALT, QUAL, FILTER_PASS and GT (mirroring read_vcf's default
// field set), chunk length defaults to
// 64k rows, and buffer size defaults to 64KiB.
type Options struct {
	Fields       []string
	Exclude      []string
	Rename       map[string]string
	Types        map[string]string
	Numbers      map[string]string
	Fills        map[string]interface{}
	AltNumber    int
	Samples      []string // identifiers or "#<index>" tokens
	Region       *Region
	ChunkLength  int
	BufferSize   int
	Transformers []Transformer
	Logger       *zap.Logger
}

// Region restricts output to records overlapping [Start, End) on Chrom (both
// 1-based, inclusive-start/exclusive-end as parsed from "chrom:start-end").
// Start == 0 && End == 0 means the whole chromosome.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// Option mutates Options; functional-option constructors below build up an
// Options value the way the teacher's cobra commands build up flag state.
type Option func(*Options)

func WithFields(fields ...string) Option {
	return func(o *Options) { o.Fields = fields }
}

func WithExclude(fields ...string) Option {
	return func(o *Options) { o.Exclude = fields }
}

func WithRename(rename map[string]string) Option {
	return func(o *Options) { o.Rename = rename }
}

func WithTypes(types map[string]string) Option {
	return func(o *Options) { o.Types = types }
}

func WithNumbers(numbers map[string]string) Option {
	return func(o *Options) { o.Numbers = numbers }
}

func WithFills(fills map[string]interface{}) Option {
	return func(o *Options) { o.Fills = fills }
}

func WithAltNumber(n int) Option {
	return func(o *Options) { o.AltNumber = n }
}

func WithSamples(samples ...string) Option {
	return func(o *Options) { o.Samples = samples }
}

func WithRegion(r Region) Option {
	return func(o *Options) { o.Region = &r }
}

func WithChunkLength(n int) Option {
	return func(o *Options) { o.ChunkLength = n }
}

func WithBufferSize(n int) Option {
	return func(o *Options) { o.BufferSize = n }
}

func WithTransformers(ts ...Transformer) Option {
	return func(o *Options) { o.Transformers = ts }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func (o *Options) applyDefaults() {
	if o.AltNumber <= 0 {
		o.AltNumber = 3
	}
	if o.ChunkLength <= 0 {
		o.ChunkLength = 65536
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufferSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if len(o.Fields) == 0 {
		o.Fields = []string{"samples", "CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER_PASS", "GT"}
	}
}
