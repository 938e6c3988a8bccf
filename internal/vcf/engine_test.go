package vcf

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVCF = `##fileformat=VCFv4.2
##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele frequency">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=HQ,Number=2,Type=Integer,Description="Haplotype quality">
##FILTER=<ID=q10,Description="Quality below 10">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA001	NA002
20	14370	rs6054257	G	A	29	PASS	DP=14;AF=0.5	GT:HQ	0|0:10,15	1|1:.,.
20	17330	.	T	A	3	q10	DP=11;AF=0.017	GT:HQ	0|0:10,10	0|1:3,3
20	1110696	rs6040355	A	G,T	67	PASS	DP=10;AF=0.3,0.7	GT:HQ	1|2:.,.	2|1:.,.
`

func openSample(t *testing.T, opts Options) *Engine {
	t.Helper()
	eng, err := OpenBytes([]byte(sampleVCF), opts)
	require.NoError(t, err)
	return eng
}

func TestEngineHeaderParsing(t *testing.T) {
	eng := openSample(t, Options{})
	h := eng.Header()
	assert.Equal(t, []string{"NA001", "NA002"}, h.Samples)
	assert.Contains(t, h.Info, "DP")
	assert.Contains(t, h.Format, "HQ")
	assert.Contains(t, h.Filters, "q10")
}

func TestEngineDefaultFieldsChunk(t *testing.T) {
	eng := openSample(t, Options{ChunkLength: 64})
	chunk, err := eng.Next()
	require.NoError(t, err)
	require.Equal(t, 3, chunk.Rows())

	pos := chunk.Column("variants/POS")
	require.NotNil(t, pos)
	assert.Equal(t, []int64{14370, 17330, 1110696}, pos.Ints)

	_, err = eng.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEngineInfoAndComputedFields(t *testing.T) {
	eng := openSample(t, Options{
		Fields:      []string{"variants/CHROM", "variants/POS", "variants/DP", "variants/numalt", "variants/is_snp", "variants/FILTER_PASS"},
		ChunkLength: 64,
	})
	chunk, err := eng.Next()
	require.NoError(t, err)

	dp := chunk.Column("variants/DP")
	assert.Equal(t, []int64{14, 11, 10}, dp.Ints)

	numalt := chunk.Column("variants/numalt")
	assert.Equal(t, []int64{1, 1, 2}, numalt.Ints)

	isSNP := chunk.Column("variants/is_snp")
	assert.Equal(t, []bool{true, true, true}, isSNP.Bools)

	pass := chunk.Column("variants/FILTER_PASS")
	assert.Equal(t, []bool{true, false, true}, pass.Bools)
}

func TestEngineALTShapeAndFill(t *testing.T) {
	eng := openSample(t, Options{
		Fields:    []string{"variants/ALT"},
		AltNumber: 2,
	})
	chunk, err := eng.Next()
	require.NoError(t, err)

	alt := chunk.Column("variants/ALT")
	require.Equal(t, 2, alt.InnerCount())
	assert.Equal(t, []string{"A", "", "A", "", "G", "T"}, alt.Strings)
}

func TestEngineCalldataGenotypeAndSampleFilter(t *testing.T) {
	eng := openSample(t, Options{
		Fields:  []string{"calldata/GT", "calldata/HQ"},
		Samples: []string{"NA002"},
	})
	chunk, err := eng.Next()
	require.NoError(t, err)

	gt := chunk.Column("calldata/GT")
	assert.Equal(t, 1, gt.Samples())
	assert.Equal(t, []int64{1, 1, 0, 1, 2, 1}, gt.Ints)

	hq := chunk.Column("calldata/HQ")
	assert.Equal(t, []int64{-1, -1, 3, 3, -1, -1}, hq.Ints)
}

func TestEngineChunkedReadAcrossMultipleCalls(t *testing.T) {
	eng := openSample(t, Options{ChunkLength: 2})
	first, err := eng.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, first.Rows())

	second, err := eng.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, second.Rows())

	_, err = eng.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEngineTruncatedRecordIsTolerated(t *testing.T) {
	vcf := `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
20	100	.	A	T	.	PASS	.
20	200	.	A	T
`
	eng := openSample2(t, vcf, Options{
		Fields: []string{"variants/CHROM", "variants/POS", "variants/QUAL", "variants/FILTER_PASS"},
	})
	chunk, err := eng.Next()
	require.NoError(t, err)
	require.Equal(t, 2, chunk.Rows()) // the truncated second line still commits a row

	pos := chunk.Column("variants/POS")
	assert.Equal(t, []int64{100, 200}, pos.Ints)

	qual := chunk.Column("variants/QUAL")
	require.Len(t, qual.Floats, 2)
	assert.True(t, math.IsNaN(qual.Floats[1])) // QUAL absent on the truncated line, left at fill

	pass := chunk.Column("variants/FILTER_PASS")
	assert.Equal(t, []bool{true, false}, pass.Bools) // FILTER absent on the truncated line, not PASS
}

// TestEngineLiteralTruncatedHeaderScenario mirrors the minimal truncated
// header case where only CHROM and POS are ever present: no #CHROM
// attribute beyond POS, no FORMAT/sample columns at all.
func TestEngineLiteralTruncatedHeaderScenario(t *testing.T) {
	vcf := "#CHROM\tPOS\n2L\t12\n2R\t34"
	eng := openSample2(t, vcf, Options{Fields: []string{"variants/POS"}})
	chunk, err := eng.Next()
	require.NoError(t, err)
	require.Equal(t, 2, chunk.Rows())

	pos := chunk.Column("variants/POS")
	assert.Equal(t, []int64{12, 34}, pos.Ints)
}

func openSample2(t *testing.T, vcf string, opts Options) *Engine {
	t.Helper()
	eng, err := OpenBytes([]byte(vcf), opts)
	require.NoError(t, err)
	return eng
}

func TestEngineMissingFormatColumnKeepsFill(t *testing.T) {
	vcf := `##fileformat=VCFv4.2
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1
20	100	.	A	T	.	PASS	.	.	.
`
	eng := openSample2(t, vcf, Options{Fields: []string{"calldata/GT"}})
	chunk, err := eng.Next()
	require.NoError(t, err)
	gt := chunk.Column("calldata/GT")
	assert.Equal(t, []int64{-1, -1}, gt.Ints)
}

func TestEngineRegionFilterNoIndex(t *testing.T) {
	eng := openSample(t, Options{Region: &Region{Chrom: "20", Start: 17000, End: 100000}})
	chunk, err := eng.Next()
	require.NoError(t, err)
	pos := chunk.Column("variants/POS")
	assert.Equal(t, []int64{17330}, pos.Ints)
}

func TestEngineWarningsCollectsParseAnomalies(t *testing.T) {
	vcf := `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
20	oops	.	A	T	.	PASS	.
`
	eng := openSample2(t, vcf, Options{Fields: []string{"variants/POS"}})
	_, err := eng.Next()
	require.NoError(t, err)

	warnings := eng.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, ParseValue, warnings[0].Kind)
	assert.Equal(t, "variants/POS", warnings[0].Field)
}

func TestEngineWarningsIncludesUnknownRequestedField(t *testing.T) {
	eng := openSample(t, Options{Fields: []string{"variants/NOPE"}})

	require.Len(t, eng.Warnings(), 1)
	assert.Equal(t, UnknownField, eng.Warnings()[0].Kind)
}
