package vcfarray

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalVCF = `##fileformat=VCFv4.2
##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
1	100	.	A	T	.	PASS	DP=5
1	200	.	C	G	.	PASS	DP=9
`

func TestOpenAndReadAll(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "sample.vcf", minimalVCF)

	chunks, header, err := ReadAll(path, Options{Fields: []string{"variants/CHROM", "variants/POS", "variants/DP"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, header.Samples)
	assert.Equal(t, 2, chunks[0].Rows())

	dp := chunks[0].Column("variants/DP")
	require.NotNil(t, dp)
	assert.Equal(t, []int64{5, 9}, dp.Ints)
}

func TestOpenWithOptionsFunctional(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "sample.vcf", minimalVCF)

	eng, err := OpenWithOptions(path, WithFields("variants/CHROM", "variants/POS"), WithChunkLength(1))
	require.NoError(t, err)
	defer eng.Close()

	first, err := eng.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Rows())

	second, err := eng.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, second.Rows())

	_, err = eng.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParseRegionForms(t *testing.T) {
	r, err := ParseRegion("20:1000-2000")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "20", Start: 1000, End: 2001}, r)

	r, err = ParseRegion("20:500")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "20", Start: 500, End: 501}, r)

	r, err = ParseRegion("20")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "20"}, r)

	_, err = ParseRegion("20:abc-200")
	assert.Error(t, err)
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
