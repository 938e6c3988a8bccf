package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csqVCF = `##fileformat=VCFv4.2
##INFO=<ID=CSQ,Number=1,Type=String,Description="Consequence annotations from VEP">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
20	100	.	A	T	.	PASS	CSQ=T|missense_variant|MODERATE
20	200	.	C	G	.	PASS	CSQ=G|synonymous_variant|LOW
`

func TestAnnotationSplitterAddsNewColumns(t *testing.T) {
	splitter := NewAnnotationSplitter("variants/CSQ", '|', "variants/CSQ_Allele", "variants/CSQ_Consequence", "variants/CSQ_Impact")

	eng := openSample2(t, csqVCF, Options{
		Fields:       []string{"variants/CSQ"},
		Transformers: []Transformer{splitter},
	})
	chunk, err := eng.Next()
	require.NoError(t, err)
	require.Equal(t, 2, chunk.Rows())

	// The source column survives untouched.
	csq := chunk.Column("variants/CSQ")
	require.NotNil(t, csq)
	assert.Equal(t, []string{"T|missense_variant|MODERATE", "G|synonymous_variant|LOW"}, csq.Strings)

	allele := chunk.Column("variants/CSQ_Allele")
	require.NotNil(t, allele)
	assert.Equal(t, []string{"T", "G"}, allele.Strings)

	consequence := chunk.Column("variants/CSQ_Consequence")
	require.NotNil(t, consequence)
	assert.Equal(t, []string{"missense_variant", "synonymous_variant"}, consequence.Strings)

	impact := chunk.Column("variants/CSQ_Impact")
	require.NotNil(t, impact)
	assert.Equal(t, []string{"MODERATE", "LOW"}, impact.Strings)
}

func TestAnnotationSplitterSkipsBlankOutputNames(t *testing.T) {
	splitter := NewAnnotationSplitter("variants/CSQ", '|', "", "variants/CSQ_Consequence")

	eng := openSample2(t, csqVCF, Options{
		Fields:       []string{"variants/CSQ"},
		Transformers: []Transformer{splitter},
	})
	chunk, err := eng.Next()
	require.NoError(t, err)

	assert.Nil(t, chunk.Column("variants/CSQ_Allele"))
	consequence := chunk.Column("variants/CSQ_Consequence")
	require.NotNil(t, consequence)
	assert.Equal(t, []string{"missense_variant", "synonymous_variant"}, consequence.Strings)
}

func TestAnnotationSplitterRejectsNameCollision(t *testing.T) {
	splitter := NewAnnotationSplitter("variants/CSQ", '|', "variants/CSQ")

	eng := openSample2(t, csqVCF, Options{
		Fields:       []string{"variants/CSQ"},
		Transformers: []Transformer{splitter},
	})
	_, err := eng.Next()
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, DuplicateField, perr.Kind)
}
