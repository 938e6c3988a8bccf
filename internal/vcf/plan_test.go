package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() *Header {
	h := newHeader()
	h.Samples = []string{"NA001", "NA002"}
	h.Info["DP"] = FieldMeta{ID: "DP", Number: "1", Type: "Integer"}
	h.Info["AF"] = FieldMeta{ID: "AF", Number: "A", Type: "Float"}
	h.Format["GT"] = FieldMeta{ID: "GT", Number: "1", Type: "String"}
	h.Format["HQ"] = FieldMeta{ID: "HQ", Number: "2", Type: "Integer"}
	h.Filters["q10"] = "Quality below 10"
	return h
}

func TestResolvePlanDefaultFields(t *testing.T) {
	h := testHeader()
	opts := Options{}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)

	var names []string
	for _, f := range plan.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "samples")
	assert.Contains(t, names, "variants/CHROM")
	assert.Contains(t, names, "calldata/GT")
}

func TestResolvePlanWildcardIncludesAllCategories(t *testing.T) {
	h := testHeader()
	opts := Options{Fields: []string{"*"}}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)

	byName := map[string]*PlannedField{}
	for _, f := range plan.Fields {
		byName[f.Name] = f
	}

	assert.Contains(t, byName, "samples")
	assert.Contains(t, byName, "variants/DP")
	assert.Contains(t, byName, "variants/AF")
	assert.Contains(t, byName, "calldata/GT")
	assert.Contains(t, byName, "calldata/HQ")
	assert.Contains(t, byName, "variants/numalt")
	assert.Contains(t, byName, "variants/is_snp")
	assert.Contains(t, byName, "variants/FILTER_PASS")
	assert.Contains(t, byName, "variants/FILTER_q10")
}

func TestResolvePlanRenameAndExclude(t *testing.T) {
	h := testHeader()
	opts := Options{
		Fields:  []string{"variants/DP", "variants/AF"},
		Exclude: []string{"variants/AF"},
		Rename:  map[string]string{"variants/DP": "depth"},
	}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)
	require.Len(t, plan.Fields, 1)
	assert.Equal(t, "depth", plan.Fields[0].Name)
}

func TestResolvePlanExactDuplicateIsSilent(t *testing.T) {
	h := testHeader()
	opts := Options{Fields: []string{"variants/DP", "variants/DP"}}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)
	assert.Len(t, plan.Fields, 1)
}

func TestResolvePlanCaseInsensitiveCollisionIsPermittedInMemory(t *testing.T) {
	h := testHeader()
	opts := Options{
		Fields: []string{"variants/DP", "variants/AF"},
		Rename: map[string]string{"variants/DP": "dp", "variants/AF": "DP"},
	}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)
	assert.Len(t, plan.Fields, 2)
	assert.Contains(t, plan.CaseInsensitiveCollisions, "dp")
}

func TestResolvePlanAlleleNumberShapes(t *testing.T) {
	h := testHeader()
	opts := Options{Fields: []string{"variants/AF", "variants/ALT"}, AltNumber: 2}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)

	for _, f := range plan.Fields {
		if f.Name == "variants/AF" || f.Name == "variants/ALT" {
			require.Equal(t, []int{2}, f.ItemShape)
		}
	}
}

func TestResolvePlanNumberGDefaultsToDiploidWithWarning(t *testing.T) {
	h := testHeader()
	h.Format["PL"] = FieldMeta{ID: "PL", Number: "G", Type: "Integer"}
	opts := Options{Fields: []string{"calldata/PL"}, AltNumber: 1}
	opts.applyDefaults()

	plan, err := ResolvePlan(h, &opts, newWarningSink(nil))
	require.NoError(t, err)
	require.Len(t, plan.Fields, 1)
	assert.Equal(t, []int{3}, plan.Fields[0].ItemShape) // alleles=2, 2*3/2=3
}

func TestResolveSampleSelectionByIndexAndName(t *testing.T) {
	mask, selected, err := resolveSampleSelection([]string{"A", "B", "C"}, []string{"#2", "A"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
	assert.Equal(t, []string{"C", "A"}, selected)
}

func TestResolveSampleSelectionUnknownSample(t *testing.T) {
	_, _, err := resolveSampleSelection([]string{"A"}, []string{"Z"})
	require.Error(t, err)
}
