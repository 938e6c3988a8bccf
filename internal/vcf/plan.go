package vcf

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// PlannedField is one column the engine will materialise: its logical name,
// where its bytes come from, its resolved storage representation, and the
// fill it gets when a record doesn't supply a value.
type PlannedField struct {
	Name      string
	Origin    Origin
	SourceKey string // header INFO/FORMAT id, fixed-column token, or FILTER tag
	Type      typeSpec
	ItemShape []int // trailing dims beyond (n_records[, n_samples]); nil = scalar
	Fill      interface{}
	Ploidy    int // DTypeGenotypeInt / DTypeGenotypeFixed only
}

// Plan is the resolved, static schema the scanner fills one chunk at a time.
type Plan struct {
	Fields []*PlannedField

	fixedByToken map[string]*PlannedField // CHROM, POS, ID, REF, ALT, QUAL
	filterByTag  map[string]*PlannedField // FILTER_<tag>
	infoByID     map[string]*PlannedField
	formatByID   map[string]*PlannedField
	samplesField *PlannedField
	numaltField  *PlannedField
	altlenField  *PlannedField
	isSNPField   *PlannedField

	AllSamples      []string
	SelectedSamples []string
	SampleMask      []bool // len == len(AllSamples); nil means no filter was requested

	AltNumber int

	// CaseInsensitiveCollisions lists lower-cased names shared by 2+ fields.
	// The in-memory plan itself is valid; only a sink requiring
	// case-insensitive key uniqueness must reject these (DuplicateField).
	CaseInsensitiveCollisions []string
}

var fixedVariantTokens = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL"}
var computedTokens = []string{"numalt", "altlen", "is_snp"}

// ResolvePlan implements the field-plan resolution policy: wildcard
// expansion, canonicalisation, exclusion, renaming, deduplication, and
// dtype/shape/fill derivation with caller overrides winning over header
// declarations.
func ResolvePlan(header *Header, opts *Options, sink *warningSink) (*Plan, error) {
	sampleMask, selected, err := resolveSampleSelection(header.Samples, opts.Samples)
	if err != nil {
		return nil, err
	}

	requested := expandWildcards(opts.Fields, header)

	canon := make([]string, 0, len(requested))
	seenExact := map[string]bool{}
	for _, name := range requested {
		c, origin, _ := canonicalize(name, header)
		if origin < 0 {
			sink.warn(UnknownField, 0, name, "unknown field requested", zap.String("field", name))
			continue
		}
		if seenExact[c] {
			continue // exact-match dedup is silent
		}
		seenExact[c] = true
		canon = append(canon, c)
	}

	excluded := map[string]bool{}
	for _, e := range opts.Exclude {
		c, _, _ := canonicalize(e, header)
		excluded[c] = true
		excluded[e] = true
	}

	kept := canon[:0]
	for _, c := range canon {
		if !excluded[c] {
			kept = append(kept, c)
		}
	}
	canon = kept

	renamed := make([]string, len(canon))
	for i, c := range canon {
		if to, ok := opts.Rename[c]; ok {
			renamed[i] = to
		} else {
			renamed[i] = c
		}
	}

	plan := &Plan{
		fixedByToken:    map[string]*PlannedField{},
		filterByTag:     map[string]*PlannedField{},
		infoByID:        map[string]*PlannedField{},
		formatByID:      map[string]*PlannedField{},
		AllSamples:      header.Samples,
		SelectedSamples: selected,
		SampleMask:      sampleMask,
		AltNumber:       opts.AltNumber,
	}

	caseInsensitive := map[string][]string{}
	finalNames := map[string]bool{}

	for i, finalName := range renamed {
		origName := canon[i]
		if finalNames[finalName] {
			continue
		}
		finalNames[finalName] = true

		field, err := derivePlannedField(finalName, origName, header, opts, sink)
		if err != nil {
			return nil, err
		}
		if field == nil {
			continue
		}

		plan.Fields = append(plan.Fields, field)
		registerField(plan, field)

		lower := strings.ToLower(finalName)
		caseInsensitive[lower] = append(caseInsensitive[lower], finalName)
	}

	for lower, names := range caseInsensitive {
		if len(names) > 1 {
			plan.CaseInsensitiveCollisions = append(plan.CaseInsensitiveCollisions, lower)
		}
	}
	sort.Strings(plan.CaseInsensitiveCollisions)

	return plan, nil
}

func registerField(plan *Plan, f *PlannedField) {
	switch f.Origin {
	case OriginFixed:
		plan.fixedByToken[f.SourceKey] = f
	case OriginInfo:
		plan.infoByID[f.SourceKey] = f
	case OriginFormat:
		plan.formatByID[f.SourceKey] = f
	case OriginSamples:
		plan.samplesField = f
	case OriginComputed:
		switch f.SourceKey {
		case "numalt":
			plan.numaltField = f
		case "altlen":
			plan.altlenField = f
		case "is_snp":
			plan.isSNPField = f
		default:
			if strings.HasPrefix(f.SourceKey, "FILTER_") {
				plan.filterByTag[strings.TrimPrefix(f.SourceKey, "FILTER_")] = f
			}
		}
	}
}

// resolveSampleSelection resolves a caller sample filter (by identifier or
// "#<index>") into a bit mask over header.Samples, once.
func resolveSampleSelection(all []string, requested []string) ([]bool, []string, error) {
	if len(requested) == 0 {
		return nil, append([]string(nil), all...), nil
	}
	byName := map[string]int{}
	for i, s := range all {
		byName[s] = i
	}
	mask := make([]bool, len(all))
	selected := make([]string, 0, len(requested))
	for _, r := range requested {
		idx := -1
		if strings.HasPrefix(r, "#") {
			n, err := strconv.Atoi(r[1:])
			if err != nil || n < 0 || n >= len(all) {
				return nil, nil, newInvalidPlan("sample index out of range: " + r)
			}
			idx = n
		} else if i, ok := byName[r]; ok {
			idx = i
		} else {
			return nil, nil, newInvalidPlan("unknown sample: " + r)
		}
		mask[idx] = true
		selected = append(selected, all[idx])
	}
	return mask, selected, nil
}

// expandWildcards turns selector tokens ("*", "variants/*", "calldata/*",
// "INFO", "FILTER", or bare/canonical names) into a flat list of bare or
// canonical field names ready for canonicalize.
func expandWildcards(selectors []string, header *Header) []string {
	var out []string
	for _, sel := range selectors {
		switch sel {
		case "*":
			out = append(out, "samples")
			out = append(out, fixedVariantTokens...)
			out = append(out, filterTagNames(header)...)
			out = append(out, computedTokens...)
			out = append(out, infoNames(header)...)
			out = append(out, formatNames(header)...)
		case "variants/*":
			out = append(out, fixedVariantTokens...)
			out = append(out, filterTagNames(header)...)
			out = append(out, computedTokens...)
			out = append(out, infoNames(header)...)
		case "calldata/*":
			out = append(out, formatNames(header)...)
		case "INFO":
			out = append(out, infoNames(header)...)
		case "FILTER":
			out = append(out, filterTagNames(header)...)
		default:
			out = append(out, sel)
		}
	}
	return out
}

func filterTagNames(header *Header) []string {
	tags := make([]string, 0, len(header.Filters))
	for tag := range header.Filters {
		tags = append(tags, "FILTER_"+tag)
	}
	sort.Strings(tags)
	return tags
}

func infoNames(header *Header) []string {
	names := make([]string, 0, len(header.Info))
	for id := range header.Info {
		names = append(names, "variants/"+id)
	}
	sort.Strings(names)
	return names
}

func formatNames(header *Header) []string {
	names := make([]string, 0, len(header.Format))
	for id := range header.Format {
		names = append(names, "calldata/"+id)
	}
	sort.Strings(names)
	return names
}

// canonicalize resolves one requested name to its final canonical form plus
// the origin/source-key needed to look it up later. origin is -1 if the
// name cannot be resolved against fixed/computed columns or the header.
func canonicalize(name string, header *Header) (canonical string, origin Origin, sourceKey string) {
	switch {
	case name == "samples":
		return "samples", OriginSamples, ""
	case strings.HasPrefix(name, "variants/"):
		base := strings.TrimPrefix(name, "variants/")
		return canonicalizeVariantsBase(base, header)
	case strings.HasPrefix(name, "calldata/"):
		base := strings.TrimPrefix(name, "calldata/")
		if _, ok := header.Format[base]; ok || base == "GT" {
			return "calldata/" + base, OriginFormat, base
		}
		return "calldata/" + base, -1, ""
	case isFixedVariantToken(name):
		return "variants/" + name, OriginFixed, name
	case strings.HasPrefix(name, "FILTER_"):
		return "variants/" + name, OriginComputed, name
	case isComputedToken(name):
		return "variants/" + name, OriginComputed, name
	default:
		return canonicalizeVariantsBase(name, header)
	}
}

func canonicalizeVariantsBase(base string, header *Header) (string, Origin, string) {
	if isFixedVariantToken(base) {
		return "variants/" + base, OriginFixed, base
	}
	if isComputedToken(base) {
		return "variants/" + base, OriginComputed, base
	}
	if strings.HasPrefix(base, "FILTER_") {
		return "variants/" + base, OriginComputed, base
	}
	if _, ok := header.Info[base]; ok {
		return "variants/" + base, OriginInfo, base
	}
	// Bare name not declared in header and not fixed/computed: might still
	// be a calldata field requested without its prefix (e.g. "GT", "HQ").
	if _, ok := header.Format[base]; ok {
		return "calldata/" + base, OriginFormat, base
	}
	if base == "GT" {
		return "calldata/GT", OriginFormat, base
	}
	return "variants/" + base, -1, base
}

func isFixedVariantToken(s string) bool {
	for _, t := range fixedVariantTokens {
		if t == s {
			return true
		}
	}
	return false
}

func isComputedToken(s string) bool {
	for _, t := range computedTokens {
		if t == s {
			return true
		}
	}
	return false
}

// derivePlannedField resolves (dtype, shape, fill) for one canonicalised
// field, applying caller type/number/fill overrides over header defaults.
func derivePlannedField(finalName, canonName string, header *Header, opts *Options, sink *warningSink) (*PlannedField, error) {
	switch {
	case canonName == "samples":
		return &PlannedField{Name: finalName, Origin: OriginSamples, Type: typeSpec{Kind: DTypeStringVar}}, nil

	case canonName == "variants/CHROM", canonName == "variants/ID", canonName == "variants/REF":
		token := strings.TrimPrefix(canonName, "variants/")
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeStringVar})
		return &PlannedField{Name: finalName, Origin: OriginFixed, SourceKey: token, Type: ts, Fill: resolveFill(finalName, opts, defaultFill(ts))}, nil

	case canonName == "variants/POS":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeInt, IntWidth: 4})
		return &PlannedField{Name: finalName, Origin: OriginFixed, SourceKey: "POS", Type: ts, Fill: resolveFill(finalName, opts, defaultFill(ts))}, nil

	case canonName == "variants/QUAL":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeFloat, FloatWidth: 4})
		return &PlannedField{Name: finalName, Origin: OriginFixed, SourceKey: "QUAL", Type: ts, Fill: resolveFill(finalName, opts, defaultFill(ts))}, nil

	case canonName == "variants/ALT":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeStringVar})
		shape := []int{resolveAltShapeLen(finalName, opts, opts.AltNumber)}
		return &PlannedField{Name: finalName, Origin: OriginFixed, SourceKey: "ALT", Type: ts, ItemShape: shape, Fill: resolveFill(finalName, opts, "")}, nil

	case canonName == "variants/numalt":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeInt, IntWidth: 4})
		return &PlannedField{Name: finalName, Origin: OriginComputed, SourceKey: "numalt", Type: ts, Fill: int64(0)}, nil

	case canonName == "variants/altlen":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeInt, IntWidth: 4})
		shape := []int{resolveAltShapeLen(finalName, opts, opts.AltNumber)}
		return &PlannedField{Name: finalName, Origin: OriginComputed, SourceKey: "altlen", Type: ts, ItemShape: shape, Fill: int64(-1)}, nil

	case canonName == "variants/is_snp":
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeBool})
		return &PlannedField{Name: finalName, Origin: OriginComputed, SourceKey: "is_snp", Type: ts, Fill: false}, nil

	case strings.HasPrefix(canonName, "variants/FILTER_"):
		tag := strings.TrimPrefix(canonName, "variants/FILTER_")
		ts := resolveOverrideOrDefault(finalName, opts, typeSpec{Kind: DTypeBool})
		return &PlannedField{Name: finalName, Origin: OriginComputed, SourceKey: "FILTER_" + tag, Type: ts, Fill: false}, nil

	case strings.HasPrefix(canonName, "variants/"):
		id := strings.TrimPrefix(canonName, "variants/")
		meta, ok := header.Info[id]
		if !ok {
			sink.warn(UnknownField, 0, id, "INFO field not declared in header", zap.String("field", id))
			meta = FieldMeta{ID: id, Number: "1", Type: "String"}
		}
		return deriveHeaderField(finalName, id, OriginInfo, meta, opts, sink)

	case strings.HasPrefix(canonName, "calldata/"):
		id := strings.TrimPrefix(canonName, "calldata/")
		meta, ok := header.Format[id]
		if !ok {
			if id == "GT" {
				meta = FieldMeta{ID: "GT", Number: "1", Type: "String"}
			} else {
				sink.warn(UnknownField, 0, id, "FORMAT field not declared in header", zap.String("field", id))
				meta = FieldMeta{ID: id, Number: "1", Type: "String"}
			}
		}
		return deriveHeaderField(finalName, id, OriginFormat, meta, opts, sink)
	}

	return nil, nil
}

func resolveAltShapeLen(finalName string, opts *Options, altNumber int) int {
	if n, ok := opts.Numbers[finalName]; ok {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			return v
		}
	}
	return altNumber
}

func resolveOverrideOrDefault(finalName string, opts *Options, def typeSpec) typeSpec {
	if tok, ok := opts.Types[finalName]; ok {
		if ts, ok := parseTypeToken(tok); ok {
			return ts
		}
	}
	return def
}

func resolveFill(finalName string, opts *Options, def interface{}) interface{} {
	if f, ok := opts.Fills[finalName]; ok {
		return f
	}
	return def
}

// deriveHeaderField derives dtype/shape/fill for a header-declared INFO or
// FORMAT field, applying caller overrides and the Number-to-shape mapping.
func deriveHeaderField(finalName, id string, origin Origin, meta FieldMeta, opts *Options, sink *warningSink) (*PlannedField, error) {
	isGT := origin == OriginFormat && id == "GT"

	def := headerTypeSpec(meta.Type)
	if isGT {
		def = typeSpec{Kind: DTypeGenotypeInt, IntWidth: 1}
	}
	ts := def
	if tok, ok := opts.Types[finalName]; ok {
		parsed, ok := parseTypeToken(tok)
		if !ok {
			return nil, newInvalidPlan("unknown type token: " + tok)
		}
		ts = parsed
	}

	shape, ploidy, err := deriveShape(finalName, meta.Number, ts, origin, isGT, opts, sink)
	if err != nil {
		return nil, err
	}

	fill := defaultFill(ts)
	if f, ok := opts.Fills[finalName]; ok {
		fill = f
	}

	return &PlannedField{
		Name:      finalName,
		Origin:    origin,
		SourceKey: id,
		Type:      ts,
		ItemShape: shape,
		Fill:      fill,
		Ploidy:    ploidy,
	}, nil
}

// deriveShape implements the Number-to-shape policy (spec.md §4.3 step 6).
func deriveShape(finalName, number string, ts typeSpec, origin Origin, isGT bool, opts *Options, sink *warningSink) ([]int, int, error) {
	if ts.Kind == DTypeGenotypeInt || ts.Kind == DTypeGenotypeFixed {
		ploidy := 2
		if n, ok := opts.Numbers[finalName]; ok {
			if v, err := strconv.Atoi(n); err == nil && v > 0 {
				ploidy = v
			}
		}
		return []int{ploidy}, ploidy, nil
	}
	if ts.Kind == DTypeAlleleCount {
		return []int{ts.MaxAlleles}, 0, nil
	}

	if n, ok := opts.Numbers[finalName]; ok {
		if v, err := strconv.Atoi(n); err == nil {
			if v <= 1 {
				return nil, 0, nil
			}
			return []int{v}, 0, nil
		}
	}

	switch number {
	case "", "0", "1":
		return nil, 0, nil
	case "A":
		return []int{opts.AltNumber}, 0, nil
	case "R":
		return []int{opts.AltNumber + 1}, 0, nil
	case "G":
		alleles := opts.AltNumber + 1
		diploid := alleles * (alleles + 1) / 2
		sink.log("Number=G cardinality defaulted to ploidy-derived count; "+
			"supply an explicit numbers[] override to silence this",
			zap.String("field", finalName))
		return []int{diploid}, 2, nil
	case ".":
		sink.log("Number=. requires an explicit numbers[] override; treating as scalar",
			zap.String("field", finalName))
		return nil, 0, nil
	default:
		if v, err := strconv.Atoi(number); err == nil {
			if v <= 1 {
				return nil, 0, nil
			}
			return []int{v}, 0, nil
		}
		return nil, 0, nil
	}
}
