package design

import "fmt"

// ReferenceSource fetches verbatim reference bases, retaining case, for a
// Mapping. Upper-case bases are un-masked; lower-case bases are
// soft-masked. Implementations are read-only collaborators.
type ReferenceSource interface {
	Fetch(m Mapping) (string, error)
	ChromosomeLength(chrom string) (int, error)
}

// VariantSource is the shared contract of the cached and file-backed
// variant lookups.
type VariantSource interface {
	Query(chrom string, start, end int, minMaf float64, includeMissingMafs bool) ([]Variant, error)
	Close() error
}

// Region is a design region expanded from a target, with its soft- and
// hard-masked sequences.
type Region struct {
	Mapping    Mapping
	SoftMasked string
	HardMasked string
}

// BuildRegion expands target symmetrically by maxAmpliconLength minus the
// target's length, clamped to [1, chromosomeLength], fetches the reference
// bases verbatim, and hard-masks every variant overlapping the region that
// passes the minMaf / includeMissingMafs filter.
func BuildRegion(target Mapping, maxAmpliconLength int, ref ReferenceSource, variants VariantSource, minMaf float64, includeMissingMafs bool) (Region, error) {
	chromLen, err := ref.ChromosomeLength(target.RefName)
	if err != nil {
		return Region{}, fmt.Errorf("design region: %w", err)
	}

	expand := maxAmpliconLength - target.Length()
	if expand < 0 {
		expand = 0
	}
	start := target.Start - expand
	if start < 1 {
		start = 1
	}
	end := target.End + expand
	if end > chromLen {
		end = chromLen
	}

	region, err := NewMapping(target.RefName, start, end, Plus)
	if err != nil {
		return Region{}, fmt.Errorf("design region: %w", err)
	}

	soft, err := ref.Fetch(region)
	if err != nil {
		return Region{}, fmt.Errorf("design region: fetch reference: %w", err)
	}
	if len(soft) != region.Length() {
		return Region{}, &InvalidMappingError{Reason: fmt.Sprintf("fetched sequence length %d does not match region length %d", len(soft), region.Length())}
	}

	vs, err := variants.Query(region.RefName, region.Start, region.End, minMaf, includeMissingMafs)
	if err != nil {
		return Region{}, fmt.Errorf("design region: query variants: %w", err)
	}

	hard := []byte(soft)
	for _, v := range vs {
		for _, pos := range v.MaskPositions() {
			if pos < region.Start || pos > region.End {
				continue
			}
			hard[pos-region.Start] = 'N'
		}
	}

	return Region{Mapping: region, SoftMasked: soft, HardMasked: string(hard)}, nil
}
