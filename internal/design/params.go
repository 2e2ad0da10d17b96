package design

import "fmt"

// Triple is a min/optimal/maximum bound used throughout Parameters. The
// zero value (0,0,0) is valid and, where documented, disables the
// constraint it would otherwise express.
type Triple struct {
	Min int
	Opt int
	Max int
}

// NewTriple validates min <= opt <= max.
func NewTriple(min, opt, max int) (Triple, error) {
	t := Triple{Min: min, Opt: opt, Max: max}
	if t.Min > t.Opt || t.Opt > t.Max {
		return Triple{}, &InvalidPrimerError{Reason: fmt.Sprintf("triple %d/%d/%d violates min <= opt <= max", min, opt, max)}
	}
	return t, nil
}

// Parameters bundles the design bounds the picker and post-filters enforce.
type Parameters struct {
	AmpliconSize Triple
	// AmpliconTm's Opt of 0 disables the amplicon-Tm constraint entirely.
	AmpliconTm Triple
	PrimerSize Triple
	PrimerTm   Triple
	PrimerGC   Triple

	// GCClampMin/Max bound the number of Gs or Cs among a primer's 3'-most
	// 5 bases.
	GCClampMin int
	GCClampMax int

	// MaxHomopolymer bounds the longest run of one repeated base.
	MaxHomopolymer int
	// MaxAmbiguous bounds the count of non-ACGT bases.
	MaxAmbiguous int
	// MaxDinucBases bounds the count of bases belonging to a dinucleotide
	// repeat run.
	MaxDinucBases int

	// AvoidSoftMasked, when true, excludes primers touching soft-masked
	// reference bases.
	AvoidSoftMasked bool

	// NumReturn is how many candidates the picker should return per task.
	NumReturn int
}

// Validate enforces the min <= opt <= max invariant across every triple
// and non-negativity of the scalar limits. AmpliconTm.Opt == 0 is exempt:
// it is the sentinel that disables the amplicon-Tm constraint.
func (p Parameters) Validate() error {
	if p.AmpliconSize.Min > p.AmpliconSize.Opt || p.AmpliconSize.Opt > p.AmpliconSize.Max {
		return &InvalidPrimerError{Reason: "amplicon size triple violates min <= opt <= max"}
	}
	if p.AmpliconTm.Opt != 0 {
		if p.AmpliconTm.Min > p.AmpliconTm.Opt || p.AmpliconTm.Opt > p.AmpliconTm.Max {
			return &InvalidPrimerError{Reason: "amplicon Tm triple violates min <= opt <= max"}
		}
	}
	if p.PrimerSize.Min > p.PrimerSize.Opt || p.PrimerSize.Opt > p.PrimerSize.Max {
		return &InvalidPrimerError{Reason: "primer size triple violates min <= opt <= max"}
	}
	if p.PrimerTm.Min > p.PrimerTm.Opt || p.PrimerTm.Opt > p.PrimerTm.Max {
		return &InvalidPrimerError{Reason: "primer Tm triple violates min <= opt <= max"}
	}
	if p.PrimerGC.Min > p.PrimerGC.Opt || p.PrimerGC.Opt > p.PrimerGC.Max {
		return &InvalidPrimerError{Reason: "primer GC%% triple violates min <= opt <= max"}
	}
	if p.GCClampMin < 0 || p.GCClampMax < p.GCClampMin {
		return &InvalidPrimerError{Reason: "GC clamp bounds must satisfy 0 <= min <= max"}
	}
	if p.MaxHomopolymer < 0 || p.MaxAmbiguous < 0 || p.MaxDinucBases < 0 {
		return &InvalidPrimerError{Reason: "homopolymer/ambiguous/dinuc limits must be non-negative"}
	}
	if p.NumReturn < 0 {
		return &InvalidPrimerError{Reason: "candidate count must be non-negative"}
	}
	return nil
}

// Weights are the per-criterion penalty multipliers handed to the picker's
// scoring function. Names mirror the upstream tool's own weight tags.
type Weights struct {
	SizeLt, SizeGt           float64
	TmLt, TmGt               float64
	GCContentLt, GCContentGt float64
	SelfAnyTh, SelfEndTh     float64
	HairpinTh                float64
	EndStability             float64
	TemplateMispriming       float64
}

// Tags renders p as the ordered PRIMER3-style parameter tag set, using
// prefix ("PRIMER_" or "PRIMER_PRODUCT_") the way the picker's manual names
// each bound. Order is stable so serialized requests are deterministic.
func (p Parameters) Tags() []Tag {
	tags := []Tag{
		{Key: "PRIMER_PRODUCT_SIZE_RANGE", Value: fmt.Sprintf("%d-%d", p.AmpliconSize.Min, p.AmpliconSize.Max)},
		{Key: "PRIMER_PRODUCT_OPT_SIZE", Value: fmt.Sprintf("%d", p.AmpliconSize.Opt)},
		{Key: "PRIMER_MIN_SIZE", Value: fmt.Sprintf("%d", p.PrimerSize.Min)},
		{Key: "PRIMER_OPT_SIZE", Value: fmt.Sprintf("%d", p.PrimerSize.Opt)},
		{Key: "PRIMER_MAX_SIZE", Value: fmt.Sprintf("%d", p.PrimerSize.Max)},
		{Key: "PRIMER_MIN_TM", Value: fmt.Sprintf("%d", p.PrimerTm.Min)},
		{Key: "PRIMER_OPT_TM", Value: fmt.Sprintf("%d", p.PrimerTm.Opt)},
		{Key: "PRIMER_MAX_TM", Value: fmt.Sprintf("%d", p.PrimerTm.Max)},
		{Key: "PRIMER_MIN_GC", Value: fmt.Sprintf("%d", p.PrimerGC.Min)},
		{Key: "PRIMER_OPT_GC_PERCENT", Value: fmt.Sprintf("%d", p.PrimerGC.Opt)},
		{Key: "PRIMER_MAX_GC", Value: fmt.Sprintf("%d", p.PrimerGC.Max)},
		{Key: "PRIMER_GC_CLAMP", Value: fmt.Sprintf("%d", p.GCClampMin)},
		{Key: "PRIMER_MAX_END_GC", Value: fmt.Sprintf("%d", p.GCClampMax)},
		{Key: "PRIMER_MAX_POLY_X", Value: fmt.Sprintf("%d", p.MaxHomopolymer)},
		{Key: "PRIMER_MAX_NS_ACCEPTED", Value: fmt.Sprintf("%d", p.MaxAmbiguous)},
		{Key: "PRIMER_NUM_RETURN", Value: fmt.Sprintf("%d", p.NumReturn)},
	}
	if p.AmpliconTm.Opt != 0 {
		tags = append(tags,
			Tag{Key: "PRIMER_PRODUCT_MIN_TM", Value: fmt.Sprintf("%d", p.AmpliconTm.Min)},
			Tag{Key: "PRIMER_PRODUCT_OPT_TM", Value: fmt.Sprintf("%d", p.AmpliconTm.Opt)},
			Tag{Key: "PRIMER_PRODUCT_MAX_TM", Value: fmt.Sprintf("%d", p.AmpliconTm.Max)},
		)
	}
	if p.AvoidSoftMasked {
		tags = append(tags, Tag{Key: "PRIMER_LOWERCASE_MASKING", Value: "1"})
	}
	return tags
}

// Tags renders w as the ordered PRIMER3-style weight tag set.
func (w Weights) Tags() []Tag {
	return []Tag{
		{Key: "PRIMER_WT_SIZE_LT", Value: fmt.Sprintf("%v", w.SizeLt)},
		{Key: "PRIMER_WT_SIZE_GT", Value: fmt.Sprintf("%v", w.SizeGt)},
		{Key: "PRIMER_WT_TM_LT", Value: fmt.Sprintf("%v", w.TmLt)},
		{Key: "PRIMER_WT_TM_GT", Value: fmt.Sprintf("%v", w.TmGt)},
		{Key: "PRIMER_WT_GC_PERCENT_LT", Value: fmt.Sprintf("%v", w.GCContentLt)},
		{Key: "PRIMER_WT_GC_PERCENT_GT", Value: fmt.Sprintf("%v", w.GCContentGt)},
		{Key: "PRIMER_WT_SELF_ANY_TH", Value: fmt.Sprintf("%v", w.SelfAnyTh)},
		{Key: "PRIMER_WT_SELF_END_TH", Value: fmt.Sprintf("%v", w.SelfEndTh)},
		{Key: "PRIMER_WT_HAIRPIN_TH", Value: fmt.Sprintf("%v", w.HairpinTh)},
		{Key: "PRIMER_WT_END_STABILITY", Value: fmt.Sprintf("%v", w.EndStability)},
		{Key: "PRIMER_WT_TEMPLATE_MISPRIMING", Value: fmt.Sprintf("%v", w.TemplateMispriming)},
	}
}

// Tag is a single KEY=VALUE line in the picker's request/response protocol.
type Tag struct {
	Key   string
	Value string
}
