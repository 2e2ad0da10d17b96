package design

import "sort"

// OffTargetResult is the per-pair off-target verdict
type OffTargetResult struct {
	Pair      PrimerPair
	Passes    bool
	Amplicons []Mapping
	LeftHits  []AlignerHit
	RightHits []AlignerHit
}

// OffTargetConfig bounds the off-target search
type OffTargetConfig struct {
	MaxPrimerHits     int
	MaxPrimerPairHits int
	MaxAmpliconSize   int
	RetainAmplicons   bool
	RetainPrimerHits  bool
}

// OffTargetDetector owns one aligner wrapper and caches per-primer and
// per-pair results for its lifetime. Not safe for concurrent invocation
// against itself; callers must serialize.
type OffTargetDetector struct {
	aligner    *AlignerWrapper
	cfg        OffTargetConfig
	primerHits map[string]AlignerResult
	pairCache  map[pairKey]OffTargetResult
}

// NewOffTargetDetector constructs a detector around an already-opened
// aligner wrapper, which the detector exclusively owns.
func NewOffTargetDetector(aligner *AlignerWrapper, cfg OffTargetConfig) *OffTargetDetector {
	return &OffTargetDetector{
		aligner:    aligner,
		cfg:        cfg,
		primerHits: make(map[string]AlignerResult),
		pairCache:  make(map[pairKey]OffTargetResult),
	}
}

// Close releases the detector's aligner wrapper.
func (d *OffTargetDetector) Close() error {
	return d.aligner.Close()
}

type pairKey struct {
	leftBases, rightBases string
	leftStart, rightStart int
	leftRef               string
}

func keyOf(pair PrimerPair) pairKey {
	return pairKey{
		leftBases:  pair.Left.Bases,
		rightBases: pair.Right.Bases,
		leftStart:  pair.Left.Mapping.Start,
		rightStart: pair.Right.Mapping.Start,
		leftRef:    pair.Left.Mapping.RefName,
	}
}

// Check classifies each pair against the genome: it batches the unique
// primer sequences into one aligner call, pairs opposite-strand hits on the
// same chromosome into candidate amplicons, and applies the configured
// hit-count and amplicon-size ceilings.
func (d *OffTargetDetector) Check(pairs []PrimerPair) ([]OffTargetResult, error) {
	results := make([]OffTargetResult, len(pairs))
	var missIdx []int
	for i, pair := range pairs {
		if cached, ok := d.pairCache[keyOf(pair)]; ok {
			results[i] = cached
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return results, nil
	}

	seqSet := make(map[string]bool)
	for _, i := range missIdx {
		pair := pairs[i]
		if _, ok := d.primerHits[pair.Left.Bases]; !ok {
			seqSet[pair.Left.Bases] = true
		}
		if _, ok := d.primerHits[pair.Right.Bases]; !ok {
			seqSet[pair.Right.Bases] = true
		}
	}

	if len(seqSet) > 0 {
		seqs := make([]string, 0, len(seqSet))
		for seq := range seqSet {
			seqs = append(seqs, seq)
		}
		sort.Strings(seqs)
		// Each sequence is its own aligner query ID; primers are unique by
		// bases within a single Check call.
		aligned, err := d.aligner.Map(seqs, seqs)
		if err != nil {
			return nil, err
		}
		for i, seq := range seqs {
			d.primerHits[seq] = aligned[i]
		}
	}

	for _, i := range missIdx {
		pair := pairs[i]
		result := d.check(pair)
		d.pairCache[keyOf(pair)] = result
		results[i] = result
	}
	return results, nil
}

func (d *OffTargetDetector) check(pair PrimerPair) OffTargetResult {
	leftResult := d.primerHits[pair.Left.Bases]
	rightResult := d.primerHits[pair.Right.Bases]

	result := OffTargetResult{Pair: pair}
	if leftResult.HitCount > d.cfg.MaxPrimerHits || rightResult.HitCount > d.cfg.MaxPrimerHits {
		return result
	}

	var amplicons []Mapping
	for _, h1 := range leftResult.Hits {
		for _, h2 := range rightResult.Hits {
			if h1.Chrom != h2.Chrom || h1.Negative == h2.Negative {
				continue
			}
			plus, minus := h1, h2
			if plus.Negative {
				plus, minus = minus, plus
			}
			if minus.Start <= plus.End() {
				continue
			}
			size := plus.End() - plus.Start + 1
			if size > d.cfg.MaxAmpliconSize {
				continue
			}
			m, err := NewMapping(h1.Chrom, plus.Start, minus.End(), Plus)
			if err != nil {
				continue
			}
			amplicons = append(amplicons, m)
		}
	}

	result.Passes = len(amplicons) <= d.cfg.MaxPrimerPairHits
	if d.cfg.RetainAmplicons {
		result.Amplicons = amplicons
	}
	if d.cfg.RetainPrimerHits {
		result.LeftHits = leftResult.Hits
		result.RightHits = rightResult.Hits
	}
	return result
}
