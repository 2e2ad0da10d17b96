package design

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Pipeline wires the picker, off-target detector, and dimer checker into
// one end-to-end control flow: picking produces candidates, off-target
// screening classifies them against the genome, and dimer screening checks
// the survivors for heterodimer risk.
type Pipeline struct {
	Picker      *PrimerPicker
	OffTarget   *OffTargetDetector
	Dimer       *DimerChecker
	MinDuplexTm float64
}

// NewPipeline assembles a Pipeline around already-opened component
// wrappers. Dimer may be nil to skip heterodimer screening entirely.
func NewPipeline(picker *PrimerPicker, offTarget *OffTargetDetector, dimer *DimerChecker, minDuplexTm float64) *Pipeline {
	return &Pipeline{
		Picker:      picker,
		OffTarget:   offTarget,
		Dimer:       dimer,
		MinDuplexTm: minDuplexTm,
	}
}

// Design runs primer picking over region/target, drops pairs that fail the
// off-target check, then drops pairs whose left/right primers form a
// heterodimer at or above MinDuplexTm. Pairs are returned in picker order.
func (p *Pipeline) Design(region Region, target Mapping, params Parameters, weights Weights) ([]PrimerPair, []FailureCount, error) {
	pairs, failures, err := p.Picker.DesignPair(region, target, params, weights)
	if err != nil {
		return nil, failures, err
	}
	if len(pairs) == 0 {
		return nil, failures, nil
	}

	offResults, err := p.OffTarget.Check(pairs)
	if err != nil {
		return nil, failures, err
	}

	kept := make([]PrimerPair, 0, len(pairs))
	for i, res := range offResults {
		if !res.Passes {
			logRejection(pairs[i], "off-target")
			continue
		}
		if p.Dimer != nil {
			tm, err := p.Dimer.TmOf(pairs[i].Left.Bases, pairs[i].Right.Bases)
			if err != nil {
				return nil, failures, err
			}
			if tm >= p.MinDuplexTm {
				logRejection(pairs[i], fmt.Sprintf("heterodimer risk (Tm=%.4f)", tm))
				continue
			}
		}
		kept = append(kept, pairs[i])
	}

	return kept, failures, nil
}

// logRejection clones pair before annotating it with a rejection reason, so
// the tagged copy used for the debug log can never alias the caller's pair
// (in particular its shared Parameters pointer).
func logRejection(pair PrimerPair, reason string) {
	rejected := pair.Clone()
	rejected.Name = strings.TrimSpace(rejected.Name + " " + reason)
	log.Debugw("dropping pair", "pair", rejected.Name, "left", rejected.Left.Bases, "right", rejected.Right.Bases)
}

// Close releases the off-target detector's aligner wrapper and the
// primer picker's subprocess, combining any close errors.
func (p *Pipeline) Close() error {
	var err error
	err = multierr.Append(err, p.Picker.Close())
	err = multierr.Append(err, p.OffTarget.Close())
	return err
}
