package design

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Primer is an immutable value object produced by the picker driver.
type Primer struct {
	Bases      string // empty when missing; always 5' -> 3' in the primer's own orientation
	Tm         float64
	Penalty    float64
	Mapping    Mapping
	Name       string
	NamePrefix string
	Tail       string // optional 5' tail appended ahead of Bases
	Parameters *Parameters
}

// NewPrimer validates and constructs a Primer.
func NewPrimer(bases string, tm, penalty float64, mapping Mapping, name, namePrefix, tail string, params *Parameters) (Primer, error) {
	p := Primer{
		Bases:      bases,
		Tm:         tm,
		Penalty:    penalty,
		Mapping:    mapping,
		Name:       name,
		NamePrefix: namePrefix,
		Tail:       tail,
		Parameters: params,
	}
	if err := p.validate(); err != nil {
		return Primer{}, err
	}
	return p, nil
}

// Clone returns an independent copy of p. Parameters is a shared pointer
// on the original, so it is deep-copied rather than aliased; a caller that
// mutates the clone's Parameters must not affect p's.
func (p Primer) Clone() Primer {
	var out Primer
	copier.Copy(&out, &p)
	if p.Parameters != nil {
		params := *p.Parameters
		out.Parameters = &params
	}
	return out
}

func (p Primer) validate() error {
	if p.Bases != "" && len(p.Bases) != p.Mapping.Length() {
		return &InvalidPrimerError{Reason: fmt.Sprintf("bases length %d does not match mapping length %d", len(p.Bases), p.Mapping.Length())}
	}
	if p.Name != "" && p.NamePrefix != "" {
		return &InvalidPrimerError{Reason: "name and namePrefix are mutually exclusive"}
	}
	return nil
}

// PrimerPair is an immutable value object produced by a pair-design task.
type PrimerPair struct {
	Left             Primer
	Right            Primer
	Amplicon         Mapping
	AmpliconSequence string
	Tm               float64
	Penalty          float64
	Name             string
	NamePrefix       string
	Parameters       *Parameters
}

// NewPrimerPair validates and constructs a PrimerPair.
func NewPrimerPair(left, right Primer, amplicon Mapping, ampliconSequence string, tm, penalty float64, name, namePrefix string, params *Parameters) (PrimerPair, error) {
	pp := PrimerPair{
		Left:             left,
		Right:            right,
		Amplicon:         amplicon,
		AmpliconSequence: ampliconSequence,
		Tm:               tm,
		Penalty:          penalty,
		Name:             name,
		NamePrefix:       namePrefix,
		Parameters:       params,
	}
	if err := pp.validate(); err != nil {
		return PrimerPair{}, err
	}
	return pp, nil
}

// Clone returns an independent copy of pp: Left and Right are cloned via
// Primer.Clone to avoid aliasing their Parameters pointers, and pp's own
// Parameters pointer is deep-copied the same way.
func (pp PrimerPair) Clone() PrimerPair {
	var out PrimerPair
	copier.Copy(&out, &pp)
	out.Left = pp.Left.Clone()
	out.Right = pp.Right.Clone()
	if pp.Parameters != nil {
		params := *pp.Parameters
		out.Parameters = &params
	}
	return out
}

func (pp PrimerPair) validate() error {
	if pp.Left.Mapping.RefName != pp.Right.Mapping.RefName || pp.Left.Mapping.RefName != pp.Amplicon.RefName {
		return &InvalidPrimerPairError{Reason: "left, right, and amplicon must share a reference"}
	}
	if pp.Amplicon.Start != pp.Left.Mapping.Start {
		return &InvalidPrimerPairError{Reason: "amplicon start must equal left primer start"}
	}
	if pp.Amplicon.End != pp.Right.Mapping.End {
		return &InvalidPrimerPairError{Reason: "amplicon end must equal right primer end"}
	}
	if pp.Amplicon.Length() != pp.Right.Mapping.End-pp.Left.Mapping.Start+1 {
		return &InvalidPrimerPairError{Reason: "amplicon length mismatch"}
	}
	if pp.AmpliconSequence != "" && len(pp.AmpliconSequence) != pp.Amplicon.Length() {
		return &InvalidPrimerPairError{Reason: "amplicon sequence length does not match amplicon length"}
	}
	if pp.Left.Mapping.Strand != Plus {
		return &InvalidPrimerPairError{Reason: "left primer must be on the + strand"}
	}
	if pp.Right.Mapping.Strand != Minus {
		return &InvalidPrimerPairError{Reason: "right primer must be on the - strand"}
	}
	if pp.Name != "" && pp.NamePrefix != "" {
		return &InvalidPrimerPairError{Reason: "name and namePrefix are mutually exclusive"}
	}
	return nil
}

// Inner returns the region between the two primers; if they overlap, it
// collapses to the midpoint (a zero-width mapping).
func (pp PrimerPair) Inner() (Mapping, error) {
	start := pp.Left.Mapping.End + 1
	end := pp.Right.Mapping.Start - 1
	if start > end {
		mid := (pp.Left.Mapping.End + pp.Right.Mapping.Start) / 2
		return NewMapping(pp.Amplicon.RefName, mid, mid-1, Plus)
	}
	return NewMapping(pp.Amplicon.RefName, start, end, Plus)
}
