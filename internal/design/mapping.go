package design

import "fmt"

// Strand is the genomic strand a Mapping or Primer is stated on.
type Strand byte

const (
	// Plus is the forward/sense strand.
	Plus Strand = '+'
	// Minus is the reverse/antisense strand.
	Minus Strand = '-'
)

func (s Strand) String() string {
	return string(rune(s))
}

// SequenceDict orders references for comparisons that span more than one
// chromosome/contig. It is the Go analogue of a BAM/SAM sequence dictionary.
type SequenceDict interface {
	// Index returns the position of refName in the reference ordering.
	Index(refName string) (int, bool)
}

// Mapping is a 1-based, closed-on-both-ends genomic interval with strand.
//
// A zero-width interval is represented as End == Start-1; Length reports 0
// in that case.
type Mapping struct {
	RefName string
	Start   int
	End     int
	Strand  Strand
}

// NewMapping validates and constructs a Mapping.
func NewMapping(refName string, start, end int, strand Strand) (Mapping, error) {
	m := Mapping{RefName: refName, Start: start, End: end, Strand: strand}
	if err := m.validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

func (m Mapping) validate() error {
	if m.Start < 1 {
		return &InvalidMappingError{Reason: fmt.Sprintf("start %d is less than 1", m.Start)}
	}
	if m.End < m.Start-1 {
		return &InvalidMappingError{Reason: fmt.Sprintf("end %d is before start-1 (%d)", m.End, m.Start-1)}
	}
	if m.Strand != Plus && m.Strand != Minus {
		return &InvalidMappingError{Reason: fmt.Sprintf("unrecognized strand %q", m.Strand)}
	}
	return nil
}

// Length is end - start + 1, and is 0 for a zero-width interval.
func (m Mapping) Length() int {
	return m.End - m.Start + 1
}

// FivePrimePosition returns Start on the + strand and End on the - strand.
func (m Mapping) FivePrimePosition() int {
	if m.Strand == Minus {
		return m.End
	}
	return m.Start
}

// Resolve returns the sub-mapping whose absolute coordinates are
// this.Start+start-1 .. that+length-1, relative to m's own start.
func (m Mapping) Resolve(start, length int, strand Strand) (Mapping, error) {
	if start < 1 {
		return Mapping{}, &InvalidMappingError{Reason: fmt.Sprintf("resolve start %d is less than 1", start)}
	}
	if start > m.Length() {
		return Mapping{}, &InvalidMappingError{Reason: fmt.Sprintf("resolve start %d exceeds mapping length %d", start, m.Length())}
	}
	if length < 0 {
		return Mapping{}, &InvalidMappingError{Reason: fmt.Sprintf("resolve length %d is negative", length)}
	}
	absStart := m.Start + start - 1
	absEnd := absStart + length - 1
	if absEnd > m.End {
		return Mapping{}, &InvalidMappingError{Reason: fmt.Sprintf("resolved end %d exceeds mapping end %d", absEnd, m.End)}
	}
	return Mapping{RefName: m.RefName, Start: absStart, End: absEnd, Strand: strand}, nil
}

// Project returns pos's 1-based offset within m; pos must lie in [Start,End].
func (m Mapping) Project(pos int) (int, error) {
	if pos < m.Start || pos > m.End {
		return 0, &OutOfRangeError{Pos: pos, Start: m.Start, End: m.End}
	}
	return pos - m.Start + 1, nil
}

func (m Mapping) sameRef(other Mapping) bool {
	return m.RefName == other.RefName
}

// Overlaps reports whether m and other (same reference) share any position.
func (m Mapping) Overlaps(other Mapping) bool {
	if !m.sameRef(other) {
		return false
	}
	return m.Start <= other.End && other.Start <= m.End
}

// Contains reports whether other lies entirely within m.
func (m Mapping) Contains(other Mapping) bool {
	if !m.sameRef(other) {
		return false
	}
	return m.Start <= other.Start && other.End <= m.End
}

// Abuts reports whether m and other are adjacent (in either order) on the
// same reference without overlapping.
func (m Mapping) Abuts(other Mapping) bool {
	if !m.sameRef(other) {
		return false
	}
	return m.End+1 == other.Start || other.End+1 == m.Start
}

// Union returns the mapping spanning the min-start to max-end of m and
// other, which must share a reference and either overlap or abut.
func (m Mapping) Union(other Mapping) (Mapping, error) {
	if !m.sameRef(other) {
		return Mapping{}, &InvalidMappingError{Reason: "union requires a shared reference"}
	}
	if !m.Overlaps(other) && !m.Abuts(other) {
		return Mapping{}, &InvalidMappingError{Reason: "union requires overlapping or abutting mappings"}
	}
	start := m.Start
	if other.Start < start {
		start = other.Start
	}
	end := m.End
	if other.End > end {
		end = other.End
	}
	return Mapping{RefName: m.RefName, Start: start, End: end, Strand: m.Strand}, nil
}

// Shift translates m by delta; the result must still start at >= 1.
func (m Mapping) Shift(delta int) (Mapping, error) {
	if m.Start+delta < 1 {
		return Mapping{}, &InvalidMappingError{Reason: fmt.Sprintf("shift by %d would move start below 1", delta)}
	}
	return Mapping{RefName: m.RefName, Start: m.Start + delta, End: m.End + delta, Strand: m.Strand}, nil
}

// Compare orders m against other by (refIndex-in-dict, start, end, strand)
// with Plus < Minus. dict may be nil only when both mappings share a
// reference.
func (m Mapping) Compare(other Mapping, dict SequenceDict) (int, error) {
	if m.RefName != other.RefName {
		if dict == nil {
			return 0, fmt.Errorf("cannot compare mappings on different references without a sequence dictionary")
		}
		mi, ok := dict.Index(m.RefName)
		if !ok {
			return 0, fmt.Errorf("reference %q not found in sequence dictionary", m.RefName)
		}
		oi, ok := dict.Index(other.RefName)
		if !ok {
			return 0, fmt.Errorf("reference %q not found in sequence dictionary", other.RefName)
		}
		if mi != oi {
			return cmpInt(mi, oi), nil
		}
	}
	if m.Start != other.Start {
		return cmpInt(m.Start, other.Start), nil
	}
	if m.End != other.End {
		return cmpInt(m.End, other.End), nil
	}
	return cmpStrand(m.Strand, other.Strand), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpStrand(a, b Strand) int {
	if a == b {
		return 0
	}
	if a == Plus {
		return -1
	}
	return 1
}

func (m Mapping) String() string {
	return fmt.Sprintf("%s:%d-%d(%s)", m.RefName, m.Start, m.End, m.Strand)
}
