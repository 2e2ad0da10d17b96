// Package refsource provides ReferenceSource implementations that answer
// design.BuildRegion's Fetch and ChromosomeLength queries.
package refsource

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// FastaReference is an in-memory reference genome loaded from a FASTA file,
// implementing design.ReferenceSource.
type FastaReference struct {
	sequences map[string][]byte
	order     []string
}

// LoadFasta reads every record from r into memory, keyed by sequence ID.
func LoadFasta(r io.Reader) (*FastaReference, error) {
	ref := &FastaReference{sequences: make(map[string][]byte)}

	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		seq, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("refsource: unexpected sequence type from fasta reader")
		}
		if _, exists := ref.sequences[seq.ID]; exists {
			return nil, fmt.Errorf("refsource: duplicate sequence id %q", seq.ID)
		}
		bases := make([]byte, len(seq.Seq))
		for i, letter := range seq.Seq {
			bases[i] = byte(letter)
		}
		ref.sequences[seq.ID] = bases
		ref.order = append(ref.order, seq.ID)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("refsource: reading fasta: %w", err)
	}
	return ref, nil
}

// LoadFastaFile opens path and loads it via LoadFasta.
func LoadFastaFile(path string) (*FastaReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refsource: opening %s: %w", path, err)
	}
	defer f.Close()
	return LoadFasta(f)
}

// Chromosomes returns the sequence IDs in the order they appeared in the
// source FASTA.
func (r *FastaReference) Chromosomes() []string { return r.order }

// ChromosomeLength implements design.ReferenceSource.
func (r *FastaReference) ChromosomeLength(chrom string) (int, error) {
	bases, ok := r.sequences[chrom]
	if !ok {
		return 0, fmt.Errorf("refsource: unknown chromosome %q", chrom)
	}
	return len(bases), nil
}

// Fetch implements design.ReferenceSource, returning the 1-based closed
// interval m.Start..m.End, reverse-complemented when m.Strand is Minus.
func (r *FastaReference) Fetch(m design.Mapping) (string, error) {
	bases, ok := r.sequences[m.RefName]
	if !ok {
		return "", fmt.Errorf("refsource: unknown chromosome %q", m.RefName)
	}
	if m.Start < 1 || m.End > len(bases) || m.Start > m.End {
		return "", &design.OutOfRangeError{Pos: m.Start, Start: 1, End: len(bases)}
	}
	out := string(bases[m.Start-1 : m.End])
	if m.Strand == design.Minus {
		out = design.ReverseComplement(out)
	}
	return out, nil
}
