// Package report serializes primer pair designs to BED12 and TSV, the two
// formats downstream tooling consumes from the final report serializer.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// BEDScore maps a primer pair's penalty to BED's [0, 1000] score column:
// lower penalty is a better pair, so it is inverted and clamped.
func BEDScore(penalty float64) int {
	score := 1000 - int(penalty*100)
	if score < 0 {
		return 0
	}
	if score > 1000 {
		return 1000
	}
	return score
}

// WriteBED12 writes one BED12 record per pair to w: the amplicon as the
// feature span, with the left and right primers as its two blocks. Every
// record has exactly 12 tab-separated fields, regardless of optional data
// availability.
func WriteBED12(w io.Writer, pairs []design.PrimerPair) error {
	bw := bufio.NewWriter(w)
	for i, pair := range pairs {
		if err := writeBED12Record(bw, i, pair); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeBED12Record(w *bufio.Writer, index int, pair design.PrimerPair) error {
	amplicon := pair.Amplicon
	chromStart := amplicon.Start - 1 // BED is 0-based, half-open
	chromEnd := amplicon.End

	strand := "+"
	if amplicon.Strand == design.Minus {
		strand = "-"
	}

	name := pair.Name
	if name == "" {
		name = fmt.Sprintf("pair_%d", index)
	}

	leftStart := pair.Left.Mapping.Start - 1 - chromStart
	leftSize := pair.Left.Mapping.Length()
	rightStart := pair.Right.Mapping.Start - 1 - chromStart
	rightSize := pair.Right.Mapping.Length()

	fields := []string{
		amplicon.RefName,
		strconv.Itoa(chromStart),
		strconv.Itoa(chromEnd),
		name,
		strconv.Itoa(BEDScore(pair.Penalty)),
		strand,
		strconv.Itoa(chromStart),
		strconv.Itoa(chromEnd),
		"0",
		"2",
		fmt.Sprintf("%d,%d,", leftSize, rightSize),
		fmt.Sprintf("%d,%d,", leftStart, rightStart),
	}
	_, err := fmt.Fprintln(w, strings.Join(fields, "\t"))
	return err
}
