package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

var tsvHeaders = []string{
	"Rank",
	"Penalty",
	"Chrom",
	"Amplicon Start",
	"Amplicon End",
	"Amplicon Size",
	"Left Primer",
	"Left Tm",
	"Right Primer",
	"Right Tm",
}

// WriteTSV writes one row per pair in the order given, ranked from 1, using a
// csv.Writer with '\t' as the delimiter.
func WriteTSV(w io.Writer, pairs []design.PrimerPair) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'

	if err := tw.Write(tsvHeaders); err != nil {
		return fmt.Errorf("writing tsv header: %w", err)
	}
	for i, pair := range pairs {
		if err := writeTSVRow(tw, i+1, pair); err != nil {
			return err
		}
	}
	tw.Flush()
	return tw.Error()
}

func writeTSVRow(tw *csv.Writer, rank int, pair design.PrimerPair) error {
	row := []string{
		strconv.Itoa(rank),
		strconv.FormatFloat(pair.Penalty, 'f', 4, 64),
		pair.Amplicon.RefName,
		strconv.Itoa(pair.Amplicon.Start),
		strconv.Itoa(pair.Amplicon.End),
		strconv.Itoa(pair.Amplicon.Length()),
		pair.Left.Bases,
		strconv.FormatFloat(pair.Left.Tm, 'f', 2, 64),
		pair.Right.Bases,
		strconv.FormatFloat(pair.Right.Tm, 'f', 2, 64),
	}
	if err := tw.Write(row); err != nil {
		return fmt.Errorf("writing tsv row %d: %w", rank, err)
	}
	return nil
}
