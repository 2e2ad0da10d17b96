package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

func testPair(t *testing.T) design.PrimerPair {
	t.Helper()
	leftMapping, err := design.NewMapping("chr1", 100, 119, design.Plus)
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}
	rightMapping, err := design.NewMapping("chr1", 200, 219, design.Minus)
	if err != nil {
		t.Fatalf("NewMapping: %v", err)
	}
	left, err := design.NewPrimer("ACGTACGTACGTACGTACGT", 60, 1, leftMapping, "", "", "", nil)
	if err != nil {
		t.Fatalf("NewPrimer (left): %v", err)
	}
	right, err := design.NewPrimer("TACGTACGTACGTACGTACG", 60, 1, rightMapping, "", "", "", nil)
	if err != nil {
		t.Fatalf("NewPrimer (right): %v", err)
	}
	amplicon, err := design.NewMapping("chr1", 100, 219, design.Plus)
	if err != nil {
		t.Fatalf("NewMapping (amplicon): %v", err)
	}
	pair, err := design.NewPrimerPair(left, right, amplicon, "", 80, 2.5, "pair1", "", nil)
	if err != nil {
		t.Fatalf("NewPrimerPair: %v", err)
	}
	return pair
}

func TestWriteBED12_AlwaysTwelveFields(t *testing.T) {
	pair := testPair(t)
	var buf bytes.Buffer
	if err := WriteBED12(&buf, []design.PrimerPair{pair}); err != nil {
		t.Fatalf("WriteBED12: %v", err)
	}
	line := strings.TrimRight(buf.String(), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 12 {
		t.Fatalf("got %d fields, want 12: %q", len(fields), line)
	}
	if fields[0] != "chr1" || fields[1] != "99" || fields[2] != "219" {
		t.Errorf("coordinates = %v, want chr1 99 219", fields[:3])
	}
	if fields[3] != "pair1" {
		t.Errorf("name = %q, want pair1", fields[3])
	}
	if fields[5] != "+" {
		t.Errorf("strand = %q, want +", fields[5])
	}
	if fields[9] != "2" {
		t.Errorf("blockCount = %q, want 2", fields[9])
	}
}

func TestWriteBED12_DefaultNameWhenUnset(t *testing.T) {
	leftMapping, _ := design.NewMapping("chr1", 1, 20, design.Plus)
	rightMapping, _ := design.NewMapping("chr1", 100, 119, design.Minus)
	left, _ := design.NewPrimer("ACGTACGTACGTACGTACGT", 60, 1, leftMapping, "", "", "", nil)
	right, _ := design.NewPrimer("TACGTACGTACGTACGTACG", 60, 1, rightMapping, "", "", "", nil)
	amplicon, _ := design.NewMapping("chr1", 1, 119, design.Plus)
	pair, err := design.NewPrimerPair(left, right, amplicon, "", 80, 1, "", "", nil)
	if err != nil {
		t.Fatalf("NewPrimerPair: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteBED12(&buf, []design.PrimerPair{pair}); err != nil {
		t.Fatalf("WriteBED12: %v", err)
	}
	fields := strings.Split(strings.TrimRight(buf.String(), "\n"), "\t")
	if fields[3] != "pair_0" {
		t.Errorf("name = %q, want pair_0", fields[3])
	}
}

func TestBEDScore_ClampsToRange(t *testing.T) {
	if got := BEDScore(20); got != 0 {
		t.Errorf("BEDScore(20) = %d, want 0 (clamped)", got)
	}
	if got := BEDScore(-5); got != 1000 {
		t.Errorf("BEDScore(-5) = %d, want 1000 (clamped)", got)
	}
	if got := BEDScore(0); got != 1000 {
		t.Errorf("BEDScore(0) = %d, want 1000", got)
	}
}
