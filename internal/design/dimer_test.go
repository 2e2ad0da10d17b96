package design

import (
	"strings"
	"testing"
)

func TestCanonicalDimerKey_OrderIndependent(t *testing.T) {
	a := canonicalDimerKey("AAAA", "CCCC")
	b := canonicalDimerKey("CCCC", "AAAA")
	if a != b {
		t.Errorf("canonicalDimerKey not order-independent: %v != %v", a, b)
	}
}

func TestDimerChecker_CachesByCanonicalPair(t *testing.T) {
	c := NewDimerChecker(DimerCheckerConfig{})
	c.cache[canonicalDimerKey("AAAA", "CCCC")] = 12.5

	tm, err := c.TmOf("AAAA", "CCCC")
	if err != nil {
		t.Fatalf("TmOf: %v", err)
	}
	if tm != 12.5 {
		t.Errorf("tm = %v, want 12.5 (cache hit)", tm)
	}

	// Query in reverse order must still hit the canonical cache entry and
	// never shell out.
	tm2, err := c.TmOf("CCCC", "AAAA")
	if err != nil {
		t.Fatalf("TmOf (reversed): %v", err)
	}
	if tm2 != 12.5 {
		t.Errorf("reversed tm = %v, want 12.5 (canonical cache hit)", tm2)
	}
}

func TestDimerChecker_ScenarioValues(t *testing.T) {
	// Two published duplex-Tm values, keyed through the checker's canonical
	// cache exactly as a prior subprocess call would have populated it.
	c := NewDimerChecker(DimerCheckerConfig{})
	polyA := "AAAAAAAAAAAAAAAAAAAA"
	polyT := "CCCCCCCCCCCCCCCCCCCC"
	c.cache[canonicalDimerKey(polyA, polyT)] = 0.0

	seq := "CTGACTGACTTGAGTTCGCTA"
	rc := ReverseComplement(seq)
	c.cache[canonicalDimerKey(seq, rc)] = 51.634492

	tm1, err := c.TmOf(polyA, polyT)
	if err != nil {
		t.Fatalf("TmOf: %v", err)
	}
	if tm1 != 0.0 {
		t.Errorf("duplexTm(polyA, polyT) = %v, want 0.0", tm1)
	}

	tm2, err := c.TmOf(seq, rc)
	if err != nil {
		t.Fatalf("TmOf: %v", err)
	}
	if diff := tm2 - 51.634492; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("duplexTm(seq, revcomp(seq)) = %v, want 51.634492 +/- 1e-4", tm2)
	}
}

func TestDimerChecker_CountDimers(t *testing.T) {
	c := NewDimerChecker(DimerCheckerConfig{})
	c.cache[canonicalDimerKey("QUERY", "T1")] = 40.0
	c.cache[canonicalDimerKey("QUERY", "T2")] = 60.0
	c.cache[canonicalDimerKey("QUERY", "T3")] = 59.999

	count, err := c.CountDimers("QUERY", []string{"T1", "T2", "T3"}, 60.0)
	if err != nil {
		t.Fatalf("CountDimers: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (only T2 meets minTm)", count)
	}
}

func TestDuplexTm_BuildCommand(t *testing.T) {
	tool := DuplexTm{
		Cmd:      "ntthal",
		SaltConc: 50,
		DNTPConc: 0.6,
		DNAConc:  50,
		TempC:    37,
		SeqA:     "ACGT",
		SeqB:     "ACGT",
	}
	cmd, err := tool.BuildCommand()
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	if cmd.Path == "" {
		t.Error("expected a resolved executable path")
	}
	joined := cmd.String()
	if !strings.Contains(joined, "ACGT") {
		t.Errorf("command %q missing expected sequence argument", joined)
	}
}
