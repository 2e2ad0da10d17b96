package design

import "testing"

func mustMapping(t *testing.T, refName string, start, end int, strand Strand) Mapping {
	t.Helper()
	m, err := NewMapping(refName, start, end, strand)
	if err != nil {
		t.Fatalf("NewMapping(%s, %d, %d, %c): %v", refName, start, end, strand, err)
	}
	return m
}

func TestMapping_ZeroWidth(t *testing.T) {
	m, err := NewMapping("chr1", 10, 9, Plus)
	if err != nil {
		t.Fatalf("zero-width mapping should be valid: %v", err)
	}
	if m.Length() != 0 {
		t.Errorf("Length() = %d, want 0", m.Length())
	}
}

func TestMapping_InvalidStart(t *testing.T) {
	if _, err := NewMapping("chr1", 0, 10, Plus); err == nil {
		t.Fatal("expected error for start < 1")
	}
}

func TestMapping_ResolveIdentity(t *testing.T) {
	m := mustMapping(t, "chr1", 100, 200, Plus)
	r, err := m.Resolve(1, m.Length(), Plus)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r != m {
		t.Errorf("Resolve(1, len) = %v, want identity %v", r, m)
	}
}

func TestMapping_ResolveOutOfRange(t *testing.T) {
	m := mustMapping(t, "chr1", 100, 200, Plus)
	if _, err := m.Resolve(0, 10, Plus); err == nil {
		t.Fatal("expected error for start < 1")
	}
	if _, err := m.Resolve(102, 1, Plus); err == nil {
		t.Fatal("expected error for start beyond length")
	}
	if _, err := m.Resolve(1, 1000, Plus); err == nil {
		t.Fatal("expected error for end beyond mapping end")
	}
}

func TestMapping_Project(t *testing.T) {
	m := mustMapping(t, "chr1", 100, 200, Plus)
	if p, err := m.Project(m.Start); err != nil || p != 1 {
		t.Errorf("Project(start) = %d, %v, want 1, nil", p, err)
	}
	if p, err := m.Project(m.End); err != nil || p != m.Length() {
		t.Errorf("Project(end) = %d, %v, want %d, nil", p, err, m.Length())
	}
	if _, err := m.Project(99); err == nil {
		t.Fatal("expected OutOfRangeError")
	}
}

func TestMapping_OverlapsContainsAbuts(t *testing.T) {
	a := mustMapping(t, "chr1", 100, 200, Plus)
	b := mustMapping(t, "chr1", 150, 160, Plus)
	c := mustMapping(t, "chr1", 201, 210, Plus)
	d := mustMapping(t, "chr2", 100, 200, Plus)

	if !a.Overlaps(b) || !a.Contains(b) {
		t.Error("a should overlap and contain b")
	}
	if !a.Abuts(c) {
		t.Error("a should abut c")
	}
	if a.Overlaps(d) || a.Contains(d) || a.Abuts(d) {
		t.Error("mappings on different references should never relate")
	}
}

func TestMapping_UnionCommutative(t *testing.T) {
	a := mustMapping(t, "chr1", 100, 200, Plus)
	b := mustMapping(t, "chr1", 150, 260, Plus)

	ab, err := a.Union(b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	ba, err := b.Union(a)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if ab.Start != ba.Start || ab.End != ba.End {
		t.Errorf("Union not commutative: %v vs %v", ab, ba)
	}
	if ab.Start != 100 || ab.End != 260 {
		t.Errorf("Union = %v, want [100,260]", ab)
	}
}

func TestMapping_UnionRequiresOverlapOrAbut(t *testing.T) {
	a := mustMapping(t, "chr1", 100, 200, Plus)
	b := mustMapping(t, "chr1", 300, 400, Plus)
	if _, err := a.Union(b); err == nil {
		t.Fatal("expected error for disjoint, non-abutting mappings")
	}
}

func TestMapping_Shift(t *testing.T) {
	m := mustMapping(t, "chr1", 100, 200, Plus)
	shifted, err := m.Shift(-50)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if shifted.Start != 50 || shifted.End != 150 {
		t.Errorf("Shift(-50) = %v", shifted)
	}
	if _, err := m.Shift(-200); err == nil {
		t.Fatal("expected error shifting below 1")
	}
}

func TestMapping_FivePrimePosition(t *testing.T) {
	plus := mustMapping(t, "chr1", 100, 200, Plus)
	minus := mustMapping(t, "chr1", 100, 200, Minus)
	if plus.FivePrimePosition() != 100 {
		t.Errorf("+ 5' position = %d, want 100", plus.FivePrimePosition())
	}
	if minus.FivePrimePosition() != 200 {
		t.Errorf("- 5' position = %d, want 200", minus.FivePrimePosition())
	}
}

type fakeDict map[string]int

func (d fakeDict) Index(refName string) (int, bool) {
	i, ok := d[refName]
	return i, ok
}

func TestMapping_CompareAcrossReferences(t *testing.T) {
	dict := fakeDict{"chr1": 0, "chr2": 1}
	a := mustMapping(t, "chr1", 100, 200, Plus)
	b := mustMapping(t, "chr2", 1, 10, Plus)

	c, err := a.Compare(b, dict)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if c >= 0 {
		t.Errorf("Compare(chr1, chr2) = %d, want < 0", c)
	}

	if _, err := a.Compare(b, nil); err == nil {
		t.Fatal("expected error comparing cross-reference mappings without a dict")
	}
}

func TestMapping_CompareStrandOrdering(t *testing.T) {
	a := mustMapping(t, "chr1", 100, 200, Plus)
	b := mustMapping(t, "chr1", 100, 200, Minus)
	c, err := a.Compare(b, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if c >= 0 {
		t.Errorf("Compare(+, -) = %d, want < 0", c)
	}
}
