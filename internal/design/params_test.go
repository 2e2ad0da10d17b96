package design

import "testing"

func TestTriple_Invariant(t *testing.T) {
	if _, err := NewTriple(10, 5, 20); err == nil {
		t.Fatal("expected error for opt < min")
	}
	if _, err := NewTriple(10, 20, 15); err == nil {
		t.Fatal("expected error for max < opt")
	}
	if _, err := NewTriple(10, 15, 20); err != nil {
		t.Fatalf("valid triple rejected: %v", err)
	}
}

func validParams() Parameters {
	return Parameters{
		AmpliconSize:    Triple{Min: 70, Opt: 150, Max: 300},
		AmpliconTm:      Triple{},
		PrimerSize:      Triple{Min: 18, Opt: 20, Max: 27},
		PrimerTm:        Triple{Min: 57, Opt: 60, Max: 63},
		PrimerGC:        Triple{Min: 20, Opt: 50, Max: 80},
		GCClampMin:      0,
		GCClampMax:      5,
		MaxHomopolymer:  5,
		MaxAmbiguous:    0,
		MaxDinucBases:   6,
		AvoidSoftMasked: true,
		NumReturn:       5,
	}
}

func TestParameters_Validate(t *testing.T) {
	if err := validParams().Validate(); err != nil {
		t.Fatalf("valid Parameters rejected: %v", err)
	}

	bad := validParams()
	bad.PrimerTm = Triple{Min: 65, Opt: 60, Max: 63}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for primer Tm min > opt")
	}

	bad = validParams()
	bad.GCClampMax = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for negative GC clamp max")
	}
}

func TestParameters_AmpliconTmOptZeroDisablesConstraint(t *testing.T) {
	p := validParams()
	p.AmpliconTm = Triple{Min: 80, Opt: 0, Max: 10}
	if err := p.Validate(); err != nil {
		t.Fatalf("AmpliconTm.Opt == 0 should disable the constraint, got: %v", err)
	}
	for _, tag := range p.Tags() {
		if tag.Key == "PRIMER_PRODUCT_MIN_TM" {
			t.Fatal("amplicon Tm tags should be omitted when Opt == 0")
		}
	}
}

func TestParameters_Tags_IncludeLowercaseMasking(t *testing.T) {
	p := validParams()
	tags := p.Tags()
	found := false
	for _, tag := range tags {
		if tag.Key == "PRIMER_LOWERCASE_MASKING" {
			found = true
			if tag.Value != "1" {
				t.Errorf("PRIMER_LOWERCASE_MASKING = %q, want 1", tag.Value)
			}
		}
	}
	if !found {
		t.Error("expected PRIMER_LOWERCASE_MASKING tag when AvoidSoftMasked is true")
	}
}

func TestWeights_Tags_StableOrder(t *testing.T) {
	w := Weights{SizeLt: 1, SizeGt: 1, TmLt: 1, TmGt: 1}
	first := w.Tags()
	second := w.Tags()
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Fatalf("weight tag order is not stable at index %d", i)
		}
	}
}
