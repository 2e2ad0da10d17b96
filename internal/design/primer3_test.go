package design

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

// fakePicker wires a PrimerPicker's stdin/stdout to an in-memory responder,
// standing in for the real primer-picking subprocess.
type fakePicker struct {
	pp       *PrimerPicker
	requests chan string
}

func newFakePicker(t *testing.T, respond func(request string) string) *fakePicker {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	requests := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(reqR)
		var lines []string
		for scanner.Scan() {
			line := scanner.Text()
			if line == "=" {
				req := strings.Join(lines, "\n")
				requests <- req
				lines = nil
				io.WriteString(respW, respond(req))
				continue
			}
			lines = append(lines, line)
		}
	}()

	return &fakePicker{
		pp:       &PrimerPicker{stdin: reqW, stdout: bufio.NewReader(respR)},
		requests: requests,
	}
}

func TestPrimerPicker_DesignLeft(t *testing.T) {
	region := Region{
		Mapping:    mustMapping(t, "chr1", 9000, 9110, Plus),
		SoftMasked: strings.Repeat("A", 111),
		HardMasked: strings.Repeat("A", 111),
	}
	target := mustMapping(t, "chr1", 9050, 9060, Plus)
	params := validParams()
	weights := Weights{}

	fp := newFakePicker(t, func(req string) string {
		return "PRIMER_LEFT_NUM_RETURNED=1\n" +
			"PRIMER_LEFT_0=1,20\n" +
			"PRIMER_LEFT_0_TM=60.1\n" +
			"PRIMER_LEFT_0_PENALTY=0.5\n" +
			"PRIMER_LEFT_EXPLAIN=considered 10, ok 10\n" +
			"=\n"
	})

	primers, breakdown, err := fp.pp.DesignLeft(region, target, params, weights)
	if err != nil {
		t.Fatalf("DesignLeft: %v", err)
	}
	if len(primers) != 1 {
		t.Fatalf("got %d primers, want 1", len(primers))
	}
	if primers[0].Mapping.Start != 9000 || primers[0].Mapping.End != 9019 {
		t.Errorf("primer mapping = %v, want [9000,9019]", primers[0].Mapping)
	}
	if primers[0].Tm != 60.1 {
		t.Errorf("Tm = %v, want 60.1", primers[0].Tm)
	}
	if len(breakdown) != 0 {
		t.Errorf("expected zero failures, got %+v", breakdown)
	}
}

func TestPrimerPicker_RequestFailsOnPrimerError(t *testing.T) {
	fp := newFakePicker(t, func(req string) string {
		return "PRIMER_ERROR=bad template\n=\n"
	})
	_, err := fp.pp.request([]Tag{{Key: "SEQUENCE_TEMPLATE", Value: "ACGT"}})
	if err == nil {
		t.Fatal("expected Primer3Error")
	}
	p3err, ok := err.(*Primer3Error)
	if !ok {
		t.Fatalf("expected *Primer3Error, got %T", err)
	}
	if p3err.Primer3Err != "bad template" {
		t.Errorf("Primer3Err = %q, want %q", p3err.Primer3Err, "bad template")
	}
}

func TestPrimerPicker_RequestDiscardsEchoedInputTags(t *testing.T) {
	fp := newFakePicker(t, func(req string) string {
		return "SEQUENCE_TEMPLATE=ACGT\nPRIMER_LEFT_NUM_RETURNED=0\n=\n"
	})
	output, err := fp.pp.request([]Tag{{Key: "SEQUENCE_TEMPLATE", Value: "ACGT"}})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, ok := output["SEQUENCE_TEMPLATE"]; ok {
		t.Error("echoed input tag SEQUENCE_TEMPLATE should have been discarded from the output map")
	}
	if output["PRIMER_LEFT_NUM_RETURNED"] != "0" {
		t.Errorf("PRIMER_LEFT_NUM_RETURNED = %q, want 0", output["PRIMER_LEFT_NUM_RETURNED"])
	}
}

func TestPrimerPicker_DesignPair(t *testing.T) {
	region := Region{
		Mapping:    mustMapping(t, "chr1", 9000, 9110, Plus),
		SoftMasked: strings.Repeat("A", 111),
		HardMasked: strings.Repeat("A", 111),
	}
	target := mustMapping(t, "chr1", 9050, 9060, Plus)
	params := validParams()
	weights := Weights{}

	fp := newFakePicker(t, func(req string) string {
		return "PRIMER_PAIR_NUM_RETURNED=1\n" +
			"PRIMER_LEFT_0=1,20\n" +
			"PRIMER_LEFT_0_TM=60.0\n" +
			"PRIMER_LEFT_0_PENALTY=0.1\n" +
			"PRIMER_RIGHT_0=111,20\n" +
			"PRIMER_RIGHT_0_TM=61.0\n" +
			"PRIMER_RIGHT_0_PENALTY=0.2\n" +
			"PRIMER_PAIR_0_PRODUCT_TM=80.0\n" +
			"PRIMER_PAIR_0_PENALTY=0.3\n" +
			"=\n"
	})

	pairs, _, err := fp.pp.DesignPair(region, target, params, weights)
	if err != nil {
		t.Fatalf("DesignPair: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	pair := pairs[0]
	if pair.Left.Mapping.Start != 9000 || pair.Right.Mapping.End != 9110 {
		t.Errorf("pair amplicon bounds = [%d,%d], want [9000,9110]", pair.Left.Mapping.Start, pair.Right.Mapping.End)
	}
	if pair.Amplicon.Length() != len(pair.AmpliconSequence) {
		t.Errorf("amplicon length %d does not match sequence length %d", pair.Amplicon.Length(), len(pair.AmpliconSequence))
	}
}
