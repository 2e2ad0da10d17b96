package design

import "strings"

// complement maps A, C, G, T and N to their complements, preserving case.
var complement = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
	'N': 'N', 'n': 'n',
}

// ReverseComplement returns the reverse complement of s, preserving the
// case of each base (soft-masked lower-case bases stay lower-case). Bases
// outside the IUPAC unambiguous/N set pass through unchanged.
func ReverseComplement(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[len(s)-1-i]
		if c, ok := complement[b]; ok {
			out[i] = c
		} else {
			out[i] = b
		}
	}
	return string(out)
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// GCContent returns the percentage (0-100) of G/C bases in s, case
// insensitive.
func GCContent(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	var gc int
	for _, b := range []byte(strings.ToUpper(s)) {
		if b == 'G' || b == 'C' {
			gc++
		}
	}
	return 100 * float64(gc) / float64(len(s))
}

// LongestHomopolymer returns the length of the longest run of one repeated
// base in s, case insensitive.
func LongestHomopolymer(s string) int {
	upper := strings.ToUpper(s)
	longest, run := 0, 0
	var prev byte
	for i := 0; i < len(upper); i++ {
		b := upper[i]
		if i > 0 && b == prev {
			run++
		} else {
			run = 1
		}
		prev = b
		if run > longest {
			longest = run
		}
	}
	return longest
}

// CountAmbiguous returns the number of bases in s that are not A, C, G, or T
// (case insensitive).
func CountAmbiguous(s string) int {
	var n int
	for _, b := range []byte(strings.ToUpper(s)) {
		switch b {
		case 'A', 'C', 'G', 'T':
		default:
			n++
		}
	}
	return n
}

// LongestDinucRun returns the number of bases belonging to the longest run
// of a two-base repeat (e.g. "ATATAT") in s, case insensitive. A run must
// span at least two full repeats of the dinucleotide to count.
func LongestDinucRun(s string) int {
	upper := strings.ToUpper(s)
	longest := 0
	n := len(upper)
	for start := 0; start < n-1; start++ {
		dinuc := upper[start : start+2]
		if dinuc[0] == dinuc[1] {
			// A mononucleotide run is not a dinucleotide repeat.
			continue
		}
		end := start + 2
		for end+1 < n && upper[end:end+2] == dinuc {
			end += 2
		}
		if runLen := end - start; runLen >= 4 && runLen > longest {
			longest = runLen
		}
	}
	return longest
}

// HasSoftMasked reports whether s contains any lower-case base.
func HasSoftMasked(s string) bool {
	for i := 0; i < len(s); i++ {
		if isLower(s[i]) {
			return true
		}
	}
	return false
}
