package design

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FailureReason is the closed enumeration of primer-picker rejection
// reasons the core recognizes.
type FailureReason int

const (
	GCClamp FailureReason = iota
	LowTm
	HighTm
	LowGC
	HighGC
	LongPolyX
	LongDinuc
	LowercaseMasking
	NotInAnyOkRegion
	TooManyNs
	HairpinFailed
	TemplateMispriming
)

func (r FailureReason) String() string {
	switch r {
	case GCClamp:
		return "GcClamp"
	case LowTm:
		return "LowTm"
	case HighTm:
		return "HighTm"
	case LowGC:
		return "LowGC"
	case HighGC:
		return "HighGC"
	case LongPolyX:
		return "LongPolyX"
	case LongDinuc:
		return "LongDinuc"
	case LowercaseMasking:
		return "LowercaseMasking"
	case NotInAnyOkRegion:
		return "NotInAnyOkRegion"
	case TooManyNs:
		return "TooManyNs"
	case HairpinFailed:
		return "HairpinFailed"
	case TemplateMispriming:
		return "TemplateMispriming"
	default:
		return "Unknown"
	}
}

// reasonText maps the picker's explanation-string reason phrases to the
// closed FailureReason enumeration. Phrases are those emitted by the
// upstream tool's PRIMER_EXPLAIN_FLAG output.
var reasonText = map[string]FailureReason{
	"GC clamp failed":                          GCClamp,
	"low tm":                                   LowTm,
	"high tm":                                  HighTm,
	"low gc content":                           LowGC,
	"high gc content":                          HighGC,
	"long poly-x seq":                          LongPolyX,
	"lowercase masking of 3' end":              LowercaseMasking,
	"not in any ok region":                     NotInAnyOkRegion,
	"too many ns":                              TooManyNs,
	"high hairpin stability":                   HairpinFailed,
	"high similarity to non-amplicon sequence": TemplateMispriming,
}

// ignoredReasons are explanation tokens that are never failures.
var ignoredReasons = map[string]bool{
	"ok":         true,
	"considered": true,
}

var explainTokenPattern = regexp.MustCompile(`^(.+) (\d+)$`)

// FailureCount pairs a reason with its aggregate count.
type FailureCount struct {
	Reason FailureReason
	Count  int
}

// ParseFailureBreakdown tokenizes one or more picker explanation strings,
// sums counts per known reason, and appends a LongDinuc entry for
// droppedDinucCount. The result is sorted by count descending.
func ParseFailureBreakdown(explanations []string, droppedDinucCount int) []FailureCount {
	counts := make(map[FailureReason]int)
	for _, explanation := range explanations {
		for _, token := range strings.Split(explanation, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			m := explainTokenPattern.FindStringSubmatch(token)
			if m == nil {
				continue
			}
			reasonStr, countStr := m[1], m[2]
			if ignoredReasons[reasonStr] {
				continue
			}
			reason, ok := reasonText[reasonStr]
			if !ok {
				log.Warnw("unrecognized primer-picker failure reason, dropping", "reason", reasonStr)
				continue
			}
			count, err := strconv.Atoi(countStr)
			if err != nil {
				continue
			}
			counts[reason] += count
		}
	}
	if droppedDinucCount > 0 {
		counts[LongDinuc] += droppedDinucCount
	}

	out := make([]FailureCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, FailureCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
