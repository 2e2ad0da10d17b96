package design

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Task selects which side(s) of a pair the picker driver requests.
type Task int

const (
	TaskPair Task = iota
	TaskLeftOnly
	TaskRightOnly
)

// PrimerPicker owns one long-running primer-picking child process,
// communicating over a tagged KEY=VALUE line protocol
type PrimerPicker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	closed bool
}

// NewPrimerPicker spawns the primer-picking executable at path with its
// strict-tags flag, merging stderr into stdout.
func NewPrimerPicker(path string) (*PrimerPicker, error) {
	cmd := exec.Command(path, "-strict_tags")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SubprocessIOError{Op: "open primer-picker stdin", Err: err}
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return nil, &SubprocessIOError{Op: "start primer-picker", Err: err}
	}
	go func() {
		cmd.Wait()
		pw.Close()
	}()

	return &PrimerPicker{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(pr)}, nil
}

// Close terminates the child process and closes both streams, attempting
// every step even if an earlier one fails and combining their errors.
// Idempotent.
func (pp *PrimerPicker) Close() error {
	if pp.closed {
		return nil
	}
	pp.closed = true
	var err error
	err = multierr.Append(err, pp.stdin.Close())
	if pp.cmd != nil && pp.cmd.Process != nil {
		err = multierr.Append(err, pp.cmd.Process.Kill())
	}
	return err
}

// request writes tags as a single record and reads back the response map.
func (pp *PrimerPicker) request(tags []Tag) (map[string]string, error) {
	known := make(map[string]bool, len(tags))
	var buf strings.Builder
	for _, t := range tags {
		known[t.Key] = true
		fmt.Fprintf(&buf, "%s=%s\n", t.Key, t.Value)
	}
	buf.WriteString("=\n")
	if _, err := io.WriteString(pp.stdin, buf.String()); err != nil {
		return nil, &SubprocessIOError{Op: "write primer-picker request", Err: err}
	}

	output := make(map[string]string)
	var errorLines []string
	for {
		line, err := pp.stdout.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "=" {
			break
		}
		if line != "" {
			if eq := strings.IndexByte(line, '='); eq >= 0 {
				key, val := line[:eq], line[eq+1:]
				if !known[key] {
					output[key] = val
				}
			} else {
				errorLines = append(errorLines, line)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil, &SubprocessIOError{Op: "read primer-picker response", Err: fmt.Errorf("stream closed before terminator")}
			}
			return nil, &SubprocessIOError{Op: "read primer-picker response", Err: err}
		}
	}

	if len(errorLines) > 0 || output["PRIMER_ERROR"] != "" {
		return nil, &Primer3Error{
			Message:    "primer-picker reported an error",
			ErrorLines: errorLines,
			Primer3Err: output["PRIMER_ERROR"],
		}
	}
	return output, nil
}

func targetStartInRegion(region Region, target Mapping) int {
	return target.Start - region.Mapping.Start + 1
}

func targetEndInRegion(region Region, target Mapping) int {
	return target.End - region.Mapping.Start + 1
}

func globalTags() []Tag {
	return []Tag{
		{Key: "PRIMER_FIRST_BASE_INDEX", Value: "1"},
		{Key: "PRIMER_EXPLAIN_FLAG", Value: "1"},
	}
}

func taskTags(task Task, region Region, target Mapping) []Tag {
	switch task {
	case TaskPair:
		return []Tag{
			{Key: "PRIMER_TASK", Value: "generic"},
			{Key: "PRIMER_PICK_LEFT_PRIMER", Value: "1"},
			{Key: "PRIMER_PICK_RIGHT_PRIMER", Value: "1"},
			{Key: "PRIMER_PICK_INTERNAL_OLIGO", Value: "0"},
			{Key: "SEQUENCE_TARGET", Value: fmt.Sprintf("%d,%d", targetStartInRegion(region, target), target.Length())},
		}
	case TaskLeftOnly:
		return []Tag{
			{Key: "PRIMER_TASK", Value: "pick_primer_list"},
			{Key: "PRIMER_PICK_LEFT_PRIMER", Value: "1"},
			{Key: "PRIMER_PICK_RIGHT_PRIMER", Value: "0"},
			{Key: "PRIMER_PICK_INTERNAL_OLIGO", Value: "0"},
			{Key: "SEQUENCE_INCLUDED_REGION", Value: fmt.Sprintf("1,%d", targetStartInRegion(region, target)-1)},
		}
	default: // TaskRightOnly
		tEnd := targetEndInRegion(region, target)
		return []Tag{
			{Key: "PRIMER_TASK", Value: "pick_primer_list"},
			{Key: "PRIMER_PICK_LEFT_PRIMER", Value: "0"},
			{Key: "PRIMER_PICK_RIGHT_PRIMER", Value: "1"},
			{Key: "PRIMER_PICK_INTERNAL_OLIGO", Value: "0"},
			{Key: "SEQUENCE_INCLUDED_REGION", Value: fmt.Sprintf("%d,%d", tEnd+1, region.Mapping.Length()-tEnd)},
		}
	}
}

func buildTags(task Task, region Region, target Mapping, params Parameters, weights Weights) []Tag {
	tags := append([]Tag{}, globalTags()...)
	tags = append(tags, taskTags(task, region, target)...)
	tags = append(tags, params.Tags()...)
	tags = append(tags, weights.Tags()...)
	tags = append(tags, Tag{Key: "SEQUENCE_TEMPLATE", Value: region.HardMasked})
	return tags
}

// parsedPrimer holds an unfiltered primer candidate plus its region-relative
// extraction, before the dinuc post-filter is applied.
type parsedPrimer struct {
	primer Primer
}

func parseSide(output map[string]string, side, countTag string, region Region, params Parameters) ([]parsedPrimer, error) {
	count, err := strconv.Atoi(output[countTag])
	if err != nil {
		return nil, nil
	}

	out := make([]parsedPrimer, 0, count)
	for i := 0; i < count; i++ {
		posLen := output[fmt.Sprintf("PRIMER_%s_%d", side, i)]
		parts := strings.SplitN(posLen, ",", 2)
		if len(parts) != 2 {
			continue
		}
		pos, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		length, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}

		var mapping Mapping
		if side == "LEFT" {
			mapping, err = region.Mapping.Resolve(pos, length, Plus)
		} else {
			mapping, err = region.Mapping.Resolve(pos-length+1, length, Minus)
		}
		if err != nil {
			return nil, err
		}

		relStart, err := region.Mapping.Project(mapping.Start)
		if err != nil {
			return nil, err
		}
		bases := region.SoftMasked[relStart-1 : relStart-1+mapping.Length()]
		if side == "RIGHT" {
			bases = ReverseComplement(bases)
		}

		tm, _ := strconv.ParseFloat(output[fmt.Sprintf("PRIMER_%s_%d_TM", side, i)], 64)
		penalty, _ := strconv.ParseFloat(output[fmt.Sprintf("PRIMER_%s_%d_PENALTY", side, i)], 64)

		primer, err := NewPrimer(bases, tm, penalty, mapping, "", "", "", &params)
		if err != nil {
			return nil, err
		}
		out = append(out, parsedPrimer{primer: primer})
	}
	return out, nil
}

func dinucFilter(primers []parsedPrimer, params Parameters) (kept []Primer, dropped map[string]bool) {
	dropped = make(map[string]bool)
	for _, p := range primers {
		if LongestDinucRun(p.primer.Bases) > params.MaxDinucBases {
			dropped[p.primer.Bases] = true
			continue
		}
		kept = append(kept, p.primer)
	}
	return kept, dropped
}

// DesignLeft requests left-only candidates for target within region.
func (pp *PrimerPicker) DesignLeft(region Region, target Mapping, params Parameters, weights Weights) ([]Primer, []FailureCount, error) {
	output, err := pp.request(buildTags(TaskLeftOnly, region, target, params, weights))
	if err != nil {
		return nil, nil, err
	}
	parsed, err := parseSide(output, "LEFT", "PRIMER_LEFT_NUM_RETURNED", region, params)
	if err != nil {
		return nil, nil, err
	}
	kept, dropped := dinucFilter(parsed, params)
	breakdown := ParseFailureBreakdown([]string{output["PRIMER_LEFT_EXPLAIN"]}, len(dropped))
	return kept, breakdown, nil
}

// DesignRight requests right-only candidates for target within region.
func (pp *PrimerPicker) DesignRight(region Region, target Mapping, params Parameters, weights Weights) ([]Primer, []FailureCount, error) {
	output, err := pp.request(buildTags(TaskRightOnly, region, target, params, weights))
	if err != nil {
		return nil, nil, err
	}
	parsed, err := parseSide(output, "RIGHT", "PRIMER_RIGHT_NUM_RETURNED", region, params)
	if err != nil {
		return nil, nil, err
	}
	kept, dropped := dinucFilter(parsed, params)
	breakdown := ParseFailureBreakdown([]string{output["PRIMER_RIGHT_EXPLAIN"]}, len(dropped))
	return kept, breakdown, nil
}

// DesignPair requests paired candidates spanning target within region.
func (pp *PrimerPicker) DesignPair(region Region, target Mapping, params Parameters, weights Weights) ([]PrimerPair, []FailureCount, error) {
	output, err := pp.request(buildTags(TaskPair, region, target, params, weights))
	if err != nil {
		return nil, nil, err
	}
	lefts, err := parseSide(output, "LEFT", "PRIMER_PAIR_NUM_RETURNED", region, params)
	if err != nil {
		return nil, nil, err
	}
	rights, err := parseSide(output, "RIGHT", "PRIMER_PAIR_NUM_RETURNED", region, params)
	if err != nil {
		return nil, nil, err
	}

	count, _ := strconv.Atoi(output["PRIMER_PAIR_NUM_RETURNED"])
	dropped := make(map[string]bool)
	pairs := make([]PrimerPair, 0, count)
	for i := 0; i < count && i < len(lefts) && i < len(rights); i++ {
		left, right := lefts[i].primer, rights[i].primer
		leftDinuc := LongestDinucRun(left.Bases) > params.MaxDinucBases
		rightDinuc := LongestDinucRun(right.Bases) > params.MaxDinucBases
		if leftDinuc {
			dropped[left.Bases] = true
		}
		if rightDinuc {
			dropped[right.Bases] = true
		}
		if leftDinuc || rightDinuc {
			continue
		}

		amplicon, err := NewMapping(region.Mapping.RefName, left.Mapping.Start, right.Mapping.End, Plus)
		if err != nil {
			return nil, nil, err
		}
		relStart, err := region.Mapping.Project(amplicon.Start)
		if err != nil {
			return nil, nil, err
		}
		ampliconSeq := region.SoftMasked[relStart-1 : relStart-1+amplicon.Length()]

		tm, _ := strconv.ParseFloat(output[fmt.Sprintf("PRIMER_PAIR_%d_PRODUCT_TM", i)], 64)
		penalty, _ := strconv.ParseFloat(output[fmt.Sprintf("PRIMER_PAIR_%d_PENALTY", i)], 64)

		pair, err := NewPrimerPair(left, right, amplicon, ampliconSeq, tm, penalty, "", "", &params)
		if err != nil {
			return nil, nil, err
		}
		pairs = append(pairs, pair)
	}

	breakdown := ParseFailureBreakdown([]string{
		output["PRIMER_LEFT_EXPLAIN"],
		output["PRIMER_RIGHT_EXPLAIN"],
		output["PRIMER_PAIR_EXPLAIN"],
	}, len(dropped))
	return pairs, breakdown, nil
}
