package design

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
	"go.uber.org/multierr"
)

// AlignerConfig holds the options the interactive aligner is spawned with.
type AlignerConfig struct {
	ExecutablePath           string
	IndexPath                string
	SeedLength               int
	SeedMismatches           int
	MaxMismatches            int
	MaxGapOpens              int
	MaxGapExtends            int
	MaxHits                  int
	Threads                  int
	IncludeAlt               bool
	ReverseComplementQueries bool
}

// AlignerHit is one genomic hit for a query
type AlignerHit struct {
	Chrom     string
	Start     int
	Negative  bool
	Cigar     string
	Edits     int
	cigarRefLen int
	indelOps    int
}

// NewAlignerHit builds a hit, optionally inverting strand and reversing the
// cigar element order when the query was submitted reverse-complemented.
func NewAlignerHit(chrom string, start int, negative bool, cigarStr string, edits int, rc bool) (AlignerHit, error) {
	refLen, indelOps, err := cigarReferenceLength(cigarStr)
	if err != nil {
		return AlignerHit{}, err
	}
	if rc {
		negative = !negative
		cigarStr = reverseCigarElements(cigarStr)
	}
	return AlignerHit{
		Chrom:       chrom,
		Start:       start,
		Negative:    negative,
		Cigar:       cigarStr,
		Edits:       edits,
		cigarRefLen: refLen,
		indelOps:    indelOps,
	}, nil
}

// End returns start + referenceLength(cigar) - 1.
func (h AlignerHit) End() int { return h.Start + h.cigarRefLen - 1 }

// Mismatches returns edits minus the number of indel operations in the cigar.
func (h AlignerHit) Mismatches() int { return h.Edits - h.indelOps }

func cigarReferenceLength(cigarStr string) (refLen, indelOps int, err error) {
	var n int
	for i := 0; i < len(cigarStr); i++ {
		c := cigarStr[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			continue
		}
		switch c {
		case 'M', 'D', 'N', '=', 'X':
			refLen += n
		}
		if c == 'I' || c == 'D' {
			indelOps++
		}
		n = 0
	}
	return refLen, indelOps, nil
}

func reverseCigarElements(cigarStr string) string {
	var elems []string
	var n strings.Builder
	for i := 0; i < len(cigarStr); i++ {
		c := cigarStr[i]
		n.WriteByte(c)
		if c < '0' || c > '9' {
			elems = append(elems, n.String())
			n.Reset()
		}
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return strings.Join(elems, "")
}

// AlignerResult is the per-query outcome
type AlignerResult struct {
	Query    string
	HitCount int
	Hits     []AlignerHit
}

// AlignerWrapper owns one long-running aligner child process.
type AlignerWrapper struct {
	cfg    AlignerConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	header *sam.Header
	closed bool
}

// NewAlignerWrapper spawns the aligner with the configured flags and
// consumes its SAM header up to and including the first @PG line.
func NewAlignerWrapper(cfg AlignerConfig) (*AlignerWrapper, error) {
	args := []string{
		"mem",
		"-k", strconv.Itoa(cfg.SeedLength),
		"-B", strconv.Itoa(cfg.SeedMismatches),
		"-b", strconv.Itoa(cfg.MaxMismatches),
		"-O", strconv.Itoa(cfg.MaxGapOpens),
		"-E", strconv.Itoa(cfg.MaxGapExtends),
		"-c", strconv.Itoa(cfg.MaxHits),
		"-t", strconv.Itoa(cfg.Threads),
		"-v", // non-iterative, all n-difference hits
		cfg.IndexPath,
		"-",
	}
	cmd := exec.Command(cfg.ExecutablePath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SubprocessIOError{Op: "open aligner stdin", Err: err}
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SubprocessIOError{Op: "open aligner stdout", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SubprocessIOError{Op: "start aligner", Err: err}
	}

	reader := bufio.NewReader(stdoutPipe)
	var headerBuf bytes.Buffer
	for {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, &SubprocessIOError{Op: "read aligner header", Err: err}
		}
		headerBuf.WriteString(line)
		if strings.HasPrefix(line, "@PG") {
			break
		}
	}
	samReader, err := sam.NewReader(bytes.NewReader(headerBuf.Bytes()))
	if err != nil {
		return nil, &AlignerError{Reason: fmt.Sprintf("parsing SAM header: %v", err)}
	}

	return &AlignerWrapper{
		cfg:    cfg,
		cmd:    cmd,
		stdin:  stdin,
		stdout: reader,
		header: samReader.Header(),
	}, nil
}

// Close terminates the aligner process and closes both streams, attempting
// every step even if an earlier one fails and combining their errors.
func (aw *AlignerWrapper) Close() error {
	if aw.closed {
		return nil
	}
	aw.closed = true
	var err error
	err = multierr.Append(err, aw.stdin.Close())
	if aw.cmd.Process != nil {
		err = multierr.Append(err, aw.cmd.Process.Kill())
		// Wait reaps the killed process and closes the stdout pipe; its
		// "signal: killed" exit status is expected and not reported.
		_ = aw.cmd.Wait()
	}
	return err
}

// Map submits queries (ID -> bases) in order and returns one AlignerResult
// per query in submission order
func (aw *AlignerWrapper) Map(ids, bases []string) ([]AlignerResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) != len(bases) {
		return nil, &AlignerError{Reason: "ids and bases must have equal length"}
	}

	var buf strings.Builder
	for i, id := range ids {
		b := bases[i]
		if aw.cfg.ReverseComplementQueries {
			b = ReverseComplement(b)
		}
		fmt.Fprintf(&buf, "@%s\n%s\n+\n%s\n", id, b, strings.Repeat("H", len(b)))
	}
	if _, err := io.WriteString(aw.stdin, buf.String()); err != nil {
		return nil, &SubprocessIOError{Op: "write aligner queries", Err: err}
	}
	for i := 0; i < 3; i++ {
		if _, err := io.WriteString(aw.stdin, "\n\n"); err != nil {
			return nil, &SubprocessIOError{Op: "flush aligner queries", Err: err}
		}
	}

	results := make([]AlignerResult, len(ids))
	for i, id := range ids {
		rec, err := readSAMLine(aw.stdout)
		if err != nil {
			return nil, &SubprocessIOError{Op: "read aligner record", Err: err}
		}
		if rec.qname != id {
			return nil, &AlignerError{Reason: fmt.Sprintf("out-of-order aligner record: expected %q, got %q", id, rec.qname)}
		}
		results[i] = aw.buildResult(rec)
	}
	return results, nil
}

func (aw *AlignerWrapper) buildResult(rec samLine) AlignerResult {
	result := AlignerResult{Query: rec.qname}
	if rec.unmapped {
		return result
	}

	hn := rec.intTag("HN", 1)
	if hn > aw.cfg.MaxHits {
		result.HitCount = hn
		return result
	}

	nm := rec.intTag("NM", 0)
	primary, err := NewAlignerHit(rec.rname, rec.pos, rec.reverse, rec.cigar, nm, aw.cfg.ReverseComplementQueries)
	var hits []AlignerHit
	if err == nil && (aw.cfg.IncludeAlt || !strings.HasSuffix(rec.rname, "_alt")) {
		hits = append(hits, primary)
	}

	if xa := rec.strTag("XA"); xa != "" {
		for _, entry := range strings.Split(strings.TrimSuffix(xa, ";"), ";") {
			if entry == "" {
				continue
			}
			fields := strings.Split(entry, ",")
			if len(fields) != 4 {
				continue
			}
			chrom := fields[0]
			if !aw.cfg.IncludeAlt && strings.HasSuffix(chrom, "_alt") {
				continue
			}
			posStr := fields[1]
			negative := strings.HasPrefix(posStr, "-")
			pos, perr := strconv.Atoi(strings.TrimLeft(posStr, "+-"))
			edits, eerr := strconv.Atoi(fields[3])
			if perr != nil || eerr != nil {
				continue
			}
			hit, herr := NewAlignerHit(chrom, pos, negative, fields[2], edits, aw.cfg.ReverseComplementQueries)
			if herr == nil {
				hits = append(hits, hit)
			}
		}
	}

	if len(hits) == 0 {
		result.HitCount = hn
		return result
	}
	result.HitCount = len(hits)
	result.Hits = hits
	return result
}

// samLine is a minimally-parsed SAM alignment record: just the fields the
// off-target pipeline needs from the aligner's interactive stream.
type samLine struct {
	qname    string
	unmapped bool
	rname    string
	pos      int
	reverse  bool
	cigar    string
	tags     map[string]string
}

func (l samLine) intTag(key string, def int) int {
	v, ok := l.tags[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (l samLine) strTag(key string) string { return l.tags[key] }

const (
	samFlagUnmapped = 0x4
	samFlagReverse  = 0x10
)

func readSAMLine(r *bufio.Reader) (samLine, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return samLine{}, err
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 11 {
		return samLine{}, fmt.Errorf("malformed SAM record: %q", line)
	}
	flag, _ := strconv.Atoi(fields[1])
	pos, _ := strconv.Atoi(fields[3])

	rec := samLine{
		qname:    fields[0],
		unmapped: flag&samFlagUnmapped != 0,
		rname:    fields[2],
		pos:      pos,
		reverse:  flag&samFlagReverse != 0,
		cigar:    fields[5],
		tags:     make(map[string]string),
	}
	for _, tag := range fields[11:] {
		parts := strings.SplitN(tag, ":", 3)
		if len(parts) == 3 {
			rec.tags[parts[0]] = parts[2]
		}
	}
	return rec, nil
}
