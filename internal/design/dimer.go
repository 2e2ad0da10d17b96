package design

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/biogo/external"
	"gonum.org/v1/gonum/floats"
)

// DuplexTm invokes the duplex-melting-temperature executable, per its
// struct-tag-driven argument list (grounded on the corpus's
// github.com/biogo/external idiom for external-tool wrappers).
type DuplexTm struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}ntthal{{end}}"`

	SaltConc float64 `buildarg:"-mv{{split}}{{.}}"`  // monovalent cation concentration, mM
	DNTPConc float64 `buildarg:"-dNTP{{split}}{{.}}"` // dNTP concentration, mM
	DNAConc  float64 `buildarg:"-d{{split}}{{.}}"`     // DNA concentration, nM
	TempC    float64 `buildarg:"-t{{split}}{{.}}"`     // reaction temperature, Celsius

	SeqA string `buildarg:"-s1{{split}}{{.}}"`
	SeqB string `buildarg:"-s2{{split}}{{.}}"`
}

func (d DuplexTm) BuildCommand() (*exec.Cmd, error) {
	cl := external.Must(external.Build(d))
	return exec.Command(cl[0], cl[1:]...), nil
}

// DimerCheckerConfig configures the duplex-Tm subprocess and its timeout.
type DimerCheckerConfig struct {
	ExecutablePath string
	SaltConc       float64
	DNTPConc       float64
	DNAConc        float64
	TempC          float64
	Timeout        time.Duration // default 5s
}

func (cfg DimerCheckerConfig) timeout() time.Duration {
	if cfg.Timeout <= 0 {
		return 5 * time.Second
	}
	return cfg.Timeout
}

// DimerChecker invokes the duplex-Tm executable on demand, caching results
// keyed by canonicalized sequence pair.
type DimerChecker struct {
	cfg   DimerCheckerConfig
	cache map[dimerKey]float64
}

type dimerKey struct{ a, b string }

func canonicalDimerKey(a, b string) dimerKey {
	if a <= b {
		return dimerKey{a, b}
	}
	return dimerKey{b, a}
}

// NewDimerChecker constructs a checker with an empty cache.
func NewDimerChecker(cfg DimerCheckerConfig) *DimerChecker {
	return &DimerChecker{cfg: cfg, cache: make(map[dimerKey]float64)}
}

// TmOf returns the duplex melting temperature of a and b. The pair is
// canonicalized by lexicographic order both for the cache lookup and for
// the subprocess invocation itself, so the cache and the command line can
// never disagree about which sequence is -s1 and which is -s2.
func (c *DimerChecker) TmOf(a, b string) (float64, error) {
	key := canonicalDimerKey(a, b)
	if tm, ok := c.cache[key]; ok {
		return tm, nil
	}

	tm, err := c.invoke(key.a, key.b)
	if err != nil {
		return 0, err
	}
	c.cache[key] = tm
	return tm, nil
}

func (c *DimerChecker) invoke(a, b string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.timeout())
	defer cancel()

	tool := DuplexTm{
		SaltConc: c.cfg.SaltConc,
		DNTPConc: c.cfg.DNTPConc,
		DNAConc:  c.cfg.DNAConc,
		TempC:    c.cfg.TempC,
		SeqA:     a,
		SeqB:     b,
	}
	if c.cfg.ExecutablePath != "" {
		tool.Cmd = c.cfg.ExecutablePath
	}
	cmd, err := tool.BuildCommand()
	if err != nil {
		return 0, &SubprocessIOError{Op: "build duplex-Tm command", Err: err}
	}
	cmd = exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return 0, &TimeoutError{Op: "duplex-Tm"}
	}
	if err != nil {
		return 0, &SubprocessIOError{Op: "duplex-Tm", Err: err}
	}

	firstLine := strings.SplitN(string(out), "\n", 2)[0]
	tm, perr := strconv.ParseFloat(strings.TrimSpace(firstLine), 64)
	if perr != nil {
		return 0, &SubprocessIOError{Op: "parse duplex-Tm output", Err: errors.New("non-numeric first line: " + firstLine)}
	}
	return tm, nil
}

// CountDimers returns the number of targets whose duplex Tm with query is
// >= minTm.
func (c *DimerChecker) CountDimers(query string, targets []string, minTm float64) (int, error) {
	var count int
	for _, target := range targets {
		tm, err := c.TmOf(query, target)
		if err != nil {
			return 0, err
		}
		if tm >= minTm || floats.EqualWithinAbs(tm, minTm, 1e-9) {
			count++
		}
	}
	return count, nil
}
