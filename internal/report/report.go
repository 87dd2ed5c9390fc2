// Package report extracts latency and throughput figures from the text a
// load generator prints when a run completes.
package report

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	// ErrParse is returned when a matched numeric field does not convert.
	ErrParse = errors.New("malformed report field")

	// ErrDecode is returned when the captured output is not text.
	ErrDecode = errors.New("report is not valid UTF-8")
)

// Measurement is the outcome of one run. The zero value means no
// measurement line was found.
type Measurement struct {
	LatencyMs      float64
	RequestsPerSec uint64
}

// Parser turns raw generator output into a Measurement.
type Parser interface {
	Parse(out []byte) (Measurement, error)
}

var (
	latencyRe = regexp.MustCompile(`Latency\s+(\d+\.\d+)(\w+)`)
	rpsRe     = regexp.MustCompile(`Requests/sec:\s+(\d+)`)
)

// Wrk parses the summary printed by wrk. Lines may come in any order and
// the last matching line of each kind wins.
type Wrk struct{}

func (Wrk) Parse(out []byte) (Measurement, error) {
	if !utf8.Valid(out) {
		return Measurement{}, ErrDecode
	}

	var m Measurement
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if g := latencyRe.FindStringSubmatch(line); g != nil {
			v, err := strconv.ParseFloat(g[1], 64)
			if err != nil {
				return Measurement{}, errors.Wrapf(ErrParse, "latency %q", g[1])
			}
			m.LatencyMs = v * unitScale(g[2])
		}

		if g := rpsRe.FindStringSubmatch(line); g != nil {
			v, err := strconv.ParseUint(g[1], 10, 64)
			if err != nil {
				return Measurement{}, errors.Wrapf(ErrParse, "requests/sec %q", g[1])
			}
			m.RequestsPerSec = v
		}
	}
	if err := sc.Err(); err != nil {
		return Measurement{}, errors.Wrap(err, "scanning report")
	}
	return m, nil
}

// unitScale converts a wrk duration suffix to a millisecond multiplier.
// Anything that is neither seconds nor microseconds is taken as ms.
func unitScale(unit string) float64 {
	switch unit {
	case "s":
		return 1000
	case "us":
		return 0.001
	default:
		return 1
	}
}
